// internal/app/features/login/login.go
package login

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/projecthub/internal/app/system/accesserr"
	"github.com/dalemusser/projecthub/internal/app/system/normalize"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// invalidCredentials is the one message for every credential failure so
// the response does not reveal which emails are registered.
const invalidCredentials = "invalid email or password"

func (r *loginRequest) normalize() {
	r.Email = normalize.Email(r.Email)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/login                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleLogin verifies email and password, then signs the user in.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	if h.Limiter != nil && !h.Limiter.Check(r, req.Email) {
		h.Log.Warn("login throttled", zap.String("email", req.Email))
		h.ErrLog.TooManyRequests(w, "too many login attempts, try again later")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, accesserr.ErrUnknownUser) {
		h.ErrLog.Unauthorized(w, invalidCredentials)
		return
	}
	if err != nil {
		h.ErrLog.Write(w, r, "find user by email", err)
		return
	}

	ok, err := h.Passwords.Check(u.PasswordHash, req.Password)
	if err != nil {
		h.Log.Error("stored password hash is unusable", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}
	if !ok {
		h.ErrLog.Unauthorized(w, invalidCredentials)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(req.Email)
	}
	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()))
	h.signIn(w, r, *u, http.StatusOK)
}
