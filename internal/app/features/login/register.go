// internal/app/features/login/register.go
package login

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/projecthub/internal/app/store/users"
	"github.com/dalemusser/projecthub/internal/app/system/normalize"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.uber.org/zap"
)

func (r *registerRequest) normalize() {
	r.Name = normalize.Name(r.Name)
	r.Email = normalize.Email(r.Email)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/register                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleRegister creates an account and signs it in.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	hash, err := h.Passwords.Hash(req.Password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password", err, "failed to register user")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{Name: req.Name, Email: req.Email, PasswordHash: hash})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		h.ErrLog.Conflict(w, "email already registered", "duplicate_email")
		return
	}
	if err != nil {
		h.ErrLog.Write(w, r, "create user", err)
		return
	}

	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()))
	h.signIn(w, r, u, http.StatusCreated)
}
