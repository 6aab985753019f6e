// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: the MongoDB ObjectID (_id) of a user record
//   - email: what users type to sign in; stored trimmed and lowercased

import (
	"encoding/json"
	"net/http"

	apierrors "github.com/dalemusser/projecthub/internal/app/features/errors"
	userstore "github.com/dalemusser/projecthub/internal/app/store/users"
	"github.com/dalemusser/projecthub/internal/app/system/auth"
	"github.com/dalemusser/projecthub/internal/app/system/inputval"
	"github.com/dalemusser/projecthub/internal/app/system/ratelimit"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Passwords  auth.Passwords
	Limiter    *ratelimit.LoginLimiter // nil disables throttling
	ErrLog     *apierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	passwords auth.Passwords,
	limiter *ratelimit.LoginLimiter,
	errLog *apierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if errLog == nil {
		errLog = apierrors.NewErrorLogger(logger)
	}
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sessionMgr,
		Passwords:  passwords,
		Limiter:    limiter,
		ErrLog:     errLog,
		Log:        logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request / response shapes                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=100" label:"Name"`
	Email    string `json:"email" validate:"required,email,max=254" label:"Email"`
	Password string `json:"password" validate:"required,min=6,max=72" label:"Password"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

type userView struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

const maxBodyBytes = 64 << 10

type normalizer interface {
	normalize()
}

// decode reads a JSON body into v, normalizes it and runs its validate
// tags. On failure a 400 has been written.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.ErrLog.BadRequest(w, "request body must be a JSON object", nil)
		return false
	}
	if n, ok := v.(normalizer); ok {
		n.normalize()
	}
	if res := inputval.Validate(v); res.HasErrors() {
		h.ErrLog.BadRequest(w, "validation failed", res.ByField())
		return false
	}
	return true
}

// signIn records u in the session cookie and issues a bearer token.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, u models.User, status int) {
	token, err := h.SessionMgr.Tokens().Issue(u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "issue token", err, "could not sign in")
		return
	}
	if err := h.SessionMgr.Login(w, r, u.ID); err != nil {
		// The bearer token still works; only the cookie is missing.
		h.Log.Warn("save session", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}
	apierrors.WriteJSON(w, status, authResponse{
		Token: token,
		User:  userView{ID: u.ID, Name: u.Name, Email: u.Email},
	})
}
