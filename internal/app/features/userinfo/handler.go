// internal/app/features/userinfo/handler.go
package userinfo

import (
	"context"
	"encoding/json"
	"net/http"

	projectstore "github.com/dalemusser/projecthub/internal/app/store/projects"
	"github.com/dalemusser/projecthub/internal/app/system/auth"
	"github.com/dalemusser/projecthub/internal/app/system/authz"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the caller's identity.
type Handler struct {
	Projects *projectstore.Store
	Log      *zap.Logger
}

// NewHandler creates a new userinfo handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Projects: projectstore.New(db), Log: logger}
}

type userJSON struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

type response struct {
	IsAuthenticated bool      `json:"is_authenticated"`
	User            *userJSON `json:"user"`
	ProjectsOwned   *int64    `json:"projects_owned,omitempty"`
}

// ServeUserInfo returns the current identity. Anonymous callers get 200
// with is_authenticated=false and a null user.
//
// Response format:
//
//	{ "is_authenticated": bool, "user": {"id","name","email"} | null, "projects_owned": n }
//
// projects_owned is present only for signed-in callers whose count
// succeeded; a failed count is logged and the field omitted.
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	_, uid, ok := authz.UserCtx(r)
	if !ok {
		_ = json.NewEncoder(w).Encode(response{})
		return
	}
	user, _ := auth.CurrentUser(r)
	resp := response{IsAuthenticated: true, User: &userJSON{ID: uid, Name: user.Name, Email: user.Email}}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	n, err := h.Projects.CountByOwner(ctx, uid)
	if err != nil {
		h.Log.Warn("userinfo: count owned projects", zap.Error(err), zap.String("user_id", uid.Hex()))
	} else {
		resp.ProjectsOwned = &n
	}

	_ = json.NewEncoder(w).Encode(resp)
}
