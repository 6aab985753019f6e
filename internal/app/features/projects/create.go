// internal/app/features/projects/create.go
package projects

import (
	"context"
	"net/http"

	apierrors "github.com/dalemusser/projecthub/internal/app/features/errors"
	"github.com/dalemusser/projecthub/internal/app/system/authz"
	"github.com/dalemusser/projecthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.uber.org/zap"
)

// HandleCreate creates a project owned by the caller.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthorized(w, "authentication required")
		return
	}

	var req createRequest
	if !h.decode(w, r, &req) {
		return
	}
	status, _ := models.ParseProjectStatus(req.Status)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id, err := h.Projects.Insert(ctx, models.Project{
		Name:        htmlsanitize.PlainText(req.Name),
		Description: htmlsanitize.PlainText(req.Description),
		Status:      status,
		OwnerID:     uid,
	})
	if err != nil {
		h.writeStoreErr(w, r, "create project", err)
		return
	}

	h.Log.Info("project created",
		zap.String("project_id", id.Hex()),
		zap.String("owner_id", uid.Hex()))
	apierrors.WriteJSON(w, http.StatusCreated, createdResponse{Message: "project created", ProjectID: id})
}
