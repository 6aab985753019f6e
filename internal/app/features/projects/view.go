// internal/app/features/projects/view.go
package projects

import (
	"context"
	"net/http"

	apierrors "github.com/dalemusser/projecthub/internal/app/features/errors"
	"github.com/dalemusser/projecthub/internal/app/policy/projectpolicy"
	"github.com/dalemusser/projecthub/internal/app/system/authz"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
)

const actionView = "view"

// ServeProject returns the full project to its owner and participants.
func (h *Handler) ServeProject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, ok := h.loadProject(ctx, w, r)
	if !ok {
		return
	}
	requester := authz.Requester(r)
	if !h.authorize(w, r, actionView, projectpolicy.AuthorizeView(*p, requester)) {
		return
	}

	name, err := h.ownerName(ctx, p.OwnerID)
	if err != nil {
		h.ErrLog.Write(w, r, "resolve owner name", err)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, projectView{
		Project:   *p,
		OwnerName: name,
		Access:    projectpolicy.ComputeAccess(*p, requester),
	})
}
