// internal/app/features/projects/edit.go
package projects

import (
	"context"
	"net/http"

	"github.com/dalemusser/projecthub/internal/app/policy/projectpolicy"
	projectstore "github.com/dalemusser/projecthub/internal/app/store/projects"
	"github.com/dalemusser/projecthub/internal/app/system/authz"
	"github.com/dalemusser/projecthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/projecthub/internal/app/system/normalize"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/dalemusser/projecthub/internal/domain/models"
)

// HandleEdit updates name and/or description.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if !h.decode(w, r, &req) {
		return
	}
	var f projectstore.Fields
	if req.Name != nil {
		name := normalize.Name(htmlsanitize.PlainText(*req.Name))
		f.Name = &name
	}
	if req.Description != nil {
		desc := htmlsanitize.PlainText(*req.Description)
		f.Description = &desc
	}
	if f.Name == nil && f.Description == nil {
		h.ErrLog.BadRequest(w, "nothing to update", nil)
		return
	}
	h.update(w, r, projectpolicy.ActionEditDetails, f, "project updated")
}

// HandleStatus changes the lifecycle status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}
	status := models.ProjectStatus(req.Status)
	h.update(w, r, projectpolicy.ActionChangeStatus, projectstore.Fields{Status: &status}, "status updated")
}

// HandleInfo replaces the free-form metadata map.
func (h *Handler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	var req infoRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.update(w, r, projectpolicy.ActionSetMetadata, projectstore.Fields{Info: htmlsanitize.PlainTextMap(req.Info)}, "info updated")
}

// update loads the project, authorizes action and applies f conditional on
// the caller still owning it.
func (h *Handler) update(w http.ResponseWriter, r *http.Request, action projectpolicy.Action, f projectstore.Fields, done string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, ok := h.loadProject(ctx, w, r)
	if !ok {
		return
	}
	requester := authz.Requester(r)
	if !h.authorize(w, r, string(action), projectpolicy.AuthorizeMutation(*p, requester, action)) {
		return
	}

	if _, err := h.Projects.UpdateFields(ctx, p.ID, requester, f); err != nil {
		h.writeStoreErr(w, r, "update project", err)
		return
	}
	writeOK(w, done)
}
