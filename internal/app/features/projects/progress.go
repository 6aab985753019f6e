// internal/app/features/projects/progress.go
package projects

import (
	"context"
	"net/http"

	apierrors "github.com/dalemusser/projecthub/internal/app/features/errors"
	"github.com/dalemusser/projecthub/internal/app/policy/projectpolicy"
	"github.com/dalemusser/projecthub/internal/app/system/authz"
	"github.com/dalemusser/projecthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
)

// HandleAddProgress appends a progress note. Owner and participants may
// both write.
func (h *Handler) HandleAddProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if !h.decode(w, r, &req) {
		return
	}
	body := htmlsanitize.PlainText(req.Text)
	if body == "" {
		h.ErrLog.BadRequest(w, "Progress is required.", map[string]string{"text": "Progress is required."})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, ok := h.loadProject(ctx, w, r)
	if !ok {
		return
	}
	requester := authz.Requester(r)
	action := projectpolicy.ActionAddProgress
	if !h.authorize(w, r, string(action), projectpolicy.AuthorizeMutation(*p, requester, action)) {
		return
	}

	entry, err := h.Projects.AppendProgress(ctx, p.ID, requester, body)
	if err != nil {
		h.ErrLog.Write(w, r, "append progress", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusCreated, entry)
}
