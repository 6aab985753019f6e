// internal/app/features/projects/list.go
package projects

import (
	"net/http"

	apierrors "github.com/dalemusser/projecthub/internal/app/features/errors"
	"github.com/dalemusser/projecthub/internal/app/system/authz"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
)

// ServeList returns every project split into the caller's projects and the
// rest, grouped by owner name. Anonymous callers see everything under
// Others with no access flags set.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list projects")
	defer cancel()

	listing, err := h.Listing.List(ctx, authz.Requester(r))
	if err != nil {
		h.ErrLog.Write(w, r, "list projects", err)
		return
	}

	n := 0
	for _, g := range listing.Mine {
		n += len(g.Projects)
	}
	for _, g := range listing.Others {
		n += len(g.Projects)
	}
	h.Metrics.Listed(n)

	apierrors.WriteJSON(w, http.StatusOK, listing)
}
