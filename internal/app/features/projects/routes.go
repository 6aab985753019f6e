// internal/app/features/projects/routes.go
package projects

import (
	"github.com/dalemusser/projecthub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/projects. The listing is open to anonymous
// callers; every other route requires a signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// LIST (optional auth)
	r.Get("/", h.ServeList)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// CREATE
		pr.Post("/", h.HandleCreate)

		// VIEW
		pr.Get("/{id}", h.ServeProject)

		// EDIT
		pr.Put("/{id}", h.HandleEdit)
		pr.Patch("/{id}/status", h.HandleStatus)
		pr.Patch("/{id}/info", h.HandleInfo)

		// PARTICIPANTS
		pr.Get("/{id}/participants", h.ServeParticipants)
		pr.Get("/{id}/available-users", h.ServeAvailableUsers)
		pr.Post("/{id}/participants", h.HandleAddParticipant)
		pr.Delete("/{id}/participants/{userID}", h.HandleRemoveParticipant)

		// PROGRESS
		pr.Post("/{id}/progress", h.HandleAddProgress)
	})

	return r
}
