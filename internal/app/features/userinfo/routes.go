// internal/app/features/userinfo/routes.go
package userinfo

import "github.com/go-chi/chi/v5"

// MountRoutes registers GET /api/users/me on the supplied router.
// No auth-specific middleware is required because the handler itself
// checks the resolved user.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/api/users/me", h.ServeUserInfo)
}
