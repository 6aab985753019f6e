// internal/app/features/projects/participants.go
package projects

import (
	"context"
	"errors"
	"net/http"

	apierrors "github.com/dalemusser/projecthub/internal/app/features/errors"
	"github.com/dalemusser/projecthub/internal/app/policy/projectpolicy"
	"github.com/dalemusser/projecthub/internal/app/store/queries/projectmembers"
	"github.com/dalemusser/projecthub/internal/app/system/accesserr"
	"github.com/dalemusser/projecthub/internal/app/system/authz"
	"github.com/dalemusser/projecthub/internal/app/system/ident"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type membersResponse struct {
	Members []projectmembers.ProjectMember `json:"members"`
}

// ServeParticipants lists the owner and participants with their names.
func (h *Handler) ServeParticipants(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, ok := h.loadProject(ctx, w, r)
	if !ok {
		return
	}
	if !h.authorize(w, r, actionView, projectpolicy.AuthorizeView(*p, authz.Requester(r))) {
		return
	}

	members, err := projectmembers.List(ctx, h.DB, p.ID)
	if err != nil {
		h.ErrLog.Write(w, r, "list project members", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, membersResponse{Members: members})
}

// ServeAvailableUsers lists the users the owner could add: everyone except
// the owner and current participants.
func (h *Handler) ServeAvailableUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, ok := h.loadProject(ctx, w, r)
	if !ok {
		return
	}
	action := projectpolicy.ActionAddParticipant
	if !h.authorize(w, r, string(action), projectpolicy.AuthorizeMutation(*p, authz.Requester(r), action)) {
		return
	}

	// Exclusions narrows the query; AvailableUsers applies the same rule in memory.
	candidates, err := h.Users.ListExcluding(ctx, projectpolicy.Exclusions(*p))
	if err != nil {
		h.ErrLog.Write(w, r, "list available users", err)
		return
	}
	users := projectpolicy.AvailableUsers(*p, candidates)
	out := usersResponse{Users: make([]userView, 0, len(users))}
	for _, u := range users {
		out.Users = append(out.Users, userView{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	apierrors.WriteJSON(w, http.StatusOK, out)
}

// HandleAddParticipant adds the user named in the body. Adding a current
// participant succeeds without a write.
func (h *Handler) HandleAddParticipant(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if !h.decode(w, r, &req) {
		return
	}
	userID, err := ident.Parse(req.UserID)
	if err != nil {
		h.ErrLog.Write(w, r, "bad user id", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, ok := h.loadProject(ctx, w, r)
	if !ok {
		return
	}
	requester := authz.Requester(r)
	action := projectpolicy.ActionAddParticipant
	if !h.authorize(w, r, string(action), projectpolicy.AuthorizeMutation(*p, requester, action)) {
		return
	}

	var candidate *models.User
	u, err := h.Users.GetByID(ctx, userID)
	switch {
	case err == nil:
		candidate = u
	case errors.Is(err, accesserr.ErrUnknownUser):
	default:
		h.ErrLog.Write(w, r, "load participant", err)
		return
	}

	if _, err := projectpolicy.AddParticipant(*p, candidate); err != nil {
		h.ErrLog.Write(w, r, "add participant", err)
		return
	}
	if !ident.Contains(p.Participants, userID) {
		if _, err := h.Projects.AddParticipant(ctx, p.ID, requester, userID); err != nil {
			h.ErrLog.Write(w, r, "add participant", err)
			return
		}
		h.Log.Info("participant added",
			zap.String("project_id", p.ID.Hex()),
			zap.String("user_id", userID.Hex()))
	}
	writeOK(w, "participant added")
}

// HandleRemoveParticipant removes {userID}. Removing a non-participant
// succeeds.
func (h *Handler) HandleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	userID, err := ident.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		h.ErrLog.Write(w, r, "bad user id", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, ok := h.loadProject(ctx, w, r)
	if !ok {
		return
	}
	requester := authz.Requester(r)
	action := projectpolicy.ActionRemoveParticipant
	if !h.authorize(w, r, string(action), projectpolicy.AuthorizeMutation(*p, requester, action)) {
		return
	}

	if _, err := projectpolicy.RemoveParticipant(*p, userID); err != nil {
		h.ErrLog.Write(w, r, "remove participant", err)
		return
	}
	if _, err := h.Projects.RemoveParticipant(ctx, p.ID, requester, userID); err != nil {
		h.ErrLog.Write(w, r, "remove participant", err)
		return
	}
	h.Log.Info("participant removed",
		zap.String("project_id", p.ID.Hex()),
		zap.String("user_id", userID.Hex()))
	writeOK(w, "participant removed")
}
