// internal/app/policy/projectpolicy/projectpolicy.go
package projectpolicy

// Terminology: User Identifiers
//   - requester: the ObjectID of the caller; ident.Anonymous when not signed in
//   - userID: the ObjectID of the user being added/removed/considered

import (
	"slices"

	"github.com/dalemusser/projecthub/internal/app/system/accesserr"
	"github.com/dalemusser/projecthub/internal/app/system/ident"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessView is a caller's relationship to one project. It is derived on
// every request and never persisted.
type AccessView struct {
	HasAccess     bool `json:"has_access"`
	IsOwner       bool `json:"is_owner"`
	IsParticipant bool `json:"is_participant"`
}

// ComputeAccess derives the AccessView for requester on p.
// An anonymous requester gets the zero AccessView.
func ComputeAccess(p models.Project, requester primitive.ObjectID) AccessView {
	if ident.IsAnonymous(requester) {
		return AccessView{}
	}
	isOwner := requester == p.OwnerID
	isParticipant := ident.Contains(p.Participants, requester)
	return AccessView{
		HasAccess:     isOwner || isParticipant,
		IsOwner:       isOwner,
		IsParticipant: isParticipant,
	}
}

// AuthorizeView returns nil if requester may read the full project document
// (description, participants, metadata, progress).
func AuthorizeView(p models.Project, requester primitive.ObjectID) error {
	if !ComputeAccess(p, requester).HasAccess {
		return accesserr.ErrAccessDenied
	}
	return nil
}

// AuthorizeMutation returns nil if requester may perform action on p.
// Owner-only actions fail with ErrNotOwner; member actions fail with
// ErrAccessDenied for anyone outside the project.
func AuthorizeMutation(p models.Project, requester primitive.ObjectID, action Action) error {
	av := ComputeAccess(p, requester)
	switch action.rule() {
	case ruleOwner:
		if !av.IsOwner {
			return accesserr.ErrNotOwner
		}
		return nil
	case ruleMember:
		if !av.HasAccess {
			return accesserr.ErrAccessDenied
		}
		return nil
	default:
		return accesserr.ErrAccessDenied
	}
}

// AddParticipant returns a copy of p with user in its participant set.
// user is the resolved record for the candidate; nil means the id did not
// resolve and fails with ErrUnknownUser. Adding an existing participant is
// a no-op. p is not modified.
func AddParticipant(p models.Project, user *models.User) (models.Project, error) {
	if user == nil || user.ID.IsZero() {
		return p, accesserr.ErrUnknownUser
	}
	if user.ID == p.OwnerID {
		return p, accesserr.ErrOwnerCannotBeParticipant
	}
	if ident.Contains(p.Participants, user.ID) {
		return p, nil
	}
	out := p
	out.Participants = append(slices.Clone(p.Participants), user.ID)
	return out, nil
}

// RemoveParticipant returns a copy of p without userID in its participant
// set. Removing an absent user is a no-op. p is not modified.
func RemoveParticipant(p models.Project, userID primitive.ObjectID) (models.Project, error) {
	if userID.IsZero() {
		return p, accesserr.ErrInvalidIdentifier
	}
	if userID == p.OwnerID {
		return p, accesserr.ErrCannotRemoveOwner
	}
	if !ident.Contains(p.Participants, userID) {
		return p, nil
	}
	out := p
	out.Participants = slices.DeleteFunc(slices.Clone(p.Participants), func(id primitive.ObjectID) bool {
		return id == userID
	})
	return out, nil
}

// Exclusions returns the ids that may not be added to p: the owner followed
// by every current participant. Stores use it to push the same rule into
// a $nin filter.
func Exclusions(p models.Project) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(p.Participants)+1)
	out = append(out, p.OwnerID)
	for _, id := range p.Participants {
		if !ident.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// AvailableUsers filters all down to the users eligible to be added to p,
// preserving input order.
func AvailableUsers(p models.Project, all []models.User) []models.User {
	excluded := Exclusions(p)
	out := make([]models.User, 0, len(all))
	for _, u := range all {
		if ident.Contains(excluded, u.ID) {
			continue
		}
		out = append(out, u)
	}
	return out
}
