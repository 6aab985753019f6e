// Package accesserr defines the error kinds produced by project access control,
// membership changes, and the stores underneath them.
//
// Every denial is a distinct sentinel so the HTTP layer can map it to a status
// code without string matching. Callers compare with errors.Is; storage
// failures are wrapped so both ErrStorageUnavailable and the driver error are
// reachable through the chain.
package accesserr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidIdentifier        = errors.New("invalid identifier")
	ErrUnknownUser              = errors.New("user not found")
	ErrUnknownProject           = errors.New("project not found")
	ErrNotOwner                 = errors.New("only the project owner can perform this action")
	ErrAccessDenied             = errors.New("access denied")
	ErrOwnerCannotBeParticipant = errors.New("owner cannot be a participant")
	ErrCannotRemoveOwner        = errors.New("cannot remove owner from participants")
	ErrStorageUnavailable       = errors.New("storage unavailable")
)

// Storage wraps a driver error as ErrStorageUnavailable. A nil err returns nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

// kinds is ordered; the first match wins when an error wraps several.
var kinds = []struct {
	err    error
	name   string
	status int
}{
	{ErrInvalidIdentifier, "invalid_identifier", http.StatusBadRequest},
	{ErrNotOwner, "not_owner", http.StatusForbidden},
	{ErrAccessDenied, "access_denied", http.StatusForbidden},
	{ErrUnknownProject, "unknown_project", http.StatusNotFound},
	{ErrUnknownUser, "unknown_user", http.StatusNotFound},
	{ErrOwnerCannotBeParticipant, "owner_cannot_be_participant", http.StatusConflict},
	{ErrCannotRemoveOwner, "cannot_remove_owner", http.StatusConflict},
	{ErrStorageUnavailable, "storage_unavailable", http.StatusServiceUnavailable},
}

// Status returns the HTTP status code for err. Unknown errors map to 500.
func Status(err error) int {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// Kind returns a stable machine-readable name for err, or "internal".
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "internal"
}

// Public returns the message safe to show a client. Storage and unknown
// errors never leak driver details.
func Public(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.err.Error()
		}
	}
	return "internal server error"
}
