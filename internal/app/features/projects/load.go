// internal/app/features/projects/load.go
package projects

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	apierrors "github.com/dalemusser/projecthub/internal/app/features/errors"
	projectstore "github.com/dalemusser/projecthub/internal/app/store/projects"
	"github.com/dalemusser/projecthub/internal/app/system/ident"
	"github.com/dalemusser/projecthub/internal/app/system/inputval"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxBodyBytes = 1 << 20

// loadProject parses the {id} URL param and loads the project. On failure
// the error response has already been written.
func (h *Handler) loadProject(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	id, err := ident.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Write(w, r, "bad project id", err)
		return nil, false
	}
	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, "load project", err)
		return nil, false
	}
	return p, true
}

// authorize records the decision and writes the denial, if any.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, action string, err error) bool {
	h.Metrics.Decision(action, err)
	if err != nil {
		h.ErrLog.Write(w, r, "project access denied", err)
		return false
	}
	return true
}

// normalizer is implemented by requests that canonicalize input before
// their validate tags run.
type normalizer interface {
	normalize()
}

// decode reads a JSON body into v and runs its validate tags. On failure
// a 400 has been written.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.ErrLog.BadRequest(w, "request body must be a JSON object", nil)
		return false
	}
	if n, ok := v.(normalizer); ok {
		n.normalize()
	}
	if res := inputval.Validate(v); res.HasErrors() {
		h.ErrLog.BadRequest(w, res.First(), res.ByField())
		return false
	}
	return true
}

// writeStoreErr maps store input errors to 400 and the rest through accesserr.
func (h *Handler) writeStoreErr(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, projectstore.ErrNameRequired):
		h.ErrLog.BadRequest(w, err.Error(), map[string]string{"name": "Name is required."})
	case errors.Is(err, projectstore.ErrBadStatus):
		h.ErrLog.BadRequest(w, err.Error(), map[string]string{"status": err.Error()})
	default:
		h.ErrLog.Write(w, r, msg, err)
	}
}

// ownerName resolves the display name for a project's owner.
func (h *Handler) ownerName(ctx context.Context, ownerID primitive.ObjectID) (string, error) {
	names, err := h.Users.NamesByID(ctx, []primitive.ObjectID{ownerID})
	if err != nil {
		return "", err
	}
	if n, ok := names[ownerID]; ok && n != "" {
		return n, nil
	}
	return unknownOwner, nil
}

type message struct {
	Message string `json:"message"`
}

func writeOK(w http.ResponseWriter, msg string) {
	apierrors.WriteJSON(w, http.StatusOK, message{Message: msg})
}
