// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/projecthub/internal/app/system/accesserr"
	"github.com/dalemusser/projecthub/internal/app/system/authz"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Body is the JSON shape of every error response.
type Body struct {
	Error  string            `json:"error"`
	Kind   string            `json:"kind"`
	Ref    string            `json:"ref,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// ErrorLogger writes JSON error responses and logs the server-side ones.
// Each 5xx gets a uuid ref that appears in both the log line and the body,
// so a client report can be matched to the log.
type ErrorLogger struct {
	Log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

// WriteJSON encodes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Write maps err through accesserr and writes it. Denials and not-found are
// logged at debug; anything mapping to 5xx is logged at error with a ref.
func (e *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := accesserr.Status(err)
	body := Body{Error: accesserr.Public(err), Kind: accesserr.Kind(err)}

	if status >= http.StatusInternalServerError {
		body.Ref = uuid.NewString()
		e.Log.Error(msg, e.fields(r, body.Ref, err)...)
	} else {
		e.Log.Debug(msg, e.fields(r, "", err)...)
	}
	WriteJSON(w, status, body)
}

// LogServerError logs err and writes a 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	ref := uuid.NewString()
	e.Log.Error(msg, e.fields(r, ref, err)...)
	if userMsg == "" {
		userMsg = "internal server error"
	}
	WriteJSON(w, http.StatusInternalServerError, Body{Error: userMsg, Kind: "internal", Ref: ref})
}

// BadRequest writes a 400. fields, when present, maps json field names to
// messages.
func (e *ErrorLogger) BadRequest(w http.ResponseWriter, msg string, fields map[string]string) {
	WriteJSON(w, http.StatusBadRequest, Body{Error: msg, Kind: "validation", Errors: fields})
}

// Unauthorized writes a 401 with msg.
func (e *ErrorLogger) Unauthorized(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusUnauthorized, Body{Error: msg, Kind: "unauthenticated"})
}

// Conflict writes a 409 with kind.
func (e *ErrorLogger) Conflict(w http.ResponseWriter, msg, kind string) {
	WriteJSON(w, http.StatusConflict, Body{Error: msg, Kind: kind})
}

// TooManyRequests writes a 429.
func (e *ErrorLogger) TooManyRequests(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusTooManyRequests, Body{Error: msg, Kind: "rate_limited"})
}

func (e *ErrorLogger) fields(r *http.Request, ref string, err error) []zap.Field {
	_, userID, _ := authz.UserCtx(r)
	f := []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("user_id", userID.Hex()),
		zap.String("kind", accesserr.Kind(err)),
	}
	if ref != "" {
		f = append(f, zap.String("ref", ref))
	}
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		f = append(f, zap.String("request_id", reqID))
	}
	return f
}
