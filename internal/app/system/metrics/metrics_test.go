package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/projecthub/internal/app/system/accesserr"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecision(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Decision("edit_details", nil)
	m.Decision("edit_details", accesserr.ErrNotOwner)
	m.Decision("edit_details", fmt.Errorf("wrapped: %w", accesserr.ErrNotOwner))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccessDecisions.WithLabelValues("edit_details", "allowed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AccessDecisions.WithLabelValues("edit_details", "not_owner")))
}

func TestNilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Decision("x", nil)
		m.Listed(3)
	})
}

func TestListed(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Listed(3)
	m.Listed(0)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ListedProjects))
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/projects/"+id, nil))
	}

	got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/projects/{id}", "418"))
	assert.Equal(t, 2.0, got)
}

func TestHandler_Exposition(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Decision("add_participant", accesserr.ErrOwnerCannotBeParticipant)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body),
		`projecthub_access_decisions_total{action="add_participant",outcome="owner_cannot_be_participant"} 1`))
}
