package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/projecthub/internal/app/system/auth"
	"github.com/dalemusser/projecthub/internal/app/system/authz"
	"github.com/dalemusser/projecthub/internal/app/system/ident"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx_WithUser(t *testing.T) {
	id := primitive.NewObjectID()
	req := auth.WithTestUser(httptest.NewRequest("GET", "/test", nil), &auth.SessionUser{ID: id, Name: "Alice"})

	name, got, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("expected ok")
	}
	if name != "Alice" || got != id {
		t.Errorf("UserCtx = %q, %s", name, got.Hex())
	}
	if authz.Requester(req) != id {
		t.Error("Requester should return the user id")
	}
}

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	_, id, ok := authz.UserCtx(req)
	if ok {
		t.Error("expected ok=false with no user")
	}
	if id != ident.Anonymous {
		t.Errorf("expected Anonymous, got %s", id.Hex())
	}
}

func TestUserCtx_ZeroIDFailsClosed(t *testing.T) {
	req := auth.WithTestUser(httptest.NewRequest("GET", "/test", nil), &auth.SessionUser{Name: "Ghost"})

	if _, _, ok := authz.UserCtx(req); ok {
		t.Error("a zero id must not count as signed in")
	}
	if !ident.IsAnonymous(authz.Requester(req)) {
		t.Error("Requester should be Anonymous")
	}
}
