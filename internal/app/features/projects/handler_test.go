package projects_test

import (
	"context"
	"net/http"
	"testing"

	apierrors "github.com/dalemusser/projecthub/internal/app/features/errors"
	"github.com/dalemusser/projecthub/internal/app/features/projects"
	"github.com/dalemusser/projecthub/internal/app/store/queries/projectlist"
	"github.com/dalemusser/projecthub/internal/app/system/auth"
	"github.com/dalemusser/projecthub/internal/app/system/metrics"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/projecthub/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*projects.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := apierrors.NewErrorLogger(logger)
	handler := projects.NewHandler(db, errLog, metrics.New(prometheus.NewRegistry()), logger)
	return handler, testutil.NewFixtures(t, db)
}

func loadProject(t *testing.T, ctx context.Context, f *testutil.Fixtures, id primitive.ObjectID) models.Project {
	t.Helper()
	var p models.Project
	if err := f.DB().Collection("projects").FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		t.Fatalf("load project %s: %v", id.Hex(), err)
	}
	return p
}

func idParam(r *http.Request, id primitive.ObjectID) *http.Request {
	return testutil.WithChiURLParam(r, "id", id.Hex())
}

func TestServeList_Anonymous(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice")
	f.CreateProject(ctx, "Alpha", alice.ID)
	f.CreateProject(ctx, "Beta", alice.ID)

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewRequest(http.MethodGet, "/api/projects"))
	rec.AssertStatus(t, http.StatusOK)

	var got projectlist.Listing
	rec.DecodeJSON(t, &got)
	if len(got.Mine) != 0 {
		t.Errorf("anonymous mine: got %d groups, want 0", len(got.Mine))
	}
	if len(got.Others) != 1 || got.Others[0].OwnerName != "Alice" {
		t.Fatalf("others: got %+v, want one Alice group", got.Others)
	}
	if n := len(got.Others[0].Projects); n != 2 {
		t.Errorf("Alice projects: got %d, want 2", n)
	}
	for _, s := range got.Others[0].Projects {
		if s.HasAccess || s.IsOwner {
			t.Errorf("anonymous summary %q carries access flags", s.Name)
		}
	}
	if v := promtest.ToFloat64(h.Metrics.ListedProjects); v != 2 {
		t.Errorf("listed metric: got %v, want 2", v)
	}
}

func TestServeList_SignedIn(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice")
	bob := f.CreateUser(ctx, "Bob")
	f.CreateProject(ctx, "Alpha", alice.ID)
	f.CreateProject(ctx, "Shared", bob.ID, alice.ID)
	f.CreateProject(ctx, "Private", bob.ID)

	rec := testutil.NewRecorder()
	req := testutil.WithUser(testutil.NewRequest(http.MethodGet, "/api/projects"), testutil.AsTestUser(alice))
	h.ServeList(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var got projectlist.Listing
	rec.DecodeJSON(t, &got)
	if len(got.Mine) != 2 {
		t.Fatalf("mine: got %d groups, want 2 (%+v)", len(got.Mine), got.Mine)
	}
	if got.Mine[0].OwnerName != "Alice" || got.Mine[1].OwnerName != "Bob" {
		t.Errorf("mine order: got %q, %q", got.Mine[0].OwnerName, got.Mine[1].OwnerName)
	}
	if !got.Mine[0].Projects[0].IsOwner {
		t.Error("Alpha should be marked is_owner")
	}
	if got.Mine[1].Projects[0].IsOwner || !got.Mine[1].Projects[0].HasAccess {
		t.Error("Shared should have access without ownership")
	}
	if len(got.Others) != 1 || got.Others[0].Projects[0].Name != "Private" {
		t.Errorf("others: got %+v, want Bob/Private", got.Others)
	}
}

func TestHandleCreate(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := testutil.AsTestUser(f.CreateUser(ctx, "Alice"))

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/api/projects", alice, map[string]string{
		"name":        "  <b>Launch</b>  plan ",
		"description": "<script>x()</script>Ship it",
		"status":      " Active ",
	}))
	rec.AssertStatus(t, http.StatusCreated)

	var resp struct {
		ProjectID primitive.ObjectID `json:"project_id"`
	}
	rec.DecodeJSON(t, &resp)
	p := loadProject(t, ctx, f, resp.ProjectID)

	if p.Name != "Launch plan" {
		t.Errorf("name: got %q, want %q", p.Name, "Launch plan")
	}
	if p.Description != "Ship it" {
		t.Errorf("description: got %q, want %q", p.Description, "Ship it")
	}
	if p.Status != models.StatusActive {
		t.Errorf("status: got %q, want active", p.Status)
	}
	if p.OwnerID != alice.ID {
		t.Errorf("owner: got %s, want %s", p.OwnerID.Hex(), alice.ID.Hex())
	}
	if len(p.Participants) != 0 {
		t.Errorf("participants: got %v, want empty", p.Participants)
	}
}

func TestHandleCreate_DefaultsToPending(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := testutil.AsTestUser(f.CreateUser(ctx, "Alice"))
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/api/projects", alice, map[string]string{"name": "Plain"}))
	rec.AssertStatus(t, http.StatusCreated)

	var resp struct {
		ProjectID primitive.ObjectID `json:"project_id"`
	}
	rec.DecodeJSON(t, &resp)
	if p := loadProject(t, ctx, f, resp.ProjectID); p.Status != models.StatusPending {
		t.Errorf("status: got %q, want pending", p.Status)
	}
}

func TestHandleCreate_Invalid(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := testutil.AsTestUser(f.CreateUser(ctx, "Alice"))

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"missing name", map[string]string{"description": "x"}, "name"},
		{"blank name", map[string]string{"name": "   "}, "name"},
		{"markup only", map[string]string{"name": "<img src=x>"}, "name"},
		{"bad status", map[string]string{"name": "Ok", "status": "archived"}, "status"},
		{"malformed json", `{"name":`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleCreate(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/api/projects", alice, tt.body))
			rec.AssertStatus(t, http.StatusBadRequest)

			var body apierrors.Body
			rec.DecodeJSON(t, &body)
			if body.Kind != "validation" {
				t.Errorf("kind: got %q, want validation", body.Kind)
			}
			if tt.field != "" && body.Errors[tt.field] == "" {
				t.Errorf("expected an error for field %q, got %v", tt.field, body.Errors)
			}
		})
	}

	n, err := f.DB().Collection("projects").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("invalid creates stored %d projects", n)
	}
}

func TestServeProject(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice")
	bob := f.CreateUser(ctx, "Bob")
	carol := f.CreateUser(ctx, "Carol")
	p := f.CreateProject(ctx, "Alpha", alice.ID, bob.ID)

	t.Run("owner", func(t *testing.T) {
		rec := testutil.NewRecorder()
		h.ServeProject(rec, idParam(testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.AsTestUser(alice), nil), p.ID))
		rec.AssertStatus(t, http.StatusOK)

		var got struct {
			Name      string `json:"name"`
			OwnerName string `json:"owner_name"`
			Access    struct {
				HasAccess     bool `json:"has_access"`
				IsOwner       bool `json:"is_owner"`
				IsParticipant bool `json:"is_participant"`
			} `json:"access"`
			Participants []primitive.ObjectID `json:"participants"`
		}
		rec.DecodeJSON(t, &got)
		if got.Name != "Alpha" || got.OwnerName != "Alice" {
			t.Errorf("got name=%q owner=%q", got.Name, got.OwnerName)
		}
		if !got.Access.HasAccess || !got.Access.IsOwner || got.Access.IsParticipant {
			t.Errorf("owner access: %+v", got.Access)
		}
		if len(got.Participants) != 1 || got.Participants[0] != bob.ID {
			t.Errorf("participants: got %v", got.Participants)
		}
	})

	t.Run("participant", func(t *testing.T) {
		rec := testutil.NewRecorder()
		h.ServeProject(rec, idParam(testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.AsTestUser(bob), nil), p.ID))
		rec.AssertStatus(t, http.StatusOK)
		rec.AssertContains(t, `"is_participant":true`)
	})

	t.Run("outsider", func(t *testing.T) {
		rec := testutil.NewRecorder()
		h.ServeProject(rec, idParam(testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.AsTestUser(carol), nil), p.ID))
		rec.AssertStatus(t, http.StatusForbidden)
		rec.AssertContains(t, `"kind":"access_denied"`)
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := testutil.NewRecorder()
		req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.AsTestUser(alice), nil), "id", "not-an-id")
		h.ServeProject(rec, req)
		rec.AssertStatus(t, http.StatusBadRequest)
	})

	t.Run("missing", func(t *testing.T) {
		rec := testutil.NewRecorder()
		h.ServeProject(rec, idParam(testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.AsTestUser(alice), nil), primitive.NewObjectID()))
		rec.AssertStatus(t, http.StatusNotFound)
	})

	denied := promtest.ToFloat64(h.Metrics.AccessDecisions.WithLabelValues("view", "access_denied"))
	if denied != 1 {
		t.Errorf("access_denied decisions: got %v, want 1", denied)
	}
}

func TestHandleEdit(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice")
	bob := f.CreateUser(ctx, "Bob")
	p := f.CreateProject(ctx, "Alpha", alice.ID, bob.ID)

	rec := testutil.NewRecorder()
	h.HandleEdit(rec, idParam(testutil.NewAuthenticatedRequest(http.MethodPut, "/", testutil.AsTestUser(alice), map[string]string{
		"name":        "Alpha 2",
		"description": "new",
	}), p.ID))
	rec.AssertStatus(t, http.StatusOK)

	got := loadProject(t, ctx, f, p.ID)
	if got.Name != "Alpha 2" || got.Description != "new" {
		t.Errorf("after edit: name=%q description=%q", got.Name, got.Description)
	}
	if got.OwnerID != alice.ID || len(got.Participants) != 1 {
		t.Errorf("edit touched ownership: owner=%s participants=%v", got.OwnerID.Hex(), got.Participants)
	}

	rec = testutil.NewRecorder()
	h.HandleEdit(rec, idParam(testutil.NewAuthenticatedRequest(http.MethodPut, "/", testutil.AsTestUser(bob), map[string]string{"name": "Hijack"}), p.ID))
	rec.AssertStatus(t, http.StatusForbidden)
	rec.AssertContains(t, `"kind":"not_owner"`)

	rec = testutil.NewRecorder()
	h.HandleEdit(rec, idParam(testutil.NewAuthenticatedRequest(http.MethodPut, "/", testutil.AsTestUser(alice), map[string]string{}), p.ID))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	h.HandleEdit(rec, idParam(testutil.NewAuthenticatedRequest(http.MethodPut, "/", testutil.AsTestUser(alice), map[string]string{"name": " "}), p.ID))
	rec.AssertStatus(t, http.StatusBadRequest)

	if got := loadProject(t, ctx, f, p.ID); got.Name != "Alpha 2" {
		t.Errorf("rejected edits changed name to %q", got.Name)
	}
}

func TestHandleEdit_IgnoresOwnershipFields(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice")
	bob := f.CreateUser(ctx, "Bob")
	p := f.CreateProject(ctx, "Alpha", alice.ID)

	rec := testutil.NewRecorder()
	h.HandleEdit(rec, idParam(testutil.NewAuthenticatedRequest(http.MethodPut, "/", testutil.AsTestUser(alice), map[string]any{
		"description":  "d",
		"owner_id":     bob.ID.Hex(),
		"participants": []string{bob.ID.Hex()},
	}), p.ID))
	rec.AssertStatus(t, http.StatusOK)

	got := loadProject(t, ctx, f, p.ID)
	if got.OwnerID != alice.ID || len(got.Participants) != 0 {
		t.Errorf("ownership changed: owner=%s participants=%v", got.OwnerID.Hex(), got.Participants)
	}
}

func TestHandleStatus(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice")
	bob := f.CreateUser(ctx, "Bob")
	p := f.CreateProject(ctx, "Alpha", alice.ID, bob.ID)

	tests := []struct {
		name   string
		user   models.User
		status string
		code   int
		want   models.ProjectStatus
	}{
		{"owner sets completed", alice, "completed", http.StatusOK, models.StatusCompleted},
		{"owner input is normalized", alice, " ACTIVE ", http.StatusOK, models.StatusActive},
		{"invalid status", alice, "done", http.StatusBadRequest, models.StatusActive},
		{"participant denied", bob, "pending", http.StatusForbidden, models.StatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleStatus(rec, idParam(testutil.NewAuthenticatedRequest(http.MethodPatch, "/", testutil.AsTestUser(tt.user), map[string]string{"status": tt.status}), p.ID))
			rec.AssertStatus(t, tt.code)
			if got := loadProject(t, ctx, f, p.ID).Status; got != tt.want {
				t.Errorf("status: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandleInfo(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice")
	p := f.CreateProject(ctx, "Alpha", alice.ID)

	rec := testutil.NewRecorder()
	h.HandleInfo(rec, idParam(testutil.NewAuthenticatedRequest(http.MethodPatch, "/", testutil.AsTestUser(alice), map[string]any{
		"info": map[string]any{"repo": "<i>github</i>", "stars": 3},
	}), p.ID))
	rec.AssertStatus(t, http.StatusOK)

	got := loadProject(t, ctx, f, p.ID)
	if got.Info["repo"] != "github" {
		t.Errorf("info.repo: got %v, want github", got.Info["repo"])
	}
	if _, ok := got.Info["stars"]; !ok {
		t.Error("info.stars missing")
	}

	rec = testutil.NewRecorder()
	h.HandleInfo(rec, idParam(testutil.NewAuthenticatedRequest(http.MethodPatch, "/", testutil.AsTestUser(alice), map[string]any{}), p.ID))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeParticipants(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice")
	bob := f.CreateUser(ctx, "Bob")
	amy := f.CreateUser(ctx, "Amy")
	carol := f.CreateUser(ctx, "Carol")
	p := f.CreateProject(ctx, "Alpha", alice.ID, bob.ID, amy.ID)

	rec := testutil.NewRecorder()
	h.ServeParticipants(rec, idParam(testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.AsTestUser(bob), nil), p.ID))
	rec.AssertStatus(t, http.StatusOK)

	var got struct {
		Members []struct {
			User struct {
				Name string `json:"name"`
			} `json:"user"`
			Role string `json:"role"`
		} `json:"members"`
	}
	rec.DecodeJSON(t, &got)
	want := []struct{ name, role string }{{"Alice", "owner"}, {"Amy", "participant"}, {"Bob", "participant"}}
	if len(got.Members) != len(want) {
		t.Fatalf("members: got %d, want %d", len(got.Members), len(want))
	}
	for i, w := range want {
		if got.Members[i].User.Name != w.name || got.Members[i].Role != w.role {
			t.Errorf("member %d: got %s/%s, want %s/%s", i, got.Members[i].User.Name, got.Members[i].Role, w.name, w.role)
		}
	}

	rec = testutil.NewRecorder()
	h.ServeParticipants(rec, idParam(testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.AsTestUser(carol), nil), p.ID))
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestServeAvailableUsers(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice")
	bob := f.CreateUser(ctx, "Bob")
	carol := f.CreateUser(ctx, "Carol")
	dave := f.CreateUser(ctx, "Dave")
	p := f.CreateProject(ctx, "Alpha", alice.ID, bob.ID)

	rec := testutil.NewRecorder()
	h.ServeAvailableUsers(rec, idParam(testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.AsTestUser(alice), nil), p.ID))
	rec.AssertStatus(t, http.StatusOK)

	var got struct {
		Users []struct {
			ID primitive.ObjectID `json:"id"`
		} `json:"users"`
	}
	rec.DecodeJSON(t, &got)
	if len(got.Users) != 2 || got.Users[0].ID != carol.ID || got.Users[1].ID != dave.ID {
		t.Errorf("available: got %+v, want Carol, Dave", got.Users)
	}

	rec = testutil.NewRecorder()
	h.ServeAvailableUsers(rec, idParam(testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.AsTestUser(bob), nil), p.ID))
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestHandleAddParticipant(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice")
	bob := f.CreateUser(ctx, "Bob")
	carol := f.CreateUser(ctx, "Carol")
	p := f.CreateProject(ctx, "Alpha", alice.ID)

	post := func(user models.User, userID string) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		h.HandleAddParticipant(rec, idParam(testutil.NewAuthenticatedRequest(http.MethodPost, "/", testutil.AsTestUser(user), map[string]string{"user_id": userID}), p.ID))
		return rec
	}

	post(alice, bob.ID.Hex()).AssertStatus(t, http.StatusOK)
	post(alice, bob.ID.Hex()).AssertStatus(t, http.StatusOK)

	got := loadProject(t, ctx, f, p.ID)
	if len(got.Participants) != 1 || got.Participants[0] != bob.ID {
		t.Fatalf("participants: got %v, want [bob]", got.Participants)
	}

	tests := []struct {
		name   string
		user   models.User
		userID string
		code   int
		kind   string
	}{
		{"owner as participant", alice, alice.ID.Hex(), http.StatusConflict, "owner_cannot_be_participant"},
		{"unknown user", alice, primitive.NewObjectID().Hex(), http.StatusNotFound, "unknown_user"},
		{"malformed user id", alice, "xyz", http.StatusBadRequest, "validation"},
		{"participant cannot add", bob, carol.ID.Hex(), http.StatusForbidden, "not_owner"},
		{"outsider cannot add", carol, carol.ID.Hex(), http.StatusForbidden, "not_owner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(tt.user, tt.userID)
			rec.AssertStatus(t, tt.code)
			rec.AssertContains(t, `"kind":"`+tt.kind+`"`)
		})
	}

	got = loadProject(t, ctx, f, p.ID)
	if len(got.Participants) != 1 {
		t.Errorf("rejected adds changed participants: %v", got.Participants)
	}
}

func TestHandleRemoveParticipant(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice")
	bob := f.CreateUser(ctx, "Bob")
	carol := f.CreateUser(ctx, "Carol")
	p := f.CreateProject(ctx, "Alpha", alice.ID, bob.ID, carol.ID)

	del := func(user models.User, userID string) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		req := testutil.WithChiURLParams(testutil.NewAuthenticatedRequest(http.MethodDelete, "/", testutil.AsTestUser(user), nil), map[string]string{
			"id":     p.ID.Hex(),
			"userID": userID,
		})
		h.HandleRemoveParticipant(rec, req)
		return rec
	}

	del(bob, carol.ID.Hex()).AssertStatus(t, http.StatusForbidden)
	del(alice, alice.ID.Hex()).AssertStatus(t, http.StatusConflict)
	del(alice, "nope").AssertStatus(t, http.StatusBadRequest)

	del(alice, bob.ID.Hex()).AssertStatus(t, http.StatusOK)
	del(alice, bob.ID.Hex()).AssertStatus(t, http.StatusOK)

	got := loadProject(t, ctx, f, p.ID)
	if len(got.Participants) != 1 || got.Participants[0] != carol.ID {
		t.Errorf("participants: got %v, want [carol]", got.Participants)
	}
}

func TestHandleAddProgress(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice")
	bob := f.CreateUser(ctx, "Bob")
	carol := f.CreateUser(ctx, "Carol")
	p := f.CreateProject(ctx, "Alpha", alice.ID, bob.ID)

	post := func(user models.User, text string) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		h.HandleAddProgress(rec, idParam(testutil.NewAuthenticatedRequest(http.MethodPost, "/", testutil.AsTestUser(user), map[string]string{"text": text}), p.ID))
		return rec
	}

	post(alice, "kickoff done").AssertStatus(t, http.StatusCreated)
	post(bob, "<b>draft</b> ready").AssertStatus(t, http.StatusCreated)
	post(carol, "sneaky").AssertStatus(t, http.StatusForbidden)
	post(bob, "<p></p>").AssertStatus(t, http.StatusBadRequest)

	got := loadProject(t, ctx, f, p.ID)
	if len(got.Progress) != 2 {
		t.Fatalf("progress: got %d entries, want 2", len(got.Progress))
	}
	if got.Progress[1].AuthorID != bob.ID || got.Progress[1].Text != "draft ready" {
		t.Errorf("second entry: %+v", got.Progress[1])
	}
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice")
	p := f.CreateProject(ctx, "Alpha", alice.ID)
	router := projects.Routes(h, &auth.SessionManager{})

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))
	rec.AssertStatus(t, http.StatusOK)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/"},
		{http.MethodGet, "/" + p.ID.Hex()},
		{http.MethodPatch, "/" + p.ID.Hex() + "/status"},
		{http.MethodDelete, "/" + p.ID.Hex() + "/participants/" + alice.ID.Hex()},
	} {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.NewJSONRequest(tc.method, tc.path, map[string]string{}))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: got %d, want 401", tc.method, tc.path, rec.Code)
		}
	}
}
