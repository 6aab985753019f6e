package testutil

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// FixturePassword is the plaintext password of every user CreateUser makes.
const FixturePassword = "password123"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	return WithChiURLParams(r, map[string]string{key: value})
}

// WithChiURLParams adds several chi URL parameters at once.
func WithChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db   *mongo.Database
	t    *testing.T
	hash string
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) passwordHash() string {
	if f.hash == "" {
		b, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.MinCost)
		if err != nil {
			f.t.Fatalf("failed to hash fixture password: %v", err)
		}
		f.hash = string(b)
	}
	return f.hash
}

// CreateUser inserts a user named name. The email is derived from the name
// and FixturePassword is its password.
func (f *Fixtures) CreateUser(ctx context.Context, name string) models.User {
	f.t.Helper()
	email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "." + primitive.NewObjectID().Hex()[18:] + "@test.com"
	return f.CreateUserWithEmail(ctx, name, email)
}

// CreateUserWithEmail inserts a user with an explicit email.
func (f *Fixtures) CreateUserWithEmail(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Email:        strings.ToLower(email),
		PasswordHash: f.passwordHash(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateProject inserts a project owned by ownerID with the given
// participants. Status defaults to pending.
func (f *Fixtures) CreateProject(ctx context.Context, name string, ownerID primitive.ObjectID, participants ...primitive.ObjectID) models.Project {
	f.t.Helper()

	if participants == nil {
		participants = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	p := models.Project{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Status:       models.DefaultProjectStatus,
		OwnerID:      ownerID,
		Participants: participants,
		Info:         map[string]any{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("projects").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	return p
}
