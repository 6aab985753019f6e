package bootstrap

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/dalemusser/projecthub/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func testAppConfig() AppConfig {
	return AppConfig{
		MongoURI:           "mongodb://localhost:27017",
		MongoDatabase:      "projecthub_test",
		MongoMaxPoolSize:   10,
		MongoMinPoolSize:   1,
		SessionKey:         "test-session-key-for-testing-only-32chars",
		SessionName:        "test-session",
		SessionMaxAge:      time.Hour,
		TokenKey:           "test-token-key-for-testing-only-32chars!",
		TokenTTL:           time.Hour,
		BcryptCost:         bcrypt.MinCost,
		LoginRatePerMinute: 60,
		LoginBurst:         20,
	}
}

func TestValidateConfig(t *testing.T) {
	dev := &config.CoreConfig{Env: "dev"}
	prod := &config.CoreConfig{Env: "prod"}

	tests := []struct {
		name    string
		core    *config.CoreConfig
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", dev, func(*AppConfig) {}, false},
		{"empty uri", dev, func(c *AppConfig) { c.MongoURI = "" }, true},
		{"no database", dev, func(c *AppConfig) { c.MongoDatabase = "" }, true},
		{"short token key", dev, func(c *AppConfig) { c.TokenKey = "short" }, true},
		{"empty session key", dev, func(c *AppConfig) { c.SessionKey = "" }, true},
		{"short session key allowed in dev", dev, func(c *AppConfig) { c.SessionKey = "short" }, false},
		{"short session key refused in prod", prod, func(c *AppConfig) { c.SessionKey = "short" }, true},
		{"dev secrets refused in prod", prod, func(c *AppConfig) { c.TokenKey = devTokenKey }, true},
		{"zero ttl", dev, func(c *AppConfig) { c.TokenTTL = 0 }, true},
		{"bcrypt cost too low", dev, func(c *AppConfig) { c.BcryptCost = 1 }, true},
		{"zero login burst", dev, func(c *AppConfig) { c.LoginBurst = 0 }, true},
		{"min pool above max", dev, func(c *AppConfig) { c.MongoMinPoolSize = 50 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testAppConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(tt.core, cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStartup_ConfiguresTimeouts(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	cfg := testAppConfig()
	cfg.TimeoutShort = 3 * time.Second
	cfg.TimeoutMedium = 0

	if err := Startup(context.Background(), &config.CoreConfig{}, cfg, DBDeps{}, testLogger()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	if got := timeouts.Short(); got != 3*time.Second {
		t.Errorf("Short: got %v, want 3s", got)
	}
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Errorf("Medium: got %v, want default %v", got, timeouts.DefaultMedium)
	}
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, &config.CoreConfig{}, testAppConfig(), deps, testLogger()); err != nil {
			t.Fatalf("EnsureSchema run %d: %v", i+1, err)
		}
	}
}

// newTestServer builds the full router over a fresh database.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	if err := EnsureSchema(ctx, &config.CoreConfig{}, testAppConfig(), deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, testAppConfig(), deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		srv.Close()
		// deps.MongoClient belongs to SetupTestDB; only stop workers here.
		_ = Shutdown(context.Background(), &config.CoreConfig{}, testAppConfig(), DBDeps{}, testLogger())
	})
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, token, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(b)
}

func extract(t *testing.T, body, key string) string {
	t.Helper()
	marker := `"` + key + `":"`
	i := strings.Index(body, marker)
	if i < 0 {
		t.Fatalf("%q not found in %s", key, body)
	}
	rest := body[i+len(marker):]
	return rest[:strings.Index(rest, `"`)]
}

func TestBuildHandler_EndToEnd(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodGet, "/health", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/health: got %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, srv, http.MethodPost, "/api/auth/register", "", `{"name":"Alice","email":"alice@example.com","password":"secret1"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: got %d: %s", resp.StatusCode, body)
	}
	aliceToken := extract(t, body, "token")

	resp, body = do(t, srv, http.MethodPost, "/api/auth/register", "", `{"name":"Bob","email":"bob@example.com","password":"secret2"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register bob: got %d: %s", resp.StatusCode, body)
	}
	bobToken := extract(t, body, "token")

	resp, body = do(t, srv, http.MethodPost, "/api/auth/login", "", `{"email":"ALICE@example.com","password":"secret1"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: got %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, srv, http.MethodPost, "/api/projects", "", `{"name":"Anonymous"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous create: got %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, srv, http.MethodPost, "/api/projects", aliceToken, `{"name":"Alpha","description":"first"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: got %d: %s", resp.StatusCode, body)
	}
	projectID := extract(t, body, "project_id")

	resp, body = do(t, srv, http.MethodGet, "/api/projects/"+projectID, bobToken, "")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("bob view before join: got %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, srv, http.MethodGet, "/api/users/me", bobToken, "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"is_authenticated":true`) {
		t.Fatalf("me: got %d: %s", resp.StatusCode, body)
	}
	bobID := extract(t, body, "id")

	resp, body = do(t, srv, http.MethodPost, "/api/projects/"+projectID+"/participants", aliceToken, `{"user_id":"`+bobID+`"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add participant: got %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, srv, http.MethodGet, "/api/projects/"+projectID, bobToken, "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"is_participant":true`) {
		t.Fatalf("bob view after join: got %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, srv, http.MethodPost, "/api/projects/"+projectID+"/progress", bobToken, `{"text":"started"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("progress: got %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, srv, http.MethodGet, "/api/projects", "", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"owner_name":"Alice"`) {
		t.Fatalf("anonymous listing: got %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, srv, http.MethodGet, "/api/projects", "not-a-token", "")
	if resp.StatusCode != http.StatusOK || strings.Contains(body, `"has_access":true`) {
		t.Fatalf("bad token must list as anonymous: got %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, srv, http.MethodGet, "/nope", "", "")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body, `"kind":"not_found"`) {
		t.Fatalf("unknown route: got %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, srv, http.MethodGet, "/metrics", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/metrics: got %d", resp.StatusCode)
	}
	for _, want := range []string{
		`projecthub_http_requests_total{code="201",method="POST",route="/api/projects`,
		`projecthub_access_decisions_total{action="view",outcome="access_denied"} 1`,
		`projecthub_access_decisions_total{action="add_participant",outcome="allowed"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("/metrics missing %s", want)
		}
	}

	resp, body = do(t, srv, http.MethodPost, "/api/auth/logout", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: got %d: %s", resp.StatusCode, body)
	}
}
