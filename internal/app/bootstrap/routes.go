// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"sync"
	"time"

	errorsfeature "github.com/dalemusser/projecthub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/projecthub/internal/app/features/health"
	loginfeature "github.com/dalemusser/projecthub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/projecthub/internal/app/features/logout"
	projectsfeature "github.com/dalemusser/projecthub/internal/app/features/projects"
	userinfofeature "github.com/dalemusser/projecthub/internal/app/features/userinfo"
	userstore "github.com/dalemusser/projecthub/internal/app/store/users"
	"github.com/dalemusser/projecthub/internal/app/system/auth"
	"github.com/dalemusser/projecthub/internal/app/system/metrics"
	"github.com/dalemusser/projecthub/internal/app/system/ratelimit"
	"github.com/dalemusser/projecthub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// ProjectHub builds the session manager with bearer-token support, a
// private Prometheus registry, the login limiter, and mounts the JSON API:
// /api/auth, /api/users/me and /api/projects, plus /health and /metrics.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	tokens, err := auth.NewTokenIssuer(appCfg.TokenKey, appCfg.TokenTTL)
	if err != nil {
		logger.Error("token issuer init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.SetTokenIssuer(tokens)

	// LoadSessionUser re-reads the user on each request so a deleted account
	// stops resolving immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	limiter := ratelimit.NewLoginLimiter(appCfg.LoginRatePerMinute, appCfg.LoginBurst)
	startBackground(workers.NewLimitSweep(limiter, logger, 5*time.Minute))

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if appCfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)

	// Global auth middleware: loads SessionUser into context if a bearer
	// token or session cookie resolves.
	r.Use(sessionMgr.LoadSessionUser)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorsfeature.WriteJSON(w, http.StatusNotFound, errorsfeature.Body{Error: "not found", Kind: "not_found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errorsfeature.WriteJSON(w, http.StatusMethodNotAllowed, errorsfeature.Body{Error: "method not allowed", Kind: "method_not_allowed"})
	})

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", m.Handler())

	// Authentication
	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/api/auth/logout", logoutfeature.Routes(logoutHandler))

	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, auth.NewPasswords(appCfg.BcryptCost), limiter, errLog, logger)
	r.Mount("/api/auth", loginfeature.Routes(loginHandler))

	// Identity
	userinfoHandler := userinfofeature.NewHandler(deps.MongoDatabase, logger)
	userinfofeature.MountRoutes(r, userinfoHandler)

	// Projects
	projectsHandler := projectsfeature.NewHandler(deps.MongoDatabase, errLog, m, logger)
	r.Mount("/api/projects", projectsfeature.Routes(projectsHandler, sessionMgr))

	return r, nil
}

// background holds workers started by BuildHandler and stopped by Shutdown.
var background struct {
	mu      sync.Mutex
	workers []*workers.LimitSweep
}

func startBackground(w *workers.LimitSweep) {
	background.mu.Lock()
	defer background.mu.Unlock()
	w.Start()
	background.workers = append(background.workers, w)
}

func stopBackground() {
	background.mu.Lock()
	ws := background.workers
	background.workers = nil
	background.mu.Unlock()
	for _, w := range ws {
		w.Stop()
	}
}
