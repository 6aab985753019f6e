// Package auth resolves the caller of each request to a user id.
//
// Two credentials are accepted: an `Authorization: Bearer <token>` header
// issued by TokenIssuer, or the browser session cookie written at login.
// A request carrying a bearer header is judged on that header alone. Anything
// that does not resolve (missing, malformed, expired, unknown user) leaves
// the request anonymous; it is never an error.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/projecthub/internal/app/system/ident"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const userIDKey = "user_id"

// SessionUser is the resolved caller injected into r.Context().
type SessionUser struct {
	ID    primitive.ObjectID
	Name  string
	Email string
}

// UserFetcher loads current user data for an id; nil means no such user.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID primitive.ObjectID) *SessionUser
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u as if LoadSessionUser had resolved it.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// SessionManager owns the cookie store and the credential resolution
// middleware.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	tokens  *TokenIssuer
	fetcher UserFetcher
	log     *zap.Logger
}

// NewSessionManager builds the cookie store. In production (secure=true),
// cookies are Secure + SameSite=None; in local dev over plain http they are
// SameSite=Lax so the browser keeps them.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "projecthub-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.String("name", name))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetTokenIssuer enables bearer-token resolution.
func (sm *SessionManager) SetTokenIssuer(ti *TokenIssuer) { sm.tokens = ti }

// SetUserFetcher makes LoadSessionUser refresh user data on every request.
// Without a fetcher only the id is known.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// Tokens returns the configured issuer (may be nil).
func (sm *SessionManager) Tokens() *TokenIssuer { return sm.tokens }

// LoadSessionUser injects the resolved user into the request context.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := sm.resolve(r); ok {
			if u := sm.lookup(r.Context(), id); u != nil {
				r = withUser(r, u)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (sm *SessionManager) resolve(r *http.Request) (primitive.ObjectID, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, tok, found := strings.Cut(h, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || sm.tokens == nil {
			return ident.Anonymous, false
		}
		return sm.tokens.Resolve(strings.TrimSpace(tok))
	}

	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		return ident.Anonymous, false
	}
	raw, _ := sess.Values[userIDKey].(string)
	if raw == "" {
		return ident.Anonymous, false
	}
	id, err := ident.Parse(raw)
	if err != nil {
		sm.log.Warn("session carries malformed user id", zap.Error(err))
		return ident.Anonymous, false
	}
	return id, true
}

func (sm *SessionManager) lookup(ctx context.Context, id primitive.ObjectID) *SessionUser {
	if sm.fetcher == nil {
		return &SessionUser{ID: id}
	}
	return sm.fetcher.FetchUser(ctx, id)
}

// Login records userID in the session cookie.
func (sm *SessionManager) Login(w http.ResponseWriter, r *http.Request, userID primitive.ObjectID) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[userIDKey] = userID.Hex()
	return sess.Save(r, w)
}

// Logout expires the session cookie.
func (sm *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// RequireSignedIn rejects anonymous callers with a JSON 401.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("WWW-Authenticate", `Bearer realm="projecthub"`)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "authentication required",
			"kind":  "unauthenticated",
		})
	})
}
