package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/fkhayef/studyhub/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey ContextKey = "user_id"

	// SessionName is the cookie carrying the signed-in user
	SessionName = "studyhub-session"

	sessionUserID = "user_id"
)

// SessionAuth keeps the signed-in user id in a signed cookie session.
type SessionAuth struct {
	store  sessions.Store
	logger *zap.Logger
}

// NewSessionAuth creates a cookie-backed session authenticator. In production
// (secure=true) cookies are Secure with SameSite=None; locally over plain http
// use secure=false so browsers accept them.
func NewSessionAuth(sessionKey []byte, secure bool, logger *zap.Logger) *SessionAuth {
	store := sessions.NewCookieStore(sessionKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}
	return &SessionAuth{store: store, logger: logger}
}

// LoadUser injects the signed-in user id into the request context when the
// session cookie carries one.
func (a *SessionAuth) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := a.store.Get(r, SessionName)
		if err != nil {
			a.logger.Debug("ignoring unreadable session cookie", zap.Error(err))
		}
		if id, ok := sess.Values[sessionUserID].(string); ok && id != "" {
			r = r.WithContext(WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// SignIn stores userID in the session cookie.
func (a *SessionAuth) SignIn(w http.ResponseWriter, r *http.Request, userID string) error {
	sess, _ := a.store.Get(r, SessionName)
	sess.Values[sessionUserID] = userID
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (a *SessionAuth) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := a.store.Get(r, SessionName)
	delete(sess.Values, sessionUserID)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// RequireUser rejects requests without an authenticated user.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserID(r.Context()); !ok {
			response.Unauthorized(w, "Sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TestUserMiddleware allows setting the user ID via X-Test-User-ID header (DEV ONLY)
// This makes it easy to act as different users without a browser session
func TestUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Test-User-ID"); id != "" {
			r = r.WithContext(WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// WithUserID returns a copy of ctx carrying the authenticated user ID
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID extracts the user ID from the request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}
