package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/calummcrae/showspin/internal/database"
	"github.com/calummcrae/showspin/internal/models"
	"github.com/calummcrae/showspin/internal/services"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserContextKey is the key for storing user in context
	UserContextKey ContextKey = "user"
	// UserIDContextKey is the key for storing user ID in context
	UserIDContextKey ContextKey = "userID"
)

// AuthMiddleware handles authentication for protected routes
type AuthMiddleware struct {
	sessionStore *database.SessionStore
	userService  *services.UserService
	cookieName   string
	isProduction bool
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(sessionStore *database.SessionStore, userService *services.UserService, cookieName string, isProduction bool) *AuthMiddleware {
	if cookieName == "" {
		cookieName = "session"
	}
	return &AuthMiddleware{
		sessionStore: sessionStore,
		userService:  userService,
		cookieName:   cookieName,
		isProduction: isProduction,
	}
}

// resolve loads the user for the request's session cookie, if any.
func (m *AuthMiddleware) resolve(r *http.Request) (*models.User, bool) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, false
	}

	userID, err := m.sessionStore.Get(r.Context(), cookie.Value)
	if err != nil {
		return nil, false
	}

	user, err := m.userService.Get(r.Context(), userID)
	if err != nil {
		return nil, false
	}

	return user, true
}

// RequireAuth rejects unauthenticated requests with a JSON 401
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := m.resolve(r)
		if !ok {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		ctx = context.WithValue(ctx, UserIDContextKey, user.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches the user to the context when a valid session
// exists but never rejects the request
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := m.resolve(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		ctx = context.WithValue(ctx, UserIDContextKey, user.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext retrieves the user from request context
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok
}

// GetUserIDFromContext retrieves the user ID from request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	return userID, ok
}

// SetSessionCookie sets a session cookie
func (m *AuthMiddleware) SetSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60, // 7 days
		HttpOnly: true,
		Secure:   m.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie clears the session cookie
func (m *AuthMiddleware) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// CookieName returns the configured session cookie name
func (m *AuthMiddleware) CookieName() string {
	return m.cookieName
}
