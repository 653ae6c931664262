package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ratingtales/rating-tales/internal/session"
	"github.com/ratingtales/rating-tales/pkg/logger"
	"go.uber.org/zap"
)

// Context keys set by SessionMiddleware.
const (
	ContextSessionID = "session_id"
	ContextSession   = "session"
	ContextUserID    = "user_id"
)

// LoginPath is where unauthenticated requests get redirected.
const LoginPath = "/login"

// SetSessionCookie writes the session cookie with the security flags the
// auth flows rely on.
func SetSessionCookie(c *gin.Context, sessionID string, maxAge int, isProduction bool) {
	c.SetSameSite(http.SameSiteLaxMode) // CSRF protection
	c.SetCookie(
		session.CookieName,
		sessionID,
		maxAge,
		"/",
		"",           // domain (empty = current domain)
		isProduction, // secure (HTTPS-only in production)
		true,         // httpOnly (JavaScript cannot access)
	)
}

// SessionMiddleware resolves the session cookie into session data, creating
// a fresh anonymous session when the cookie is missing or expired. Every
// request downstream can rely on a live session (the CAPTCHA flow needs one
// before login).
func SessionMiddleware(store *session.Store, ttlSeconds int, isProduction bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(session.CookieName)
		var data *session.Data

		if err == nil {
			data, err = store.Get(sessionID)
			if err != nil && !errors.Is(err, session.ErrSessionNotFound) {
				logger.Log.Error("Failed to load session", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
				c.Abort()
				return
			}
		}

		if data == nil {
			sessionID, err = store.Create()
			if err != nil {
				logger.Log.Error("Failed to create session", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
				c.Abort()
				return
			}
			data = &session.Data{}
			SetSessionCookie(c, sessionID, ttlSeconds, isProduction)
		}

		c.Set(ContextSessionID, sessionID)
		c.Set(ContextSession, data)
		if data.Authenticated() {
			c.Set(ContextUserID, data.UserID)
		}

		c.Next()
	}
}

// RequireAuth is the gate in front of every protected route. When no user
// identity is bound it remembers the requested path as the intended
// destination and signals a redirect to the login entry point.
func RequireAuth(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		data := c.MustGet(ContextSession).(*session.Data)
		if data.Authenticated() {
			c.Next()
			return
		}

		sessionID := c.GetString(ContextSessionID)
		if err := store.SetIntendedURL(sessionID, c.Request.URL.RequestURI()); err != nil {
			logger.Log.Error("Failed to store intended URL", zap.Error(err))
		}

		c.Redirect(http.StatusFound, LoginPath)
		c.Abort()
	}
}
