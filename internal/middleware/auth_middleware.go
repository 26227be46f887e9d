package middleware

import (
	"net/http"

	"github.com/tulendi/cafe-directory/internal/repository"
	"github.com/tulendi/cafe-directory/internal/session"
	"github.com/tulendi/cafe-directory/internal/utils"
	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "session"

// Session resolves the caller's identity from the session cookie.
// The chain is cookie -> signed token -> session store -> user row.
// Any break in the chain leaves the request anonymous; this middleware
// never aborts, so public routes serve logged-out visitors as-is.
func Session(store *session.Store, userRepo *repository.UserRepository, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(SessionCookieName)
		if err != nil {
			c.Next()
			return
		}

		sessionID, err := utils.ParseSessionToken(cookie, secret)
		if err != nil {
			c.Next()
			return
		}

		userID, err := store.Resolve(c.Request.Context(), sessionID)
		if err != nil {
			c.Next()
			return
		}

		// Re-read the user each request so a role promotion or an
		// admin-initiated deletion takes effect immediately.
		user, err := userRepo.GetUserByID(userID)
		if err != nil || user == nil {
			c.Next()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("username", user.Username)
		c.Set("user_role", string(user.Role))
		c.Set("session_id", sessionID)

		c.Next()
	}
}

// RequireAdmin gates admin-only routes. Anonymous callers and
// non-admin users get a notice and the wrapped handler never runs.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{
				"message": "Only admins allowed.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
