package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"socialfeed/internal/models"
)

const (
	CheckUserKey  = "user"
	SessionUserID = "user_id"
)

// UserLoader resolves the session's user id.
type UserLoader interface {
	UserByID(ctx context.Context, id int) (*models.User, error)
}

// AuthRequired rejects anonymous requests: pages redirect to /login, the
// JSON API answers 401.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}

		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		session := sessions.Default(c)
		session.AddFlash("Please log in to access this page.", "info")
		_ = session.Save()
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// LoadUser retrieves the user from the session and sets it on the context.
// A session pointing at a user that no longer exists is cleared.
func LoadUser(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(SessionUserID).(int)
		if ok {
			user, err := users.UserByID(c.Request.Context(), userID)
			switch {
			case err == nil:
				c.Set(CheckUserKey, user)
			case models.IsNotFound(err):
				session.Delete(SessionUserID)
				_ = session.Save()
			default:
				_ = c.Error(err)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the user set by LoadUser.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(CheckUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
