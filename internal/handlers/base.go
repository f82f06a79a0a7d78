package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"socialfeed/internal/middleware"
	"socialfeed/internal/models"
)

// Flash categories, used as the Bootstrap alert class in templates.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

var flashCategories = []string{FlashSuccess, FlashError, FlashInfo}

type Flash struct {
	Category string
	Message  string
}

// Render helper to inject common variables like the current user and
// pending flash messages.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	// Always present so templates can test it; nil when anonymous.
	user, _ := middleware.CurrentUser(c)
	obj["CurrentUser"] = user
	obj["Flashes"] = popFlashes(c)
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// RenderError renders the error page.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

// TooManyRequests answers a throttled request with the error page.
func TooManyRequests(c *gin.Context) {
	RenderError(c, http.StatusTooManyRequests, "Too many attempts. Please wait a minute and try again.")
}

func addFlash(c *gin.Context, category, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, category)
	_ = session.Save()
}

func popFlashes(c *gin.Context) []Flash {
	session := sessions.Default(c)
	var flashes []Flash
	for _, category := range flashCategories {
		for _, f := range session.Flashes(category) {
			if msg, ok := f.(string); ok {
				flashes = append(flashes, Flash{Category: category, Message: msg})
			}
		}
	}
	if len(flashes) > 0 {
		_ = session.Save()
	}
	return flashes
}

// statusFor maps an error to the HTTP status its AppError code implies.
// Anything else, storage failures included, is a 500.
func statusFor(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeNotFound:
		return http.StatusNotFound
	case models.CodeValidation:
		return http.StatusBadRequest
	case models.CodeConflict:
		return http.StatusConflict
	case models.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the caller-facing message for err, or fallback for
// errors that must not leak details.
func messageFor(err error, fallback string) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code != models.CodeInternal {
		return appErr.Message
	}
	return fallback
}

// respondError writes {"error": ...} with the mapped status. Server-side
// failures are attached to the context so the request logger records them.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": messageFor(err, fallback)})
}

// requireUser returns the logged-in user; AuthRequired guarantees one on
// the routes that call it.
func requireUser(c *gin.Context) *models.User {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return nil
	}
	return user
}
