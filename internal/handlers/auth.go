package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialfeed/internal/middleware"
	"socialfeed/internal/models"
	"socialfeed/internal/services"
)

type AuthHandler struct {
	auth   *services.AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Username": ""})
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	user, err := h.auth.Authenticate(c.Request.Context(), username, c.PostForm("password"))
	if err != nil {
		h.formError(c, "auth/login.html", err, gin.H{"Username": username})
		return
	}

	h.logIn(c, user)
	addFlash(c, FlashSuccess, fmt.Sprintf("Welcome back, %s!", user.Username))
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", gin.H{"Username": ""})
}

func (h *AuthHandler) Register(c *gin.Context) {
	in := services.RegisterInput{
		Username:        c.PostForm("username"),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirm_password"),
	}
	user, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		h.formError(c, "auth/register.html", err, gin.H{"Username": in.Username})
		return
	}

	h.logIn(c, user)
	addFlash(c, FlashSuccess, fmt.Sprintf("Account created successfully! Welcome, %s!", user.Username))
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(middleware.SessionUserID)
	session.AddFlash("You have been logged out", FlashInfo)
	_ = session.Save()
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) logIn(c *gin.Context, user *models.User) {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserID, user.ID)
	if err := session.Save(); err != nil {
		h.logger.Error("Couldn't save session", zap.Int("user_id", user.ID), zap.Error(err))
	}
}

// formError re-renders a form with the failure flashed.
func (h *AuthHandler) formError(c *gin.Context, view string, err error, obj gin.H) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Auth request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	session := sessions.Default(c)
	session.AddFlash(messageFor(err, "Something went wrong, please try again"), FlashError)
	Render(c, status, view, obj)
}
