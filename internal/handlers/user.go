package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialfeed/internal/services"
)

type UserHandler struct {
	posts  *services.PostService
	logger *zap.Logger
}

func NewUserHandler(posts *services.PostService, logger *zap.Logger) *UserHandler {
	return &UserHandler{posts: posts, logger: logger}
}

// Profile - the logged-in user's own posts, newest first.
func (h *UserHandler) Profile(c *gin.Context) {
	user := requireUser(c)
	if user == nil {
		return
	}

	posts, err := h.posts.ByUser(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("Couldn't load profile posts", zap.Int("user_id", user.ID), zap.Error(err))
		RenderError(c, http.StatusInternalServerError, "Couldn't load posts")
		return
	}

	likes := 0
	comments := 0
	for _, p := range posts {
		likes += p.LikeCount()
		comments += len(p.Comments)
	}

	Render(c, http.StatusOK, "user/profile.html", gin.H{
		"Posts":            posts,
		"LikesReceived":    likes,
		"CommentsReceived": comments,
	})
}
