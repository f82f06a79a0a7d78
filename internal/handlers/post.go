package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialfeed/internal/services"
)

type PostHandler struct {
	posts  *services.PostService
	logger *zap.Logger
}

func NewPostHandler(posts *services.PostService, logger *zap.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

type contentRequest struct {
	Content string `json:"content"`
}

type reactRequest struct {
	Reaction string `json:"reaction"`
}

// Index renders the feed, newest first.
func (h *PostHandler) Index(c *gin.Context) {
	posts, err := h.posts.Feed(c.Request.Context())
	if err != nil {
		h.logger.Error("Couldn't load feed", zap.Error(err))
		RenderError(c, http.StatusInternalServerError, "Couldn't load posts")
		return
	}
	Render(c, http.StatusOK, "feed/index.html", gin.H{"Posts": posts})
}

func (h *PostHandler) Create(c *gin.Context) {
	user := requireUser(c)
	if user == nil {
		return
	}
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	post, err := h.posts.Create(c.Request.Context(), user, req.Content)
	if err != nil {
		respondError(c, err, "Failed to create post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "post": post})
}

func (h *PostHandler) ToggleLike(c *gin.Context) {
	user := requireUser(c)
	if user == nil {
		return
	}
	liked, count, err := h.posts.ToggleLike(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err, "Failed to toggle like")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "liked": liked, "like_count": count})
}

func (h *PostHandler) React(c *gin.Context) {
	user := requireUser(c)
	if user == nil {
		return
	}
	var req reactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	counts, err := h.posts.React(c.Request.Context(), c.Param("id"), user.ID, req.Reaction)
	if err != nil {
		respondError(c, err, "Failed to add reaction")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reactions": counts})
}

func (h *PostHandler) AddComment(c *gin.Context) {
	user := requireUser(c)
	if user == nil {
		return
	}
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	comment, err := h.posts.AddComment(c.Request.Context(), c.Param("id"), user, req.Content)
	if err != nil {
		respondError(c, err, "Failed to add comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "comment": comment})
}
