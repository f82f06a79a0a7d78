package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"socialfeed/internal/services"
)

type NewsHandler struct {
	news *services.NewsService
}

func NewNewsHandler(news *services.NewsService) *NewsHandler {
	return &NewsHandler{news: news}
}

// Page renders headlines for ?category=, defaulting to general.
func (h *NewsHandler) Page(c *gin.Context) {
	category := services.NormalizeCategory(c.DefaultQuery("category", "general"))
	page := h.news.ByCategory(c.Request.Context(), category)
	Render(c, http.StatusOK, "news/index.html", gin.H{
		"News":       page,
		"Category":   category,
		"Categories": services.NewsCategories,
	})
}

// API serves the same page as JSON. Upstream failures still answer 200
// with an error field.
func (h *NewsHandler) API(c *gin.Context) {
	c.JSON(http.StatusOK, h.news.ByCategory(c.Request.Context(), c.Param("category")))
}
