package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialfeed/internal/store"
)

type HealthHandler struct {
	store  *store.Store
	logger *zap.Logger
}

func NewHealthHandler(st *store.Store, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{store: st, logger: logger}
}

// Check reports whether every collection can be read and decoded.
func (h *HealthHandler) Check(c *gin.Context) {
	counts, err := h.store.Check(c.Request.Context())
	if err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"users":  counts[store.KindUsers],
		"posts":  counts[store.KindPosts],
	})
}
