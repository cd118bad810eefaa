package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"soul-agent/internal/domain"
	"soul-agent/internal/service"
)

// SuggestHandler expone el pipeline de respuestas sugeridas.
type SuggestHandler struct {
	logger  *zap.Logger
	suggest *service.SuggestService
}

func NewSuggestHandler(logger *zap.Logger, suggest *service.SuggestService) *SuggestHandler {
	return &SuggestHandler{logger: logger, suggest: suggest}
}

// Suggest maneja POST /api/suggest.
func (h *SuggestHandler) Suggest(c *gin.Context) {
	var req domain.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid suggest request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	resp := h.suggest.Suggest(c.Request.Context(), req)
	c.JSON(http.StatusOK, resp)
}
