package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"soul-agent/internal/domain"
	"soul-agent/internal/service"
)

type ScenarioHandler struct {
	logger   *zap.Logger
	scenario *service.ScenarioService
}

func NewScenarioHandler(logger *zap.Logger, scenario *service.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{logger: logger, scenario: scenario}
}

// Analyze maneja POST /api/scenario/analyze.
func (h *ScenarioHandler) Analyze(c *gin.Context) {
	var in domain.ScenarioInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid scenario request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	c.JSON(http.StatusOK, h.scenario.Analyze(c.Request.Context(), in))
}
