package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"soul-agent/internal/domain"
	"soul-agent/internal/service"
)

// PersonaHandler agrupa el cuestionario MBTI, la inferencia desde chat y la persona activa.
type PersonaHandler struct {
	logger   *zap.Logger
	persona  *service.PersonaService
	personas *service.PersonaStore
}

func NewPersonaHandler(logger *zap.Logger, persona *service.PersonaService, personas *service.PersonaStore) *PersonaHandler {
	return &PersonaHandler{
		logger:   logger,
		persona:  persona,
		personas: personas,
	}
}

// Questions maneja GET /api/mbti/questions?mode=quick|deep.
func (h *PersonaHandler) Questions(c *gin.Context) {
	mode := c.DefaultQuery("mode", domain.MBTIModeQuick)
	if mode != domain.MBTIModeQuick && mode != domain.MBTIModeDeep {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mode"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": mode, "questions": h.persona.Questions(mode)})
}

// SubmitMBTI maneja POST /api/mbti/submit.
func (h *PersonaHandler) SubmitMBTI(c *gin.Context) {
	var req domain.MBTISubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid mbti submit request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	c.JSON(http.StatusOK, h.persona.SubmitMBTI(req))
}

// InferMBTI maneja POST /api/mbti/infer-from-chat.
func (h *PersonaHandler) InferMBTI(c *gin.Context) {
	var req domain.MBTIInferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid mbti infer request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	resp, err := h.persona.InferMBTI(c.Request.Context(), req.Conversation)
	if err != nil {
		if errors.Is(err, service.ErrLLMUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "llm unavailable"})
			return
		}
		h.logger.Error("infer mbti failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not infer mbti"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPersona maneja GET /api/persona.
func (h *PersonaHandler) GetPersona(c *gin.Context) {
	c.JSON(http.StatusOK, h.personas.Get())
}

// ApplyPersona maneja POST /api/persona/apply.
func (h *PersonaHandler) ApplyPersona(c *gin.Context) {
	var req domain.PersonaState
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid persona apply request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	state := h.personas.Apply(req.MBTI, req.Functions, req.Enabled)
	h.logger.Info("persona applied", zap.Bool("enabled", state.Enabled))
	c.JSON(http.StatusOK, state)
}
