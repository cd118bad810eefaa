package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"soul-agent/internal/domain"
	"soul-agent/internal/service"
)

// PeerHandler expone el interlocutor simulado.
type PeerHandler struct {
	logger *zap.Logger
	peer   *service.PeerService
}

func NewPeerHandler(logger *zap.Logger, peer *service.PeerService) *PeerHandler {
	return &PeerHandler{logger: logger, peer: peer}
}

// Reply maneja POST /api/peer/reply.
func (h *PeerHandler) Reply(c *gin.Context) {
	var req domain.PeerReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid peer reply request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	c.JSON(http.StatusOK, h.peer.Reply(c.Request.Context(), req))
}
