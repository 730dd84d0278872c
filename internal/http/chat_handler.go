package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clinic-relay/internal/domain"
	"clinic-relay/internal/service"
)

// ChatHandler mantiene dependencias para los endpoints del chat en vivo.
type ChatHandler struct {
	logger *zap.Logger
	relay  *service.RelayService
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(logger *zap.Logger, relay *service.RelayService) *ChatHandler {
	return &ChatHandler{
		logger: logger,
		relay:  relay,
	}
}

// RelayMessage maneja POST /chat: el punto de entrada del relay.
func (h *ChatHandler) RelayMessage(c *gin.Context) {
	var req struct {
		SessionID  string `json:"sessionId"`
		Message    string `json:"message"`
		SenderType string `json:"senderType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid relay request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.relay.Relay(c.Request.Context(), service.RelayInput{
		SessionID:  req.SessionID,
		Message:    req.Message,
		SenderType: req.SenderType,
	})
	if err != nil {
		if errors.Is(err, service.ErrRelayInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("relay failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save message"})
		return
	}

	resp := gin.H{
		"success":   true,
		"forwarded": result.Forwarded,
	}
	if result.Forwarded {
		resp["message"] = "message sent"
	} else {
		resp["message"] = "message saved but webhook delivery failed"
	}
	if result.Reply != nil {
		resp["reply"] = result.Reply
	}

	c.JSON(http.StatusOK, resp)
}

// ListMessages maneja GET /chat/:sessionId/messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	messages, err := h.relay.History(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		h.logger.Error("list messages failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load messages"})
		return
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// ListSessions maneja GET /chat/sessions.
func (h *ChatHandler) ListSessions(c *gin.Context) {
	sessions, err := h.relay.Sessions(c.Request.Context())
	if err != nil {
		h.logger.Error("list sessions failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load sessions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}
