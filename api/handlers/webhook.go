package handlers

import (
	"io"
	"net/http"

	"chorebot-api/api/middleware"
	"chorebot-api/internal/chatbot"
	"chorebot-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// WebhookHandler handles Telegram webhook requests
type WebhookHandler struct {
	chatbotService chatbot.ChatbotService
	logger         *logger.Logger
}

// NewWebhookHandler creates a new WebhookHandler instance
func NewWebhookHandler(chatbotService chatbot.ChatbotService, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		chatbotService: chatbotService,
		logger:         logger,
	}
}

// HandleTelegramWebhook always answers 200 so Telegram does not redeliver
// updates that failed on our side.
func (h *WebhookHandler) HandleTelegramWebhook(c *gin.Context) {
	log := middleware.LoggerFrom(c, h.logger)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Errorw("Failed to read webhook body", "error", err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if len(body) == 0 {
		log.Warnw("Received empty webhook body")
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if err := h.chatbotService.HandleWebhook(c.Request.Context(), body); err != nil {
		log.Errorw("Failed to process webhook",
			"error", err,
			"body_size", len(body))
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	log.Debugw("Webhook processed", "body_size", len(body))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
