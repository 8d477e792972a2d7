package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"chorebot-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// HeaderChatID carries the caller's household chat id
const HeaderChatID = "X-Chat-ID"

// ChatAuth resolves X-Chat-ID against the household allow-list. A missing
// header is 401, a malformed one 400 and an unknown chat 403.
func ChatAuth(isAllowed func(chatID int64) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderChatID))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "X-Chat-ID header is required"})
			return
		}

		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "X-Chat-ID must be an integer"})
			return
		}

		if !isAllowed(chatID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "chat is not allowed"})
			return
		}

		c.Set(ContextChatID, chatID)
		if v, ok := c.Get(ContextLogger); ok {
			if l, ok := v.(*logger.Logger); ok {
				c.Set(ContextLogger, l.WithChatID(chatID))
			}
		}
		c.Next()
	}
}

// ChatIDFrom returns the chat id stored by ChatAuth
func ChatIDFrom(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextChatID)
	if !ok {
		return 0, false
	}
	chatID, ok := v.(int64)
	return chatID, ok
}
