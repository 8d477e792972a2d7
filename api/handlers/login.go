package handlers

import (
	"net/http"

	"chorebot-api/internal/common"
	"chorebot-api/internal/user"
	"chorebot-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// LoginHandler lets a client discover its chat id by first name. Only chats
// on the allow-list are returned; anything else looks like a miss.
type LoginHandler struct {
	users     user.Repository
	isAllowed func(chatID int64) bool
	logger    *logger.Logger
}

func NewLoginHandler(users user.Repository, isAllowed func(chatID int64) bool, logger *logger.Logger) *LoginHandler {
	return &LoginHandler{
		users:     users,
		isAllowed: isAllowed,
		logger:    logger,
	}
}

type loginRequest struct {
	Name string `json:"name"`
}

func (h *LoginHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	u, err := h.users.FindByFirstName(c.Request.Context(), req.Name)
	if err == nil && !h.isAllowed(u.ChatID) {
		err = common.NotFoundError{Resource: "User", ID: req.Name}
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chat_id": u.ChatID,
		"name":    u.DisplayName(),
	})
}
