package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"chorebot-api/api/middleware"
	"chorebot-api/internal/events"
	"chorebot-api/internal/shopping"
	"chorebot-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ShoppingHandler serves /shopping
type ShoppingHandler struct {
	shopping shopping.Service
	logger   *logger.Logger
}

func NewShoppingHandler(svc shopping.Service, logger *logger.Logger) *ShoppingHandler {
	return &ShoppingHandler{
		shopping: svc,
		logger:   logger,
	}
}

type createItemRequest struct {
	ItemText string `json:"item_text"`
	Category string `json:"category"`
}

// List accepts show_checked (default true) and category (default all)
func (h *ShoppingHandler) List(c *gin.Context) {
	filter := shopping.Filter{
		ShowChecked: true,
		Category:    strings.TrimSpace(c.DefaultQuery("category", shopping.CategoryAll)),
	}
	if raw := c.Query("show_checked"); raw != "" {
		showChecked, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "show_checked must be a boolean")
			return
		}
		filter.ShowChecked = showChecked
	}

	items, err := h.shopping.ListItems(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if items == nil {
		items = []shopping.Item{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *ShoppingHandler) Create(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	item, err := h.shopping.AddItem(c.Request.Context(), req.ItemText, req.Category, events.SourceAPI)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	middleware.LoggerFrom(c, h.logger).Infow("Shopping item added", "item_id", item.ID, "category", item.Category)
	c.JSON(http.StatusCreated, item)
}

func (h *ShoppingHandler) Toggle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	item, err := h.shopping.ToggleItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ShoppingHandler) ClearChecked(c *gin.Context) {
	deleted, err := h.shopping.ClearChecked(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *ShoppingHandler) ClearAll(c *gin.Context) {
	deleted, err := h.shopping.ClearAll(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *ShoppingHandler) Stats(c *gin.Context) {
	counts, err := h.shopping.Counts(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}
