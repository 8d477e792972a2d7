package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"chorebot-api/pkg/logger"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

type recordingChatbot struct {
	bodies [][]byte
	err    error
}

func (r *recordingChatbot) HandleWebhook(_ context.Context, data []byte) error {
	r.bodies = append(r.bodies, data)
	return r.err
}

func (r *recordingChatbot) HandleUpdate(context.Context, tgbotapi.Update) error { return nil }

func (r *recordingChatbot) SendMessage(context.Context, int64, string) error { return nil }

func (r *recordingChatbot) Start(context.Context) error { return nil }

func (r *recordingChatbot) Stop() {}

func TestWebhookHandler(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		err       error
		delivered int
	}{
		{name: "update forwarded", body: `{"update_id": 1}`, delivered: 1},
		{name: "processing failure still acknowledged", body: `{"update_id": 2}`, err: errors.New("boom"), delivered: 1},
		{name: "empty body skipped", body: "", delivered: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot := &recordingChatbot{err: tt.err}
			router := gin.New()
			router.POST("/telegram/webhook", NewWebhookHandler(bot, logger.New()).HandleTelegramWebhook)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"ok": true}`, w.Body.String())
			assert.Len(t, bot.bodies, tt.delivered)
			if tt.delivered > 0 {
				assert.Equal(t, tt.body, string(bot.bodies[0]))
			}
		})
	}
}
