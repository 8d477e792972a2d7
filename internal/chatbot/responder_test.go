package chatbot

import (
	"context"
	"errors"
	"testing"

	"chorebot-api/internal/mocks"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestCallbackResponder(t *testing.T) {
	ctx := context.Background()
	kb := NewKeyboardBuilder(2)

	t.Run("inline keyboard edits the message", func(t *testing.T) {
		provider := mocks.NewMockTelegramProvider(gomock.NewController(t))
		markup := kb.ManagementKeyboard()
		provider.EXPECT().EditMessage(ctx, int64(1), 20, "text", &markup).Return(nil)

		assert.NoError(t, NewCallbackResponder(provider, 1, 20).Respond(ctx, "text", markup))
	})

	t.Run("no markup clears the keyboard", func(t *testing.T) {
		provider := mocks.NewMockTelegramProvider(gomock.NewController(t))
		provider.EXPECT().EditMessage(ctx, int64(1), 20, "text", (*tgbotapi.InlineKeyboardMarkup)(nil)).Return(nil)

		assert.NoError(t, NewCallbackResponder(provider, 1, 20).Respond(ctx, "text", nil))
	})

	t.Run("reply keyboard is sent as a new message", func(t *testing.T) {
		provider := mocks.NewMockTelegramProvider(gomock.NewController(t))
		markup := kb.MainKeyboard()
		provider.EXPECT().SendMessage(ctx, int64(1), mainMenuText, markup).Return(nil)

		assert.NoError(t, NewCallbackResponder(provider, 1, 20).Respond(ctx, mainMenuText, markup))
	})

	t.Run("unchanged message is not an error", func(t *testing.T) {
		provider := mocks.NewMockTelegramProvider(gomock.NewController(t))
		provider.EXPECT().EditMessage(ctx, int64(1), 20, "text", gomock.Any()).
			Return(TelegramAPIError{Operation: "edit_message", StatusCode: 400, Description: "Bad Request: message is not modified"})

		assert.NoError(t, NewCallbackResponder(provider, 1, 20).Respond(ctx, "text", nil))
	})

	t.Run("other edit failures are returned", func(t *testing.T) {
		provider := mocks.NewMockTelegramProvider(gomock.NewController(t))
		editErr := errors.New("network down")
		provider.EXPECT().EditMessage(ctx, int64(1), 20, "text", gomock.Any()).Return(editErr)

		assert.ErrorIs(t, NewCallbackResponder(provider, 1, 20).Respond(ctx, "text", nil), editErr)
	})
}

func TestMessageResponder(t *testing.T) {
	ctx := context.Background()
	provider := mocks.NewMockTelegramProvider(gomock.NewController(t))
	provider.EXPECT().SendMessage(ctx, int64(5), "hello", nil).Return(nil)

	assert.NoError(t, NewMessageResponder(provider, 5).Respond(ctx, "hello", nil))
}

func TestWrapTelegramError(t *testing.T) {
	err := WrapTelegramError(&tgbotapi.Error{
		Code:               429,
		Message:            "Too Many Requests: retry after 5",
		ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 5},
	}, "send_message")

	var apiErr TelegramAPIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 429, apiErr.StatusCode)
	assert.Equal(t, 5, apiErr.RetryAfter)
	assert.True(t, IsTemporaryError(err))

	assert.NoError(t, WrapTelegramError(nil, "send_message"))
	assert.False(t, IsTemporaryError(WrapTelegramError(&tgbotapi.Error{Code: 403, Message: "Forbidden"}, "send_message")))
}
