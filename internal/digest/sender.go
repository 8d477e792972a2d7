package digest

import "context"

// Sender delivers one text message to one chat
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
