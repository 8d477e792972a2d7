package chatbot

import "context"

// Notifier delivers plain messages through the provider. It backs digest
// delivery and is built before the bot service, which depends on the digests.
type Notifier struct {
	provider TelegramProvider
}

func NewNotifier(provider TelegramProvider) *Notifier {
	return &Notifier{provider: provider}
}

func (n *Notifier) SendMessage(ctx context.Context, chatID int64, text string) error {
	return n.provider.SendMessage(ctx, chatID, text, nil)
}
