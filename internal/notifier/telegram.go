package notifier

import (
	"context"

	"github.com/pfrederiksen/changelog-relay/internal/changelog"
	"github.com/pfrederiksen/changelog-relay/internal/telegram"
)

// updateSender is the part of telegram.Client the notifier needs
type updateSender interface {
	SendUpdate(ctx context.Context, u *changelog.Update) error
}

// TelegramNotifier posts updates to a Telegram chat
type TelegramNotifier struct {
	client updateSender
}

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(botToken, chatID string) (*TelegramNotifier, error) {
	client, err := telegram.NewClient(botToken, chatID)
	if err != nil {
		return nil, err
	}

	return &TelegramNotifier{client: client}, nil
}

// Notify sends the update as an HTML message. API failures stay reachable
// through errors.As as *telegram.APIError.
func (n *TelegramNotifier) Notify(ctx context.Context, u *changelog.Update) error {
	if err := n.client.SendUpdate(ctx, u); err != nil {
		return &PostError{Destination: "telegram", Date: u.Date, Err: err}
	}
	return nil
}
