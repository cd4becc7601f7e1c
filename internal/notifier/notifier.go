package notifier

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/changelog-relay/internal/changelog"
)

// Notifier defines the interface for posting update notifications
type Notifier interface {
	// Notify posts a single update. A nil error means it was delivered.
	Notify(ctx context.Context, u *changelog.Update) error
}

// PostError is returned when a destination rejects or fails to receive an update
type PostError struct {
	Destination string
	Date        string
	Err         error
}

func (e *PostError) Error() string {
	return fmt.Sprintf("posting update %q to %s: %v", e.Date, e.Destination, e.Err)
}

func (e *PostError) Unwrap() error {
	return e.Err
}
