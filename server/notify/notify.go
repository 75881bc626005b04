// Package notify delivers engine notifications: to the recipient's stored inbox, to
// NATS subscribers, or to several sinks at once.
package notify

import (
	"context"
	"errors"

	"github.com/mscno/collab/server/engine"
	"github.com/mscno/collab/server/model"
)

// Inbox stores notifications so recipients can list and mark them read.
type Inbox struct {
	store engine.Store
}

func NewInbox(store engine.Store) *Inbox {
	return &Inbox{store: store}
}

func (i *Inbox) Notify(ctx context.Context, n model.Notification) error {
	return i.store.Update(ctx, func(tx engine.Tx) error {
		return tx.PutNotification(n)
	})
}

// Multi delivers to every notifier, even if an earlier one failed.
type Multi []engine.Notifier

func (m Multi) Notify(ctx context.Context, n model.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ engine.Notifier = (*Inbox)(nil)
	_ engine.Notifier = Multi(nil)
)
