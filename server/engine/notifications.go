package engine

import (
	"context"
	"time"

	"github.com/mscno/collab/server/model"
)

// ListNotifications returns the actor's inbox newest first.
func (e *Engine) ListNotifications(ctx context.Context, actor model.Actor, unreadOnly bool) ([]model.Notification, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var out []model.Notification
	err := e.view(ctx, func(tx Tx) error {
		all, err := tx.NotificationsByUser(actor.UserID)
		if err != nil {
			return err
		}
		for _, n := range all {
			if unreadOnly && n.Read {
				continue
			}
			out = append(out, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	newestFirst(out, func(n model.Notification) time.Time { return n.CreatedAt }, func(n model.Notification) string { return n.ID })
	return out, nil
}

// MarkNotificationsRead flags the given notifications of the actor as read, or all
// of them when ids is empty. Ids belonging to other users are ignored. It returns
// the number of notifications changed.
func (e *Engine) MarkNotificationsRead(ctx context.Context, actor model.Actor, ids ...string) (int, error) {
	if err := requireActor(actor); err != nil {
		return 0, err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var n int
	err := e.update(ctx, func(tx Tx) error {
		n = 0
		all, err := tx.NotificationsByUser(actor.UserID)
		if err != nil {
			return err
		}
		for _, note := range all {
			if note.Read || (len(want) > 0 && !want[note.ID]) {
				continue
			}
			note.Read = true
			if err := tx.PutNotification(note); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}
