// Package engine implements the partnership and approval lifecycle: who may move an
// application, join request, project or organization between states, what gets
// materialized on approval, and how a user's effective partner list is assembled.
package engine

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mscno/collab/server/model"
)

// Notifier delivers a user-directed notification. The engine treats it as
// fire-and-forget: failures are logged, never returned to the caller.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

type Engine struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger
	linkBase string
	now      func() time.Time
	newID    func() string
}

type Option func(*Engine)

// WithLinkBase prefixes every notification deep link, e.g. "https://collab.example".
func WithLinkBase(base string) Option {
	return func(e *Engine) {
		e.linkBase = strings.TrimSuffix(base, "/")
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

func New(store Store, notifier Notifier, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) update(ctx context.Context, fn func(tx Tx) error) error {
	return classify(e.store.Update(ctx, fn))
}

func (e *Engine) view(ctx context.Context, fn func(tx Tx) error) error {
	return classify(e.store.View(ctx, fn))
}

// emit sends n after the state change it reports has committed.
func (e *Engine) emit(ctx context.Context, n model.Notification) {
	if e.notifier == nil {
		return
	}
	if n.ID == "" {
		n.ID = e.newID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = e.now()
	}
	if err := e.notifier.Notify(ctx, n); err != nil {
		e.logger.WarnContext(ctx, "notification failed", "user_id", n.UserID, "title", n.Title, "error", err)
	}
}

func (e *Engine) projectLink(id string) string {
	return e.linkBase + "/projects/" + id
}

func (e *Engine) organizationLink(id string) string {
	return e.linkBase + "/organizations/" + id
}

func requireActor(actor model.Actor) error {
	if actor.UserID == "" {
		return ErrUnauthorized
	}
	return nil
}

// canManageProject is true for the project organizer and admins.
func canManageProject(actor model.Actor, p model.Project) bool {
	return actor.Admin || (actor.UserID != "" && actor.UserID == p.OrganizerID)
}

// canManageOrganization is true for the organization owner and admins.
func canManageOrganization(actor model.Actor, o model.Organization) bool {
	return actor.Admin || (actor.UserID != "" && actor.UserID == o.OwnerID)
}

// newestFirst orders rows by creation time, newest first, breaking ties by id so
// results are deterministic.
func newestFirst[T any](rows []T, createdAt func(T) time.Time, id func(T) string) {
	sort.SliceStable(rows, func(i, j int) bool {
		ci, cj := createdAt(rows[i]), createdAt(rows[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(rows[i]) > id(rows[j])
	})
}
