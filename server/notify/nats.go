package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	json "github.com/dustin/gojson"
	"github.com/mscno/collab/server/engine"
	"github.com/mscno/collab/server/model"
	"github.com/nats-io/nats.go"
)

const DefaultSubjectPrefix = "collab.notifications"

// NATS publishes each notification as JSON on <prefix>.<user id>. The
// notification id is sent as Nats-Msg-Id so JetStream consumers can drop
// duplicates.
type NATS struct {
	conn   *nats.Conn
	prefix string
}

func NewNATS(conn *nats.Conn, prefix string) *NATS {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATS{conn: conn, prefix: strings.TrimSuffix(prefix, ".")}
}

// ConnectNATS dials url and logs connection state changes.
func ConnectNATS(url string, logger *slog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("collab-server"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Error("nats error", "error", err)
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// Subject is the subject notifications for userID are published on.
func (n *NATS) Subject(userID model.UserID) string {
	return n.prefix + "." + subjectToken(string(userID))
}

func (n *NATS) Notify(ctx context.Context, note model.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(note)
	if err != nil {
		return err
	}
	msg := nats.NewMsg(n.Subject(note.UserID))
	msg.Data = data
	if note.ID != "" {
		msg.Header.Set("Nats-Msg-Id", note.ID)
	}
	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}

// subjectToken replaces characters that have a meaning in NATS subjects.
func subjectToken(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, s)
}

var _ engine.Notifier = (*NATS)(nil)
