package testutl

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/mscno/collab/server"
	"github.com/mscno/collab/server/engine"
	"github.com/mscno/collab/server/middleware"
	"github.com/mscno/collab/server/notify"
	"github.com/mscno/collab/server/stores"
)

// TestServer is a collab server backed by an in-memory store with an inbox notifier.
type TestServer struct {
	*httptest.Server
	Engine *engine.Engine
	Store  *stores.MemoryStore
}

// StartServer runs the full middleware chain and every route on an httptest server
// that is closed when the test ends.
func StartServer(t testing.TB) *TestServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := stores.NewMemoryStore()
	e := engine.New(store, notify.NewInbox(store), logger, engine.WithLinkBase("https://collab.test/"))

	cs := server.NewConnectServer(logger)
	cs.Use(
		middleware.WithRecovery(logger),
		middleware.WithSessionAuth(middleware.DefaultSessionValidator, logger),
	)
	server.NewServer(e, logger).Register(cs)

	ts := httptest.NewServer(cs)
	t.Cleanup(ts.Close)
	return &TestServer{Server: ts, Engine: e, Store: store}
}
