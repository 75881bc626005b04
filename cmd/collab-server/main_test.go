package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/mscno/collab/server/notify"
	"github.com/mscno/collab/server/stores"
	"github.com/mscno/collab/testutl"
	natsserver "github.com/nats-io/nats-server/v2/server"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "warn")
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestServeCmd_OpenStore(t *testing.T) {
	logger := slog.Default()

	cmd := &ServeCmd{Store: "memory"}
	s, closeFn, err := cmd.openStore(context.Background(), logger)
	assert.NoError(t, err)
	closeFn()
	_, ok := s.(*stores.MemoryStore)
	assert.True(t, ok)

	cmd = &ServeCmd{Store: "bolt", BoltPath: filepath.Join(t.TempDir(), "collab.db")}
	s, closeFn, err = cmd.openStore(context.Background(), logger)
	assert.NoError(t, err)
	_, ok = s.(*stores.BoltStore)
	assert.True(t, ok)
	closeFn()

	cmd = &ServeCmd{Store: "datastore"}
	_, _, err = cmd.openStore(context.Background(), logger)
	assert.Error(t, err)
}

func TestServeCmd_NotifierWithoutNATS(t *testing.T) {
	cmd := &ServeCmd{}
	n, closeFn, err := cmd.notifier(stores.NewMemoryStore(), slog.Default())
	assert.NoError(t, err)
	defer closeFn()
	_, ok := n.(*notify.Inbox)
	assert.True(t, ok)
}

func TestServeCmd_NotifierWithNATS(t *testing.T) {
	ns, err := natsserver.NewServer(&natsserver.Options{Host: "127.0.0.1", Port: -1, NoLog: true, NoSigs: true})
	assert.NoError(t, err)
	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		t.Fatal("NATS server not ready for connections")
	}
	t.Cleanup(ns.Shutdown)

	cmd := &ServeCmd{NatsURL: ns.ClientURL(), SubjectPrefix: "test.notes"}
	n, closeFn, err := cmd.notifier(stores.NewMemoryStore(), slog.Default())
	assert.NoError(t, err)
	defer closeFn()
	multi, ok := n.(notify.Multi)
	assert.True(t, ok)
	assert.Equal(t, 2, len(multi))
}

func TestServeCmd_RunsUntilCanceled(t *testing.T) {
	port := testutl.GetPort(t)
	cmd := &ServeCmd{
		SessionFlags: SessionFlags{SessionSecret: testutl.SessionSecret, SessionDuration: time.Hour},
		Addr:         fmt.Sprintf("127.0.0.1:%d", port),
		Store:        "memory",
		RateLimit:    time.Millisecond,
		RateBurst:    100,
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- cmd.Run(&cliCtx{Context: ctx, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	}()
	testutl.WaitHealthy(t, port)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
}
