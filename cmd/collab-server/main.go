// Command collab-server runs the collab partnership and approval service.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/mscno/collab/pkg/session"
	"github.com/mscno/collab/server"
	"github.com/mscno/collab/server/engine"
	"github.com/mscno/collab/server/middleware"
	"github.com/mscno/collab/server/notify"
	"github.com/mscno/collab/server/seed"
	"github.com/mscno/collab/server/stores"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

type cliCtx struct {
	context.Context
	Logger *slog.Logger
}

type cli struct {
	LogFormat string           `help:"Log format (text|json)" default:"text" enum:"text,json" env:"COLLAB_LOG_FORMAT"`
	LogLevel  string           `help:"Log level (debug|info|warn|error)" default:"info" enum:"debug,info,warn,error" env:"COLLAB_LOG_LEVEL"`
	Version   kong.VersionFlag `help:"Show version"`

	Serve ServeCmd `cmd:"" default:"withargs" help:"Run the collab server"`
	Token TokenCmd `cmd:"" help:"Mint a session token for a user"`
}

type SessionFlags struct {
	SessionSecret   string        `help:"Secret used to sign session tokens" required:"" env:"COLLAB_SESSION_SECRET"`
	SessionDuration time.Duration `help:"Lifetime of issued session tokens" default:"24h" env:"COLLAB_SESSION_DURATION"`
}

type ServeCmd struct {
	SessionFlags `embed:""`

	Addr     string   `help:"Listen address" default:":8080" env:"COLLAB_ADDR"`
	Store    string   `help:"Store backend (memory|bolt|datastore)" default:"memory" enum:"memory,bolt,datastore" env:"COLLAB_STORE"`
	LinkBase string   `help:"Base URL used for links in notifications" default:"" env:"COLLAB_LINK_BASE"`
	Seed     string   `help:"YAML file with settings to apply at startup" env:"COLLAB_SEED_FILE"`
	Origins  []string `help:"Allowed CORS origins" env:"COLLAB_CORS_ORIGINS"`

	BoltPath string `help:"bbolt database file" default:"collab.db" env:"COLLAB_BOLT_PATH"`

	DatastoreProject     string `help:"Google Cloud project for Datastore" env:"COLLAB_DATASTORE_PROJECT"`
	DatastoreDatabase    string `help:"Datastore database id" default:"" env:"COLLAB_DATASTORE_DATABASE"`
	DatastoreEndpoint    string `help:"Datastore endpoint override (emulator)" env:"COLLAB_DATASTORE_ENDPOINT"`
	DatastoreCredentials string `help:"Service account credentials file" env:"GOOGLE_APPLICATION_CREDENTIALS"`

	NatsURL       string `help:"NATS server URL; notifications are also published there when set" env:"COLLAB_NATS_URL"`
	SubjectPrefix string `help:"NATS subject prefix for notifications" default:"collab.notifications" env:"COLLAB_NATS_SUBJECT_PREFIX"`

	RateLimit time.Duration `help:"Minimum interval between requests per caller" default:"200ms" env:"COLLAB_RATE_LIMIT"`
	RateBurst int           `help:"Request burst per caller" default:"20" env:"COLLAB_RATE_BURST"`
}

type TokenCmd struct {
	SessionFlags `embed:""`

	UserID string `arg:"" help:"User id the token is issued to"`
	Admin  bool   `help:"Issue an admin token"`
}

func main() {
	// Missing .env is fine.
	_ = godotenv.Load()

	var cli cli
	ctx := kong.Parse(&cli,
		kong.UsageOnError(),
		kong.Name("collab-server"),
		kong.Description("collab-server runs the partnership and approval lifecycle service"),
		kong.Vars{"version": Version},
	)

	logger := newLogger(os.Stderr, cli.LogFormat, cli.LogLevel)
	slog.SetDefault(logger)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := ctx.Run(&cliCtx{Context: runCtx, Logger: logger})
	ctx.FatalIfErrorf(err)
}

func (c *TokenCmd) Run(ctx *cliCtx) error {
	if err := session.Configure(c.SessionSecret, c.SessionDuration); err != nil {
		return err
	}
	token, expires, err := session.GenerateToken(c.UserID, c.Admin)
	if err != nil {
		return err
	}
	fmt.Println(token)
	ctx.Logger.Info("issued session token", "user_id", c.UserID, "admin", c.Admin, "expires_at", time.Unix(expires, 0).UTC())
	return nil
}

func (c *ServeCmd) Run(ctx *cliCtx) error {
	logger := ctx.Logger
	if err := session.Configure(c.SessionSecret, c.SessionDuration); err != nil {
		return err
	}

	store, closeStore, err := c.openStore(ctx, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	notifier, closeNotifier, err := c.notifier(store, logger)
	if err != nil {
		return err
	}
	defer closeNotifier()

	e := engine.New(store, notifier, logger, engine.WithLinkBase(c.LinkBase))

	if c.Seed != "" {
		f, err := seed.Load(c.Seed)
		if err != nil {
			return err
		}
		if err := seed.Apply(ctx, e, f, logger); err != nil {
			return err
		}
	}

	limiter := middleware.NewRateLimiter(logger, middleware.ActorOrIPKeyFunc, rate.Every(c.RateLimit), c.RateBurst,
		middleware.WithSkipper(func(r *http.Request) bool { return r.URL.Path == "/healthz" }))
	defer limiter.Stop()

	cs := server.NewConnectServer(logger)
	cs.Use(
		middleware.WithRecovery(logger),
		middleware.WithLogger(logger),
		middleware.WithCORS(logger, c.Origins...),
		middleware.WithSessionAuth(middleware.DefaultSessionValidator, logger),
		limiter.Limit,
	)
	server.NewServer(e, logger).Register(cs)

	errCh := make(chan error, 1)
	go func() {
		errCh <- cs.ListenAndServe(c.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return cs.Shutdown(shutdownCtx)
}

func (c *ServeCmd) openStore(ctx context.Context, logger *slog.Logger) (engine.Store, func(), error) {
	switch c.Store {
	case "bolt":
		s, err := stores.OpenBoltStore(c.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using bbolt store", "path", c.BoltPath)
		return s, closer(logger, "bolt store", s.Close), nil
	case "datastore":
		if c.DatastoreProject == "" {
			return nil, nil, errors.New("--datastore-project is required for the datastore store")
		}
		var opts []option.ClientOption
		if c.DatastoreEndpoint != "" {
			opts = append(opts, option.WithEndpoint(c.DatastoreEndpoint), option.WithoutAuthentication())
		} else if c.DatastoreCredentials != "" {
			opts = append(opts, option.WithCredentialsFile(c.DatastoreCredentials))
		}
		client, err := datastore.NewClientWithDatabase(ctx, c.DatastoreProject, c.DatastoreDatabase, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create datastore client: %w", err)
		}
		s := stores.NewDatastoreStore(logger, client)
		logger.Info("using datastore store", "project", c.DatastoreProject, "database", c.DatastoreDatabase)
		return s, closer(logger, "datastore store", s.Close), nil
	default:
		logger.Warn("using in-memory store, data is lost on restart")
		return stores.NewMemoryStore(), func() {}, nil
	}
}

// notifier always writes to the stored inbox and also publishes to NATS when
// configured.
func (c *ServeCmd) notifier(store engine.Store, logger *slog.Logger) (engine.Notifier, func(), error) {
	inbox := notify.NewInbox(store)
	if c.NatsURL == "" {
		return inbox, func() {}, nil
	}
	nc, err := notify.ConnectNATS(c.NatsURL, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("publishing notifications to NATS", "url", c.NatsURL, "prefix", c.SubjectPrefix)
	return notify.Multi{inbox, notify.NewNATS(nc, c.SubjectPrefix)}, func() {
		if err := nc.Drain(); err != nil {
			logger.Warn("failed to drain NATS connection", "error", err)
		}
	}, nil
}

func closer(logger *slog.Logger, name string, fn func() error) func() {
	return func() {
		if err := fn(); err != nil {
			logger.Error("failed to close "+name, "error", err)
		}
	}
}

func newLogger(w io.Writer, format, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
