package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	json "github.com/dustin/gojson"
	"github.com/joho/godotenv"
	"github.com/mscno/collab/pkg/client"
	"github.com/mscno/collab/pkg/oskeyring"
)

type cliCtx struct {
	context.Context
	Logger    *slog.Logger
	OSKeyring oskeyring.Service
	Out       io.Writer
}

type cli struct {
	Debug     bool             `help:"Enable debug logging"`
	ServerURL string           `help:"collab server URL" default:"http://localhost:8080" env:"COLLAB_SERVER_URL"`
	Token     string           `help:"Session token; defaults to the one saved by login" env:"COLLAB_TOKEN"`
	JSON      bool             `help:"Print results as JSON" name:"json"`
	Version   kong.VersionFlag `help:"Show version"`

	Login         LoginCmd         `cmd:"" help:"Save a session token in the OS keyring"`
	Logout        LogoutCmd        `cmd:"" help:"Remove the saved session token"`
	Projects      ProjectsCmd      `cmd:"" help:"Create and manage projects"`
	Orgs          OrgsCmd          `cmd:"" help:"Create and manage organizations"`
	Apply         ApplyCmd         `cmd:"" help:"Apply to partner on a project"`
	Applications  ApplicationsCmd  `cmd:"" help:"Review project applications"`
	Partnerships  PartnershipsCmd  `cmd:"" help:"List and record partnerships"`
	Admin         AdminCmd         `cmd:"" help:"Moderation queue and system settings"`
	Notifications NotificationsCmd `cmd:"" help:"Read your notifications"`
}

func Execute(version string) {
	_ = godotenv.Load()

	var cli cli
	ctx := kong.Parse(&cli,
		kong.UsageOnError(),
		kong.Name("collab"),
		kong.Description("collab is a client for the partnership marketplace"),
		kong.Vars{"version": version},
	)

	level := slog.LevelWarn
	if cli.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	err := ctx.Run(&cliCtx{
		Context:   context.Background(),
		Logger:    logger,
		OSKeyring: oskeyring.NewDefaultService(),
		Out:       os.Stdout,
	}, &cli)
	ctx.FatalIfErrorf(err)
}

// connect builds a client for the server, using the token flag or the saved session.
func (c *cli) connect(ctx *cliCtx) (client.Client, error) {
	token := c.Token
	if token == "" {
		var err error
		token, err = oskeyring.LoadSession(ctx.OSKeyring, time.Now())
		switch {
		case errors.Is(err, oskeyring.ErrNotFound):
			return nil, fmt.Errorf("no session found, login first with 'collab login'")
		case errors.Is(err, oskeyring.ErrSessionExpired):
			return nil, fmt.Errorf("session has expired, login again with 'collab login'")
		case err != nil:
			return nil, err
		}
		ctx.Logger.Debug("using session token from OS keyring")
	}
	ctx.Logger.Debug("initializing client", "server_url", c.ServerURL)
	return client.NewConnectClient(client.ClientConfig{
		ServerURL: c.ServerURL,
		AuthToken: token,
		Logger:    ctx.Logger,
	}), nil
}

// print writes v as JSON when --json is set and otherwise calls table.
func (c *cli) print(ctx *cliCtx, v any, table func(w *tabwriter.Writer)) error {
	if c.JSON {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(ctx.Out, string(data))
		return err
	}
	w := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	table(w)
	return w.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
