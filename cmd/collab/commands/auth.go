package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mscno/collab/pkg/oskeyring"
	"github.com/mscno/collab/pkg/session"
)

type LoginCmd struct {
	Token string `arg:"" optional:"" help:"Session token issued by collab-server; read from stdin when omitted"`
}

// Run saves the token. The signature is checked by the server, the CLI only reads the
// expiry so stale sessions can be reported locally.
func (c *LoginCmd) Run(ctx *cliCtx) error {
	token := strings.TrimSpace(c.Token)
	if token == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read token from stdin: %w", err)
		}
		token = strings.TrimSpace(line)
	}
	claims, err := parseUnverified(token)
	if err != nil {
		return err
	}
	var expires int64
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Unix()
		if time.Now().Unix() > expires {
			return oskeyring.ErrSessionExpired
		}
	}
	if err := oskeyring.SaveSession(ctx.OSKeyring, token, expires); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Logged in as %s", claims.UserID)
	if claims.Admin {
		fmt.Fprint(ctx.Out, " (admin)")
	}
	fmt.Fprintln(ctx.Out)
	return nil
}

func parseUnverified(token string) (*session.Claims, error) {
	claims := &session.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("not a session token: %w", err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("session token has no user id")
	}
	return claims, nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cliCtx) error {
	if err := oskeyring.ClearSession(ctx.OSKeyring); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, "Logged out")
	return nil
}
