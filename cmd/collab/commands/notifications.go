package commands

import (
	"fmt"
	"text/tabwriter"
)

type NotificationsCmd struct {
	List NotificationsListCmd `cmd:"" default:"withargs" help:"List notifications"`
	Read NotificationsReadCmd `cmd:"" help:"Mark notifications as read"`
}

type NotificationsListCmd struct {
	Unread bool `help:"Only unread notifications"`
}

func (c *NotificationsListCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	notes, err := cl.ListNotifications(ctx, c.Unread)
	if err != nil {
		return fmt.Errorf("failed to list notifications: %w", err)
	}
	return root.print(ctx, notes, func(w *tabwriter.Writer) {
		if len(notes) == 0 {
			fmt.Fprintln(w, "No notifications.")
			return
		}
		for _, n := range notes {
			marker := "*"
			if n.Read {
				marker = " "
			}
			fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\n", marker, n.ID, formatTime(n.CreatedAt), n.Title, n.Link)
		}
	})
}

type NotificationsReadCmd struct {
	IDs []string `arg:"" optional:"" help:"Notification ids; all when omitted"`
}

func (c *NotificationsReadCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	n, err := cl.MarkNotificationsRead(ctx, c.IDs...)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	fmt.Fprintf(ctx.Out, "Marked %d notification(s) read\n", n)
	return nil
}
