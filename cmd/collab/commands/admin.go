package commands

import (
	"fmt"
	"text/tabwriter"
)

type AdminCmd struct {
	Pending  AdminPendingCmd  `cmd:"" help:"List projects and organizations waiting for approval"`
	Settings AdminSettingsCmd `cmd:"" help:"Show or change system settings"`
}

type AdminPendingCmd struct{}

func (c *AdminPendingCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	pending, err := cl.PendingApprovals(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending approvals: %w", err)
	}
	return root.print(ctx, pending, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "KIND\tID\tNAME\tSINCE")
		for _, p := range pending.Projects {
			fmt.Fprintf(w, "project\t%s\t%s\t%s\n", p.ID, p.Title, formatTime(p.UpdatedAt))
		}
		for _, o := range pending.Organizations {
			fmt.Fprintf(w, "organization\t%s\t%s\t%s\n", o.ID, o.Name, formatTime(o.CreatedAt))
		}
	})
}

// AdminSettingsCmd shows the settings, changing the flags that were given first.
type AdminSettingsCmd struct {
	AutoApproveOrganizations *bool `help:"New organizations become active without review" negatable:""`
	AutoApproveProjects      *bool `help:"Projects created with --publish are published right away" negatable:""`
	RequireProjectApproval   *bool `help:"Publishing a project needs admin approval" negatable:""`
}

func (c *AdminSettingsCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	settings, err := cl.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if c.AutoApproveOrganizations != nil || c.AutoApproveProjects != nil || c.RequireProjectApproval != nil {
		if c.AutoApproveOrganizations != nil {
			settings.AutoApproveOrganizations = *c.AutoApproveOrganizations
		}
		if c.AutoApproveProjects != nil {
			settings.AutoApproveProjects = *c.AutoApproveProjects
		}
		if c.RequireProjectApproval != nil {
			settings.RequireProjectApproval = *c.RequireProjectApproval
		}
		settings, err = cl.UpdateSettings(ctx, settings)
		if err != nil {
			return fmt.Errorf("failed to update settings: %w", err)
		}
	}
	return root.print(ctx, settings, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "auto_approve_organizations:\t%t\n", settings.AutoApproveOrganizations)
		fmt.Fprintf(w, "auto_approve_projects:\t%t\n", settings.AutoApproveProjects)
		fmt.Fprintf(w, "require_project_approval:\t%t\n", settings.RequireProjectApproval)
	})
}
