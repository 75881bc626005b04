package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/mscno/collab/pkg/api"
	"github.com/mscno/collab/server/model"
)

type ApplyCmd struct {
	ProjectID    string `arg:"" help:"Project id"`
	Type         string `arg:"" help:"Partnership type offered" enum:"skilled,financial,material,venue,promotional,volunteer"`
	Organization string `help:"Apply on behalf of an organization you belong to"`
	Message      string `help:"Message to the organizer"`
}

func (c *ApplyCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	app, err := cl.SubmitApplication(ctx, api.SubmitApplicationRequest{
		ProjectID:       c.ProjectID,
		OrganizationID:  c.Organization,
		PartnershipType: model.PartnershipType(c.Type),
		Message:         c.Message,
	})
	if err != nil {
		return fmt.Errorf("failed to apply: %w", err)
	}
	return printApplications(ctx, root, app)
}

type ApplicationsCmd struct {
	List        ApplicationsListCmd        `cmd:"" default:"withargs" help:"List applications to a project"`
	Decide      ApplicationsDecideCmd      `cmd:"" help:"Approve or reject an application"`
	Materialize ApplicationsMaterializeCmd `cmd:"" help:"Create the partnership of an approved application"`
}

type ApplicationsListCmd struct {
	ProjectID string `arg:"" help:"Project id"`
}

func (c *ApplicationsListCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	rows, err := cl.ListProjectApplications(ctx, c.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to list applications: %w", err)
	}
	return printApplications(ctx, root, rows...)
}

type ApplicationsDecideCmd struct {
	ID       string `arg:"" help:"Application id"`
	Decision string `arg:"" help:"approved or rejected" enum:"approved,rejected"`
}

func (c *ApplicationsDecideCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	app, err := cl.DecideApplication(ctx, c.ID, model.Decision(c.Decision))
	if err != nil {
		return fmt.Errorf("failed to decide application: %w", err)
	}
	return printApplications(ctx, root, app)
}

type ApplicationsMaterializeCmd struct {
	ID string `arg:"" help:"Approved application id"`
}

func (c *ApplicationsMaterializeCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	p, err := cl.MaterializeApplication(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to materialize application: %w", err)
	}
	return printPartnership(ctx, root, p)
}

type PartnershipsCmd struct {
	List   PartnershipsListCmd   `cmd:"" default:"withargs" help:"List the partnerships of a user"`
	Create PartnershipsCreateCmd `cmd:"" help:"Record a partnership directly"`
}

type PartnershipsListCmd struct {
	UserID string `arg:"" optional:"" help:"User id; defaults to you, admins only for others"`
}

func (c *PartnershipsListCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	views, err := cl.ListPartnerships(ctx, model.UserID(c.UserID))
	if err != nil {
		return fmt.Errorf("failed to list partnerships: %w", err)
	}
	return root.print(ctx, views, func(w *tabwriter.Writer) {
		if len(views) == 0 {
			fmt.Fprintln(w, "No partnerships found.")
			return
		}
		fmt.Fprintln(w, "PROJECT\tTITLE\tTYPE\tSTATUS\tSOURCE\tSINCE")
		for _, v := range views {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", v.ProjectID, v.ProjectTitle, v.PartnershipType, v.Status, v.Source, formatTime(v.CreatedAt))
		}
	})
}

type PartnershipsCreateCmd struct {
	ProjectID    string `arg:"" help:"Project id"`
	PartnerID    string `arg:"" help:"Partner user id"`
	Type         string `arg:"" help:"Partnership type" enum:"skilled,financial,material,venue,promotional,volunteer"`
	Organization string `help:"Organization the partner represents"`
	Status       string `help:"Initial status" default:"pending" enum:"pending,active"`
}

func (c *PartnershipsCreateCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	p, err := cl.CreatePartnership(ctx, api.CreatePartnershipRequest{
		ProjectID:       c.ProjectID,
		PartnerID:       model.UserID(c.PartnerID),
		OrganizationID:  c.Organization,
		PartnershipType: model.PartnershipType(c.Type),
		Status:          model.PartnershipStatus(c.Status),
	})
	if err != nil {
		return fmt.Errorf("failed to create partnership: %w", err)
	}
	return printPartnership(ctx, root, p)
}

func printApplications(ctx *cliCtx, root *cli, rows ...model.ProjectApplication) error {
	return root.print(ctx, rows, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tPROJECT\tUSER\tTYPE\tSTATUS\tCREATED")
		for _, a := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.ProjectID, a.UserID, a.PartnershipType, a.Status, formatTime(a.CreatedAt))
		}
	})
}

func printPartnership(ctx *cliCtx, root *cli, p model.Partnership) error {
	return root.print(ctx, p, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "ID:\t%s\n", p.ID)
		fmt.Fprintf(w, "Project:\t%s\n", p.ProjectID)
		fmt.Fprintf(w, "Partner:\t%s\n", p.PartnerID)
		fmt.Fprintf(w, "Status:\t%s\n", p.Status)
	})
}
