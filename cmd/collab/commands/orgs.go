package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/mscno/collab/pkg/api"
	"github.com/mscno/collab/server/model"
)

type OrgsCmd struct {
	Create       OrgsCreateCmd       `cmd:"" help:"Create an organization"`
	Decide       OrgsDecideCmd       `cmd:"" help:"Approve or reject a pending organization (admin)"`
	Join         OrgsJoinCmd         `cmd:"" help:"Ask to join an organization"`
	JoinRequests OrgsJoinRequestsCmd `cmd:"" help:"List join requests of an organization you own"`
	DecideJoin   OrgsDecideJoinCmd   `cmd:"" help:"Approve or reject a join request"`
	Interests    OrgsInterestsCmd    `cmd:"" help:"Partnership interests of an organization"`
}

type OrgsCreateCmd struct {
	Name        string `arg:"" help:"Organization name"`
	Description string `help:"Organization description"`
}

func (c *OrgsCreateCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	org, err := cl.CreateOrganization(ctx, c.Name, c.Description)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return printOrganization(ctx, root, org)
}

type OrgsDecideCmd struct {
	ID       string `arg:"" help:"Organization id"`
	Decision string `arg:"" help:"approved or rejected" enum:"approved,rejected"`
}

func (c *OrgsDecideCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	org, err := cl.DecideOrganizationApproval(ctx, c.ID, model.Decision(c.Decision))
	if err != nil {
		return fmt.Errorf("failed to decide organization: %w", err)
	}
	return printOrganization(ctx, root, org)
}

type OrgsJoinCmd struct {
	ID      string `arg:"" help:"Organization id"`
	Message string `help:"Message to the owner"`
}

func (c *OrgsJoinCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	jr, err := cl.SubmitJoinRequest(ctx, c.ID, c.Message)
	if err != nil {
		return fmt.Errorf("failed to request to join: %w", err)
	}
	return printJoinRequests(ctx, root, jr)
}

type OrgsJoinRequestsCmd struct {
	ID string `arg:"" help:"Organization id"`
}

func (c *OrgsJoinRequestsCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	rows, err := cl.ListJoinRequests(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to list join requests: %w", err)
	}
	return printJoinRequests(ctx, root, rows...)
}

type OrgsDecideJoinCmd struct {
	ID       string `arg:"" help:"Join request id"`
	Decision string `arg:"" help:"approved or rejected" enum:"approved,rejected"`
}

func (c *OrgsDecideJoinCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	jr, err := cl.DecideJoinRequest(ctx, c.ID, model.Decision(c.Decision))
	if err != nil {
		return fmt.Errorf("failed to decide join request: %w", err)
	}
	return printJoinRequests(ctx, root, jr)
}

type OrgsInterestsCmd struct {
	List         OrgsInterestsListCmd         `cmd:"" default:"withargs" help:"List partnership interests"`
	Add          OrgsInterestsAddCmd          `cmd:"" help:"Publish a partnership interest"`
	Apply        OrgsInterestsApplyCmd        `cmd:"" help:"Apply to a partnership interest"`
	Applications OrgsInterestsApplicationsCmd `cmd:"" help:"List applications to your organization's interests"`
	Decide       OrgsInterestsDecideCmd       `cmd:"" help:"Approve or reject a partnership application"`
}

type OrgsInterestsListCmd struct {
	ID string `arg:"" help:"Organization id"`
}

func (c *OrgsInterestsListCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	rows, err := cl.ListPartnershipInterests(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to list interests: %w", err)
	}
	return root.print(ctx, rows, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tTYPE\tOPEN\tDESCRIPTION")
		for _, i := range rows {
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", i.ID, i.PartnershipType, i.Open, i.Description)
		}
	})
}

type OrgsInterestsAddCmd struct {
	ID          string `arg:"" help:"Organization id"`
	Type        string `arg:"" help:"Partnership type" enum:"skilled,financial,material,venue,promotional,volunteer"`
	Description string `help:"What the organization is looking for"`
}

func (c *OrgsInterestsAddCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	interest, err := cl.CreatePartnershipInterest(ctx, api.CreatePartnershipInterestRequest{
		OrganizationID:  c.ID,
		PartnershipType: model.PartnershipType(c.Type),
		Description:     c.Description,
	})
	if err != nil {
		return fmt.Errorf("failed to create interest: %w", err)
	}
	return root.print(ctx, interest, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "ID:\t%s\nType:\t%s\n", interest.ID, interest.PartnershipType)
	})
}

type OrgsInterestsApplyCmd struct {
	InterestID string `arg:"" help:"Partnership interest id"`
	Project    string `help:"Project of yours the application is for"`
	Message    string `help:"Message to the organization"`
}

func (c *OrgsInterestsApplyCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	app, err := cl.SubmitPartnershipApplication(ctx, api.SubmitPartnershipApplicationRequest{
		InterestID: c.InterestID,
		ProjectID:  c.Project,
		Message:    c.Message,
	})
	if err != nil {
		return fmt.Errorf("failed to apply: %w", err)
	}
	return printPartnershipApplications(ctx, root, app)
}

type OrgsInterestsApplicationsCmd struct {
	ID string `arg:"" help:"Organization id"`
}

func (c *OrgsInterestsApplicationsCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	rows, err := cl.ListPartnershipApplications(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to list applications: %w", err)
	}
	return printPartnershipApplications(ctx, root, rows...)
}

type OrgsInterestsDecideCmd struct {
	ID       string `arg:"" help:"Partnership application id"`
	Decision string `arg:"" help:"approved or rejected" enum:"approved,rejected"`
}

func (c *OrgsInterestsDecideCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	app, err := cl.DecidePartnershipApplication(ctx, c.ID, model.Decision(c.Decision))
	if err != nil {
		return fmt.Errorf("failed to decide application: %w", err)
	}
	return printPartnershipApplications(ctx, root, app)
}

func printOrganization(ctx *cliCtx, root *cli, org model.Organization) error {
	return root.print(ctx, org, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "ID:\t%s\n", org.ID)
		fmt.Fprintf(w, "Name:\t%s\n", org.Name)
		fmt.Fprintf(w, "Status:\t%s\n", org.Status)
	})
}

func printJoinRequests(ctx *cliCtx, root *cli, rows ...model.OrganizationJoinRequest) error {
	return root.print(ctx, rows, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tUSER\tSTATUS\tCREATED")
		for _, jr := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", jr.ID, jr.UserID, jr.Status, formatTime(jr.CreatedAt))
		}
	})
}

func printPartnershipApplications(ctx *cliCtx, root *cli, rows ...model.PartnershipApplication) error {
	return root.print(ctx, rows, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tUSER\tTYPE\tSTATUS\tCREATED")
		for _, a := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.UserID, a.PartnershipType, a.Status, formatTime(a.CreatedAt))
		}
	})
}
