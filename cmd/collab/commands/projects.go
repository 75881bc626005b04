package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/mscno/collab/pkg/api"
	"github.com/mscno/collab/server/model"
)

type ProjectsCmd struct {
	Create       ProjectsCreateCmd       `cmd:"" help:"Create a project"`
	Publish      ProjectsPublishCmd      `cmd:"" help:"Submit a draft project for publishing"`
	Decide       ProjectsDecideCmd       `cmd:"" help:"Approve or reject a project waiting for publish (admin)"`
	Start        ProjectsStartCmd        `cmd:"" help:"Mark a published project as in progress"`
	Complete     ProjectsCompleteCmd     `cmd:"" help:"Mark a project as completed"`
	Applications ProjectsApplicationsCmd `cmd:"" help:"Open or close a project for applications"`
}

type ProjectsCreateCmd struct {
	Title        string   `arg:"" help:"Project title"`
	Description  string   `help:"Project description"`
	Organization string   `help:"Organization the project belongs to"`
	Types        []string `help:"Partnership types sought" enum:"skilled,financial,material,venue,promotional,volunteer"`
	Open         bool     `help:"Accept applications"`
	Publish      bool     `help:"Publish right away when projects are auto-approved"`
}

func (c *ProjectsCreateCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	types := make([]model.PartnershipType, 0, len(c.Types))
	for _, t := range c.Types {
		types = append(types, model.PartnershipType(t))
	}
	p, err := cl.CreateProject(ctx, api.CreateProjectRequest{
		OrganizationID:         c.Organization,
		Title:                  c.Title,
		Description:            c.Description,
		PartnershipTypesSought: types,
		ApplicationsEnabled:    c.Open,
		Publish:                c.Publish,
	})
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return printProject(ctx, root, p)
}

type ProjectsPublishCmd struct {
	ID string `arg:"" help:"Project id"`
}

func (c *ProjectsPublishCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	p, err := cl.SubmitProjectForPublish(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to publish project: %w", err)
	}
	return printProject(ctx, root, p)
}

type ProjectsDecideCmd struct {
	ID       string `arg:"" help:"Project id"`
	Decision string `arg:"" help:"approved or rejected" enum:"approved,rejected"`
}

func (c *ProjectsDecideCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	p, err := cl.DecideProjectPublish(ctx, c.ID, model.Decision(c.Decision))
	if err != nil {
		return fmt.Errorf("failed to decide project: %w", err)
	}
	return printProject(ctx, root, p)
}

type ProjectsStartCmd struct {
	ID string `arg:"" help:"Project id"`
}

func (c *ProjectsStartCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	p, err := cl.StartProject(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to start project: %w", err)
	}
	return printProject(ctx, root, p)
}

type ProjectsCompleteCmd struct {
	ID string `arg:"" help:"Project id"`
}

func (c *ProjectsCompleteCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	p, err := cl.CompleteProject(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to complete project: %w", err)
	}
	return printProject(ctx, root, p)
}

type ProjectsApplicationsCmd struct {
	ID    string `arg:"" help:"Project id"`
	State string `arg:"" help:"open or closed" enum:"open,closed"`
}

func (c *ProjectsApplicationsCmd) Run(ctx *cliCtx, root *cli) error {
	cl, err := root.connect(ctx)
	if err != nil {
		return err
	}
	p, err := cl.SetApplicationsEnabled(ctx, c.ID, c.State == "open")
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return printProject(ctx, root, p)
}

func printProject(ctx *cliCtx, root *cli, p model.Project) error {
	return root.print(ctx, p, func(w *tabwriter.Writer) {
		types := make([]string, 0, len(p.PartnershipTypesSought))
		for _, t := range p.PartnershipTypesSought {
			types = append(types, string(t))
		}
		fmt.Fprintf(w, "ID:\t%s\n", p.ID)
		fmt.Fprintf(w, "Title:\t%s\n", p.Title)
		fmt.Fprintf(w, "Status:\t%s\n", p.Status)
		fmt.Fprintf(w, "Applications:\t%t\n", p.ApplicationsEnabled)
		if len(types) > 0 {
			fmt.Fprintf(w, "Seeking:\t%s\n", strings.Join(types, ", "))
		}
		if !p.CompletedAt.IsZero() {
			fmt.Fprintf(w, "Completed:\t%s\n", formatTime(p.CompletedAt))
		}
	})
}
