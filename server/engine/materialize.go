package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/mscno/collab/server/model"
)

// materialize turns an approved application into the one Partnership row for its
// (project, partner) pair. An existing row is moved to active; otherwise a new active
// row is inserted. It must run inside the transaction that approved app.
func (e *Engine) materialize(tx Tx, app model.ProjectApplication) (model.Partnership, error) {
	now := e.now()
	p, err := tx.PartnershipByPair(app.ProjectID, app.UserID)
	switch {
	case err == nil:
		if p.Status == model.PartnershipActive {
			return p, nil
		}
		p.Status = model.PartnershipActive
		p.UpdatedAt = now
	case errors.Is(err, ErrNotFound):
		p = model.Partnership{
			ID:              e.newID(),
			ProjectID:       app.ProjectID,
			PartnerID:       app.UserID,
			OrganizationID:  app.OrganizationID,
			PartnershipType: app.PartnershipType,
			Status:          model.PartnershipActive,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
	default:
		return model.Partnership{}, err
	}
	if err := tx.PutPartnership(p); err != nil {
		return model.Partnership{}, err
	}
	return p, nil
}

// MaterializeApplication re-runs materialization for an already approved
// application. It is safe to call any number of times.
func (e *Engine) MaterializeApplication(ctx context.Context, actor model.Actor, applicationID string) (model.Partnership, error) {
	if err := requireActor(actor); err != nil {
		return model.Partnership{}, err
	}
	var p model.Partnership
	err := e.update(ctx, func(tx Tx) error {
		app, err := tx.ProjectApplication(applicationID)
		if err != nil {
			return err
		}
		project, err := tx.Project(app.ProjectID)
		if err != nil {
			return err
		}
		if !canManageProject(actor, project) {
			return ErrUnauthorized
		}
		if app.Status != model.RequestApproved {
			return fmt.Errorf("application %s is %s: %w", app.ID, app.Status, ErrInvalidTransition)
		}
		p, err = e.materialize(tx, app)
		return err
	})
	if err != nil {
		return model.Partnership{}, err
	}
	return p, nil
}

type CreatePartnershipInput struct {
	ProjectID       string
	PartnerID       model.UserID
	OrganizationID  string
	PartnershipType model.PartnershipType
	Status          model.PartnershipStatus // defaults to pending
}

// CreatePartnership writes a Partnership directly, without an application. If the
// pair already has a row, that row is returned unchanged.
func (e *Engine) CreatePartnership(ctx context.Context, actor model.Actor, in CreatePartnershipInput) (model.Partnership, error) {
	if err := requireActor(actor); err != nil {
		return model.Partnership{}, err
	}
	if in.PartnerID == "" {
		return model.Partnership{}, invalidInput("partner is required")
	}
	if !in.PartnershipType.Valid() {
		return model.Partnership{}, invalidInput("unknown partnership type %q", in.PartnershipType)
	}
	if in.Status == "" {
		in.Status = model.PartnershipPending
	}
	if in.Status != model.PartnershipPending && in.Status != model.PartnershipActive {
		return model.Partnership{}, invalidInput("partnership cannot be created as %q", in.Status)
	}

	var (
		p       model.Partnership
		project model.Project
		created bool
	)
	err := e.update(ctx, func(tx Tx) error {
		created = false
		var err error
		project, err = tx.Project(in.ProjectID)
		if err != nil {
			return err
		}
		if !canManageProject(actor, project) {
			return ErrUnauthorized
		}
		p, err = tx.PartnershipByPair(in.ProjectID, in.PartnerID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		now := e.now()
		p = model.Partnership{
			ID:              e.newID(),
			ProjectID:       in.ProjectID,
			PartnerID:       in.PartnerID,
			OrganizationID:  in.OrganizationID,
			PartnershipType: in.PartnershipType,
			Status:          in.Status,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		created = true
		return tx.PutPartnership(p)
	})
	if err != nil {
		return model.Partnership{}, err
	}
	if created {
		e.emit(ctx, model.Notification{
			UserID:  p.PartnerID,
			Title:   "New partnership",
			Message: fmt.Sprintf("You were added as a %s partner on %q.", p.PartnershipType, project.Title),
			Link:    e.projectLink(project.ID),
		})
	}
	return p, nil
}
