package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/mscno/collab/server/model"
)

type SubmitPartnershipApplicationInput struct {
	InterestID string
	ProjectID  string // optional project the applicant offers the partnership through
	Message    string
}

// SubmitPartnershipApplication applies against an open PartnershipInterest of an
// active organization.
func (e *Engine) SubmitPartnershipApplication(ctx context.Context, actor model.Actor, in SubmitPartnershipApplicationInput) (model.PartnershipApplication, error) {
	if err := requireActor(actor); err != nil {
		return model.PartnershipApplication{}, err
	}
	var (
		app model.PartnershipApplication
		org model.Organization
	)
	err := e.update(ctx, func(tx Tx) error {
		interest, err := tx.Interest(in.InterestID)
		if err != nil {
			return err
		}
		org, err = tx.Organization(interest.OrganizationID)
		if err != nil {
			return err
		}
		if !interest.Open || org.Status != model.OrganizationActive {
			return fmt.Errorf("interest %s: %w", interest.ID, ErrApplicationsClosed)
		}
		if in.ProjectID != "" {
			p, err := tx.Project(in.ProjectID)
			if err != nil {
				return err
			}
			if p.OrganizerID != actor.UserID {
				return fmt.Errorf("not the organizer of project %s: %w", p.ID, ErrUnauthorized)
			}
		}
		app = model.PartnershipApplication{
			ID:              e.newID(),
			OrganizationID:  org.ID,
			InterestID:      interest.ID,
			UserID:          actor.UserID,
			PartnershipType: interest.PartnershipType,
			ProjectID:       in.ProjectID,
			Message:         in.Message,
			Status:          model.RequestPending,
			CreatedAt:       e.now(),
		}
		return tx.PutPartnershipApplication(app)
	})
	if err != nil {
		return model.PartnershipApplication{}, err
	}
	e.emit(ctx, model.Notification{
		UserID:  org.OwnerID,
		Title:   "New partnership application",
		Message: fmt.Sprintf("A new %s partnership application was submitted to %q.", app.PartnershipType, org.Name),
		Link:    e.organizationLink(org.ID),
	})
	return app, nil
}

// DecidePartnershipApplication approves or rejects a pending partnership
// application. Terminal rows behave as in DecideApplication.
func (e *Engine) DecidePartnershipApplication(ctx context.Context, actor model.Actor, id string, decision model.Decision) (model.PartnershipApplication, error) {
	if err := requireActor(actor); err != nil {
		return model.PartnershipApplication{}, err
	}
	if !decision.Valid() {
		return model.PartnershipApplication{}, fmt.Errorf("decision %q: %w", decision, ErrInvalidTransition)
	}
	var (
		app     model.PartnershipApplication
		org     model.Organization
		changed bool
	)
	err := e.update(ctx, func(tx Tx) error {
		changed = false
		var err error
		app, err = tx.PartnershipApplication(id)
		if err != nil {
			return err
		}
		org, err = tx.Organization(app.OrganizationID)
		if err != nil {
			return err
		}
		if !canManageOrganization(actor, org) {
			return fmt.Errorf("deciding partnership application %s: %w", id, ErrUnauthorized)
		}
		if app.Status.Terminal() {
			return nil
		}
		next := decision.RequestStatus()
		if !model.CanTransitionRequest(app.Status, next) {
			return fmt.Errorf("partnership application %s %s -> %s: %w", id, app.Status, next, ErrInvalidTransition)
		}
		app.Status = next
		app.DecidedBy = actor.UserID
		app.DecidedAt = e.now()
		changed = true
		return tx.PutPartnershipApplication(app)
	})
	if err != nil {
		return model.PartnershipApplication{}, err
	}
	if !changed {
		return app, alreadyDecided(app.ID, app.Status, decision)
	}

	e.logger.InfoContext(ctx, "partnership application decided", "partnership_application_id", app.ID, "organization_id", app.OrganizationID, "status", app.Status, "actor", actor.UserID)
	n := model.Notification{
		UserID:  app.UserID,
		Title:   "Partnership application approved",
		Message: fmt.Sprintf("%q accepted your %s partnership application.", org.Name, app.PartnershipType),
		Link:    e.organizationLink(org.ID),
	}
	if app.Status == model.RequestRejected {
		n.Title = "Partnership application rejected"
		n.Message = fmt.Sprintf("%q did not accept your %s partnership application.", org.Name, app.PartnershipType)
		n.Link = ""
	}
	e.emit(ctx, n)
	return app, nil
}

// ListPartnershipApplications returns an organization's partnership applications
// newest first.
func (e *Engine) ListPartnershipApplications(ctx context.Context, actor model.Actor, orgID string) ([]model.PartnershipApplication, error) {
	var apps []model.PartnershipApplication
	err := e.view(ctx, func(tx Tx) error {
		org, err := tx.Organization(orgID)
		if err != nil {
			return err
		}
		if !canManageOrganization(actor, org) {
			return ErrUnauthorized
		}
		apps, err = tx.PartnershipApplicationsByOrganization(orgID)
		return err
	})
	if err != nil {
		return nil, err
	}
	newestFirst(apps, func(a model.PartnershipApplication) time.Time { return a.CreatedAt }, func(a model.PartnershipApplication) string { return a.ID })
	return apps, nil
}
