package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mscno/collab/server/model"
)

type SubmitApplicationInput struct {
	ProjectID       string
	OrganizationID  string // optional "applying as" organization
	PartnershipType model.PartnershipType
	Message         string
}

// SubmitApplication records a pending application from actor to a project that is
// accepting applications. Several pending applications per (project, user) are allowed.
func (e *Engine) SubmitApplication(ctx context.Context, actor model.Actor, in SubmitApplicationInput) (model.ProjectApplication, error) {
	if err := requireActor(actor); err != nil {
		return model.ProjectApplication{}, err
	}
	if !in.PartnershipType.Valid() {
		return model.ProjectApplication{}, invalidInput("unknown partnership type %q", in.PartnershipType)
	}

	var (
		app     model.ProjectApplication
		project model.Project
	)
	err := e.update(ctx, func(tx Tx) error {
		var err error
		project, err = tx.Project(in.ProjectID)
		if err != nil {
			return err
		}
		if !project.ApplicationsEnabled || !project.Status.AcceptsApplications() {
			return fmt.Errorf("project %s: %w", project.ID, ErrApplicationsClosed)
		}
		if in.OrganizationID != "" {
			if _, err := tx.Member(in.OrganizationID, actor.UserID); err != nil {
				if errors.Is(err, ErrNotFound) {
					return fmt.Errorf("not a member of organization %s: %w", in.OrganizationID, ErrUnauthorized)
				}
				return err
			}
		}
		app = model.ProjectApplication{
			ID:              e.newID(),
			ProjectID:       project.ID,
			UserID:          actor.UserID,
			OrganizationID:  in.OrganizationID,
			PartnershipType: in.PartnershipType,
			Message:         in.Message,
			Status:          model.RequestPending,
			CreatedAt:       e.now(),
		}
		return tx.PutProjectApplication(app)
	})
	if err != nil {
		return model.ProjectApplication{}, err
	}

	e.emit(ctx, model.Notification{
		UserID:  project.OrganizerID,
		Title:   "New partnership application",
		Message: fmt.Sprintf("A new %s partnership application was submitted for %q.", app.PartnershipType, project.Title),
		Link:    e.projectLink(project.ID),
	})
	return app, nil
}

// DecideApplication approves or rejects a pending project application. Approval
// materializes the Partnership in the same transaction. Deciding a row that is no
// longer pending has no side effects: the stored row is returned, with
// ErrInvalidTransition only if it disagrees with the requested decision.
func (e *Engine) DecideApplication(ctx context.Context, actor model.Actor, id string, decision model.Decision) (model.ProjectApplication, error) {
	if err := requireActor(actor); err != nil {
		return model.ProjectApplication{}, err
	}
	if !decision.Valid() {
		return model.ProjectApplication{}, fmt.Errorf("decision %q: %w", decision, ErrInvalidTransition)
	}

	var (
		app     model.ProjectApplication
		project model.Project
		changed bool
	)
	err := e.update(ctx, func(tx Tx) error {
		changed = false
		var err error
		app, err = tx.ProjectApplication(id)
		if err != nil {
			return err
		}
		project, err = tx.Project(app.ProjectID)
		if err != nil {
			return err
		}
		if !canManageProject(actor, project) {
			return fmt.Errorf("deciding application %s: %w", id, ErrUnauthorized)
		}
		if app.Status.Terminal() {
			return nil
		}
		next := decision.RequestStatus()
		if !model.CanTransitionRequest(app.Status, next) {
			return fmt.Errorf("application %s %s -> %s: %w", id, app.Status, next, ErrInvalidTransition)
		}
		app.Status = next
		app.DecidedBy = actor.UserID
		app.DecidedAt = e.now()
		if err := tx.PutProjectApplication(app); err != nil {
			return err
		}
		if next == model.RequestApproved {
			if _, err := e.materialize(tx, app); err != nil {
				return err
			}
		}
		changed = true
		return nil
	})
	if err != nil {
		return model.ProjectApplication{}, err
	}
	if !changed {
		return app, alreadyDecided(app.ID, app.Status, decision)
	}

	e.logger.InfoContext(ctx, "application decided", "application_id", app.ID, "project_id", app.ProjectID, "status", app.Status, "actor", actor.UserID)
	e.emit(ctx, applicationOutcome(e, project, app))
	return app, nil
}

func applicationOutcome(e *Engine, project model.Project, app model.ProjectApplication) model.Notification {
	if app.Status == model.RequestApproved {
		return model.Notification{
			UserID:  app.UserID,
			Title:   "Application approved",
			Message: fmt.Sprintf("Your application to partner on %q was approved.", project.Title),
			Link:    e.projectLink(project.ID),
		}
	}
	return model.Notification{
		UserID:  app.UserID,
		Title:   "Application rejected",
		Message: fmt.Sprintf("Your application to partner on %q was not accepted.", project.Title),
	}
}

// alreadyDecided is the result of deciding a terminal row: nil when the stored
// status matches the decision, ErrInvalidTransition otherwise.
func alreadyDecided(id string, status model.RequestStatus, decision model.Decision) error {
	if status == decision.RequestStatus() {
		return nil
	}
	return fmt.Errorf("%s is already %s: %w", id, status, ErrInvalidTransition)
}

// ListProjectApplications returns a project's applications newest first. Only the
// organizer and admins may list them.
func (e *Engine) ListProjectApplications(ctx context.Context, actor model.Actor, projectID string) ([]model.ProjectApplication, error) {
	var apps []model.ProjectApplication
	err := e.view(ctx, func(tx Tx) error {
		project, err := tx.Project(projectID)
		if err != nil {
			return err
		}
		if !canManageProject(actor, project) {
			return ErrUnauthorized
		}
		apps, err = tx.ProjectApplicationsByProject(projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	newestFirst(apps, func(a model.ProjectApplication) time.Time { return a.CreatedAt }, func(a model.ProjectApplication) string { return a.ID })
	return apps, nil
}
