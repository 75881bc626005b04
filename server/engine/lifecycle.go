package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mscno/collab/server/model"
)

type CreateProjectInput struct {
	OrganizationID         string
	Title                  string
	Description            string
	PartnershipTypesSought []model.PartnershipType
	ApplicationsEnabled    bool
	// Publish asks for the project to be published on creation. It only takes
	// effect when projects are auto-approved.
	Publish bool
}

func (e *Engine) CreateProject(ctx context.Context, actor model.Actor, in CreateProjectInput) (model.Project, error) {
	if err := requireActor(actor); err != nil {
		return model.Project{}, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return model.Project{}, invalidInput("title is required")
	}
	for _, t := range in.PartnershipTypesSought {
		if !t.Valid() {
			return model.Project{}, invalidInput("unknown partnership type %q", t)
		}
	}

	var p model.Project
	err := e.update(ctx, func(tx Tx) error {
		if in.OrganizationID != "" {
			if _, err := tx.Member(in.OrganizationID, actor.UserID); err != nil {
				if !actor.Admin {
					return fmt.Errorf("not a member of organization %s: %w", in.OrganizationID, ErrUnauthorized)
				}
				if _, err := tx.Organization(in.OrganizationID); err != nil {
					return err
				}
			}
		}
		policy, err := e.policy(tx)
		if err != nil {
			return err
		}
		now := e.now()
		p = model.Project{
			ID:                     e.newID(),
			OrganizerID:            actor.UserID,
			OrganizationID:         in.OrganizationID,
			Title:                  strings.TrimSpace(in.Title),
			Description:            in.Description,
			Status:                 policy.InitialProjectStatus(in.Publish),
			ApplicationsEnabled:    in.ApplicationsEnabled,
			PartnershipTypesSought: in.PartnershipTypesSought,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		return tx.PutProject(p)
	})
	if err != nil {
		return model.Project{}, err
	}
	e.logger.InfoContext(ctx, "project created", "project_id", p.ID, "status", p.Status, "organizer", p.OrganizerID)
	return p, nil
}

// SubmitProjectForPublish moves a draft project to published or pending_publish
// depending on whether project approval is required at the moment of submission.
// Submitting a project that is already pending or published returns it unchanged.
func (e *Engine) SubmitProjectForPublish(ctx context.Context, actor model.Actor, projectID string) (model.Project, error) {
	if err := requireActor(actor); err != nil {
		return model.Project{}, err
	}
	var p model.Project
	err := e.update(ctx, func(tx Tx) error {
		var err error
		p, err = tx.Project(projectID)
		if err != nil {
			return err
		}
		if !canManageProject(actor, p) {
			return ErrUnauthorized
		}
		if p.Status == model.ProjectPendingPublish || p.Status == model.ProjectPublished {
			return nil
		}
		policy, err := e.policy(tx)
		if err != nil {
			return err
		}
		return e.moveProject(tx, &p, policy.PublishStatus())
	})
	if err != nil {
		return model.Project{}, err
	}
	return p, nil
}

// DecideProjectPublish is the admin decision on a pending_publish project.
// Approval publishes it; rejection returns it to draft. Repeating a decision that
// already holds returns the project unchanged.
func (e *Engine) DecideProjectPublish(ctx context.Context, actor model.Actor, projectID string, decision model.Decision) (model.Project, error) {
	if !actor.Admin {
		return model.Project{}, ErrUnauthorized
	}
	if !decision.Valid() {
		return model.Project{}, fmt.Errorf("decision %q: %w", decision, ErrInvalidTransition)
	}
	next := model.ProjectPublished
	if decision == model.DecisionRejected {
		next = model.ProjectDraft
	}

	var (
		p       model.Project
		changed bool
	)
	err := e.update(ctx, func(tx Tx) error {
		changed = false
		var err error
		p, err = tx.Project(projectID)
		if err != nil {
			return err
		}
		if p.Status == next {
			return nil
		}
		if p.Status != model.ProjectPendingPublish {
			return fmt.Errorf("project %s is %s: %w", p.ID, p.Status, ErrInvalidTransition)
		}
		changed = true
		return e.moveProject(tx, &p, next)
	})
	if errors.Is(err, ErrInvalidTransition) {
		return p, err
	}
	if err != nil {
		return model.Project{}, err
	}
	if !changed {
		return p, nil
	}

	e.logger.InfoContext(ctx, "project publish decided", "project_id", p.ID, "status", p.Status, "actor", actor.UserID)
	n := model.Notification{
		UserID:  p.OrganizerID,
		Title:   "Project published",
		Message: fmt.Sprintf("Your project %q is now published.", p.Title),
		Link:    e.projectLink(p.ID),
	}
	if decision == model.DecisionRejected {
		n.Title = "Project not approved"
		n.Message = fmt.Sprintf("Your project %q was not approved for publishing and is back in draft.", p.Title)
	}
	e.emit(ctx, n)
	return p, nil
}

// StartProject moves a published project to in-progress.
func (e *Engine) StartProject(ctx context.Context, actor model.Actor, projectID string) (model.Project, error) {
	p, _, err := e.ownerTransition(ctx, actor, projectID, model.ProjectInProgress)
	return p, err
}

// CompleteProject marks a project completed. Every partnership of the project is
// reported as completed from then on. Completing twice is a no-op.
func (e *Engine) CompleteProject(ctx context.Context, actor model.Actor, projectID string) (model.Project, error) {
	p, changed, err := e.ownerTransition(ctx, actor, projectID, model.ProjectCompleted)
	if err != nil || !changed {
		return p, err
	}

	var partners []model.UserID
	err = e.view(ctx, func(tx Tx) error {
		rows, err := tx.PartnershipsByProject(p.ID)
		if err != nil {
			return err
		}
		for _, r := range rows {
			if r.Status == model.PartnershipActive {
				partners = append(partners, r.PartnerID)
			}
		}
		return nil
	})
	if err != nil {
		e.logger.WarnContext(ctx, "listing partners to notify", "project_id", p.ID, "error", err)
		return p, nil
	}
	for _, u := range partners {
		e.emit(ctx, model.Notification{
			UserID:  u,
			Title:   "Project completed",
			Message: fmt.Sprintf("%q has been completed. Thank you for partnering!", p.Title),
			Link:    e.projectLink(p.ID),
		})
	}
	return p, nil
}

// ownerTransition applies an organizer-driven move. Moving a project to the status
// it already has returns it unchanged; ErrInvalidTransition is returned for a
// different move the table does not allow.
func (e *Engine) ownerTransition(ctx context.Context, actor model.Actor, projectID string, to model.ProjectStatus) (model.Project, bool, error) {
	if err := requireActor(actor); err != nil {
		return model.Project{}, false, err
	}
	var (
		p       model.Project
		changed bool
	)
	err := e.update(ctx, func(tx Tx) error {
		changed = false
		var err error
		p, err = tx.Project(projectID)
		if err != nil {
			return err
		}
		if !canManageProject(actor, p) {
			return ErrUnauthorized
		}
		if p.Status == to {
			return nil
		}
		changed = true
		return e.moveProject(tx, &p, to)
	})
	if err != nil {
		return model.Project{}, false, err
	}
	return p, changed, nil
}

// moveProject checks the transition table, stamps timestamps and stores p.
func (e *Engine) moveProject(tx Tx, p *model.Project, to model.ProjectStatus) error {
	if !model.CanTransitionProject(p.Status, to) {
		return fmt.Errorf("project %s %s -> %s: %w", p.ID, p.Status, to, ErrInvalidTransition)
	}
	now := e.now()
	p.Status = to
	p.UpdatedAt = now
	if to == model.ProjectCompleted {
		p.CompletedAt = now
	}
	return tx.PutProject(*p)
}

// SetApplicationsEnabled opens or closes a project for new applications.
func (e *Engine) SetApplicationsEnabled(ctx context.Context, actor model.Actor, projectID string, enabled bool) (model.Project, error) {
	if err := requireActor(actor); err != nil {
		return model.Project{}, err
	}
	var p model.Project
	err := e.update(ctx, func(tx Tx) error {
		var err error
		p, err = tx.Project(projectID)
		if err != nil {
			return err
		}
		if !canManageProject(actor, p) {
			return ErrUnauthorized
		}
		if p.ApplicationsEnabled == enabled {
			return nil
		}
		p.ApplicationsEnabled = enabled
		p.UpdatedAt = e.now()
		return tx.PutProject(p)
	})
	if err != nil {
		return model.Project{}, err
	}
	return p, nil
}

type CreateOrganizationInput struct {
	Name        string
	Description string
}

// CreateOrganization stores a new organization with the status the current policy
// dictates and makes the creator its owner.
func (e *Engine) CreateOrganization(ctx context.Context, actor model.Actor, in CreateOrganizationInput) (model.Organization, error) {
	if err := requireActor(actor); err != nil {
		return model.Organization{}, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Organization{}, invalidInput("name is required")
	}
	var o model.Organization
	err := e.update(ctx, func(tx Tx) error {
		policy, err := e.policy(tx)
		if err != nil {
			return err
		}
		now := e.now()
		o = model.Organization{
			ID:          e.newID(),
			OwnerID:     actor.UserID,
			Name:        strings.TrimSpace(in.Name),
			Description: in.Description,
			Status:      policy.OrganizationStatus(),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.PutOrganization(o); err != nil {
			return err
		}
		return tx.PutMember(model.OrganizationMember{
			OrganizationID: o.ID,
			UserID:         actor.UserID,
			Role:           model.RoleOwner,
			JoinedAt:       now,
		})
	})
	if err != nil {
		return model.Organization{}, err
	}
	e.logger.InfoContext(ctx, "organization created", "organization_id", o.ID, "status", o.Status, "owner", o.OwnerID)
	return o, nil
}

// DecideOrganizationApproval is the admin decision on a pending organization.
func (e *Engine) DecideOrganizationApproval(ctx context.Context, actor model.Actor, orgID string, decision model.Decision) (model.Organization, error) {
	if !actor.Admin {
		return model.Organization{}, ErrUnauthorized
	}
	if !decision.Valid() {
		return model.Organization{}, fmt.Errorf("decision %q: %w", decision, ErrInvalidTransition)
	}
	next := model.OrganizationActive
	if decision == model.DecisionRejected {
		next = model.OrganizationRejected
	}

	var (
		o       model.Organization
		changed bool
	)
	err := e.update(ctx, func(tx Tx) error {
		changed = false
		var err error
		o, err = tx.Organization(orgID)
		if err != nil {
			return err
		}
		if o.Status == next {
			return nil
		}
		if !model.CanTransitionOrganization(o.Status, next) {
			return fmt.Errorf("organization %s %s -> %s: %w", o.ID, o.Status, next, ErrInvalidTransition)
		}
		o.Status = next
		o.UpdatedAt = e.now()
		changed = true
		return tx.PutOrganization(o)
	})
	if err != nil {
		return model.Organization{}, err
	}
	if !changed {
		return o, nil
	}

	e.logger.InfoContext(ctx, "organization decided", "organization_id", o.ID, "status", o.Status, "actor", actor.UserID)
	n := model.Notification{
		UserID:  o.OwnerID,
		Title:   "Organization approved",
		Message: fmt.Sprintf("Your organization %q has been approved.", o.Name),
		Link:    e.organizationLink(o.ID),
	}
	if next == model.OrganizationRejected {
		n.Title = "Organization not approved"
		n.Message = fmt.Sprintf("Your organization %q was not approved.", o.Name)
		n.Link = ""
	}
	e.emit(ctx, n)
	return o, nil
}

type CreatePartnershipInterestInput struct {
	OrganizationID  string
	PartnershipType model.PartnershipType
	Description     string
}

// CreatePartnershipInterest publishes an open call for partners on behalf of an
// organization. Only the owner or an admin may do so.
func (e *Engine) CreatePartnershipInterest(ctx context.Context, actor model.Actor, in CreatePartnershipInterestInput) (model.PartnershipInterest, error) {
	if err := requireActor(actor); err != nil {
		return model.PartnershipInterest{}, err
	}
	if !in.PartnershipType.Valid() {
		return model.PartnershipInterest{}, invalidInput("unknown partnership type %q", in.PartnershipType)
	}
	var interest model.PartnershipInterest
	err := e.update(ctx, func(tx Tx) error {
		o, err := tx.Organization(in.OrganizationID)
		if err != nil {
			return err
		}
		if !canManageOrganization(actor, o) {
			return ErrUnauthorized
		}
		interest = model.PartnershipInterest{
			ID:              e.newID(),
			OrganizationID:  o.ID,
			PartnershipType: in.PartnershipType,
			Description:     in.Description,
			Open:            true,
			CreatedAt:       e.now(),
		}
		return tx.PutInterest(interest)
	})
	if err != nil {
		return model.PartnershipInterest{}, err
	}
	return interest, nil
}

func (e *Engine) ListPartnershipInterests(ctx context.Context, orgID string) ([]model.PartnershipInterest, error) {
	var interests []model.PartnershipInterest
	err := e.view(ctx, func(tx Tx) error {
		if _, err := tx.Organization(orgID); err != nil {
			return err
		}
		var err error
		interests, err = tx.InterestsByOrganization(orgID)
		return err
	})
	if err != nil {
		return nil, err
	}
	newestFirst(interests, func(i model.PartnershipInterest) time.Time { return i.CreatedAt }, func(i model.PartnershipInterest) string { return i.ID })
	return interests, nil
}
