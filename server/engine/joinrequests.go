package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mscno/collab/server/model"
)

// SubmitJoinRequest asks for membership of an active organization.
func (e *Engine) SubmitJoinRequest(ctx context.Context, actor model.Actor, orgID, message string) (model.OrganizationJoinRequest, error) {
	if err := requireActor(actor); err != nil {
		return model.OrganizationJoinRequest{}, err
	}
	var (
		req model.OrganizationJoinRequest
		org model.Organization
	)
	err := e.update(ctx, func(tx Tx) error {
		var err error
		org, err = tx.Organization(orgID)
		if err != nil {
			return err
		}
		if org.Status != model.OrganizationActive {
			return fmt.Errorf("organization %s is %s: %w", org.ID, org.Status, ErrApplicationsClosed)
		}
		_, err = tx.Member(orgID, actor.UserID)
		switch {
		case err == nil:
			return invalidInput("already a member of organization %s", orgID)
		case !errors.Is(err, ErrNotFound):
			return err
		}
		req = model.OrganizationJoinRequest{
			ID:             e.newID(),
			OrganizationID: orgID,
			UserID:         actor.UserID,
			Message:        message,
			Status:         model.RequestPending,
			CreatedAt:      e.now(),
		}
		return tx.PutJoinRequest(req)
	})
	if err != nil {
		return model.OrganizationJoinRequest{}, err
	}
	e.emit(ctx, model.Notification{
		UserID:  org.OwnerID,
		Title:   "New join request",
		Message: fmt.Sprintf("Someone asked to join %q.", org.Name),
		Link:    e.organizationLink(org.ID),
	})
	return req, nil
}

// DecideJoinRequest approves or rejects a pending join request. Approval adds the
// requester as a member in the same transaction. Terminal rows behave as in
// DecideApplication.
func (e *Engine) DecideJoinRequest(ctx context.Context, actor model.Actor, id string, decision model.Decision) (model.OrganizationJoinRequest, error) {
	if err := requireActor(actor); err != nil {
		return model.OrganizationJoinRequest{}, err
	}
	if !decision.Valid() {
		return model.OrganizationJoinRequest{}, fmt.Errorf("decision %q: %w", decision, ErrInvalidTransition)
	}
	var (
		req     model.OrganizationJoinRequest
		org     model.Organization
		changed bool
	)
	err := e.update(ctx, func(tx Tx) error {
		changed = false
		var err error
		req, err = tx.JoinRequest(id)
		if err != nil {
			return err
		}
		org, err = tx.Organization(req.OrganizationID)
		if err != nil {
			return err
		}
		if !canManageOrganization(actor, org) {
			return fmt.Errorf("deciding join request %s: %w", id, ErrUnauthorized)
		}
		if req.Status.Terminal() {
			return nil
		}
		next := decision.RequestStatus()
		if !model.CanTransitionRequest(req.Status, next) {
			return fmt.Errorf("join request %s %s -> %s: %w", id, req.Status, next, ErrInvalidTransition)
		}
		now := e.now()
		req.Status = next
		req.DecidedBy = actor.UserID
		req.DecidedAt = now
		if err := tx.PutJoinRequest(req); err != nil {
			return err
		}
		if next == model.RequestApproved {
			_, err := tx.Member(req.OrganizationID, req.UserID)
			switch {
			case errors.Is(err, ErrNotFound):
				err = tx.PutMember(model.OrganizationMember{
					OrganizationID: req.OrganizationID,
					UserID:         req.UserID,
					Role:           model.RoleMember,
					JoinedAt:       now,
				})
				if err != nil {
					return err
				}
			case err != nil:
				return err
			}
		}
		changed = true
		return nil
	})
	if err != nil {
		return model.OrganizationJoinRequest{}, err
	}
	if !changed {
		return req, alreadyDecided(req.ID, req.Status, decision)
	}

	e.logger.InfoContext(ctx, "join request decided", "join_request_id", req.ID, "organization_id", req.OrganizationID, "status", req.Status, "actor", actor.UserID)
	n := model.Notification{
		UserID:  req.UserID,
		Title:   "Join request approved",
		Message: fmt.Sprintf("You are now a member of %q.", org.Name),
		Link:    e.organizationLink(org.ID),
	}
	if req.Status == model.RequestRejected {
		n.Title = "Join request rejected"
		n.Message = fmt.Sprintf("Your request to join %q was not accepted.", org.Name)
		n.Link = ""
	}
	e.emit(ctx, n)
	return req, nil
}

// ListJoinRequests returns an organization's join requests newest first.
func (e *Engine) ListJoinRequests(ctx context.Context, actor model.Actor, orgID string) ([]model.OrganizationJoinRequest, error) {
	var reqs []model.OrganizationJoinRequest
	err := e.view(ctx, func(tx Tx) error {
		org, err := tx.Organization(orgID)
		if err != nil {
			return err
		}
		if !canManageOrganization(actor, org) {
			return ErrUnauthorized
		}
		reqs, err = tx.JoinRequestsByOrganization(orgID)
		return err
	})
	if err != nil {
		return nil, err
	}
	newestFirst(reqs, func(r model.OrganizationJoinRequest) time.Time { return r.CreatedAt }, func(r model.OrganizationJoinRequest) string { return r.ID })
	return reqs, nil
}
