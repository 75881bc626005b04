package engine

import (
	"context"
	"errors"
	"time"

	"github.com/mscno/collab/server/model"
)

// ListPartnerships returns the partner list of userID, or of the actor when userID
// is empty. Only the user themself and admins may read it.
func (e *Engine) ListPartnerships(ctx context.Context, actor model.Actor, userID model.UserID) ([]model.PartnershipView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if userID == "" {
		userID = actor.UserID
	}
	if userID != actor.UserID && !actor.Admin {
		return nil, ErrUnauthorized
	}
	return e.PartnershipsFor(ctx, userID)
}

// PartnershipsFor returns the effective partner list of userID. It merges the
// user's Partnership rows with approved applications that have no row yet and
// reports every entry of a completed project as completed. It never writes.
func (e *Engine) PartnershipsFor(ctx context.Context, userID model.UserID) ([]model.PartnershipView, error) {
	if userID == "" {
		return nil, invalidInput("user is required")
	}
	var (
		rows     []model.Partnership
		apps     []model.ProjectApplication
		projects = map[string]model.Project{}
	)
	err := e.view(ctx, func(tx Tx) error {
		var err error
		rows, err = tx.PartnershipsByPartner(userID)
		if err != nil {
			return err
		}
		all, err := tx.ProjectApplicationsByUser(userID)
		if err != nil {
			return err
		}
		apps = apps[:0]
		for _, a := range all {
			if a.Status == model.RequestApproved {
				apps = append(apps, a)
			}
		}
		for _, id := range projectIDs(rows, apps) {
			p, err := tx.Project(id)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			projects[id] = p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reconcilePartnerships(rows, apps, projects), nil
}

func projectIDs(rows []model.Partnership, apps []model.ProjectApplication) []string {
	seen := map[string]bool{}
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, r := range rows {
		add(r.ProjectID)
	}
	for _, a := range apps {
		add(a.ProjectID)
	}
	return ids
}

// reconcilePartnerships merges Partnership rows and approved applications into one
// entry per project. Rows come first, then synthesized entries, each newest first.
// A row always wins over an application for the same project, and the newest row
// wins over older duplicate rows.
func reconcilePartnerships(rows []model.Partnership, apps []model.ProjectApplication, projects map[string]model.Project) []model.PartnershipView {
	rows = append([]model.Partnership(nil), rows...)
	apps = append([]model.ProjectApplication(nil), apps...)
	newestFirst(rows, func(p model.Partnership) time.Time { return p.CreatedAt }, func(p model.Partnership) string { return p.ID })
	newestFirst(apps, func(a model.ProjectApplication) time.Time { return a.CreatedAt }, func(a model.ProjectApplication) string { return a.ID })

	seen := map[string]bool{}
	views := make([]model.PartnershipView, 0, len(rows)+len(apps))
	for _, r := range rows {
		if seen[r.ProjectID] {
			continue
		}
		seen[r.ProjectID] = true
		views = append(views, model.PartnershipView{
			ProjectID:       r.ProjectID,
			PartnerID:       r.PartnerID,
			OrganizationID:  r.OrganizationID,
			PartnershipType: r.PartnershipType,
			Status:          r.Status,
			Source:          model.SourcePartnership,
			PartnershipID:   r.ID,
			CreatedAt:       r.CreatedAt,
		})
	}
	for _, a := range apps {
		if seen[a.ProjectID] {
			continue
		}
		seen[a.ProjectID] = true
		views = append(views, model.PartnershipView{
			ProjectID:       a.ProjectID,
			PartnerID:       a.UserID,
			OrganizationID:  a.OrganizationID,
			PartnershipType: a.PartnershipType,
			Status:          synthesizedStatus(a.Status),
			Source:          model.SourceApplication,
			ApplicationID:   a.ID,
			CreatedAt:       a.CreatedAt,
		})
	}

	for i := range views {
		p, ok := projects[views[i].ProjectID]
		if !ok {
			continue
		}
		views[i].ProjectTitle = p.Title
		if p.Status == model.ProjectCompleted {
			views[i].Status = model.PartnershipCompleted
		}
	}
	return views
}

func synthesizedStatus(s model.RequestStatus) model.PartnershipStatus {
	switch s {
	case model.RequestApproved:
		return model.PartnershipActive
	case model.RequestPending:
		return model.PartnershipPending
	default:
		return model.PartnershipStatus(s)
	}
}
