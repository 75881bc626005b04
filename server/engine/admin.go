package engine

import (
	"context"
	"time"

	"github.com/mscno/collab/server/model"
)

// PendingApprovals is the admin moderation queue.
type PendingApprovals struct {
	Projects      []model.Project      `json:"projects"`
	Organizations []model.Organization `json:"organizations"`
}

// PendingApprovalsForAdmin lists projects waiting for publish approval and
// organizations waiting for approval, oldest first.
func (e *Engine) PendingApprovalsForAdmin(ctx context.Context, actor model.Actor) (PendingApprovals, error) {
	if !actor.Admin {
		return PendingApprovals{}, ErrUnauthorized
	}
	var out PendingApprovals
	err := e.view(ctx, func(tx Tx) error {
		var err error
		out.Projects, err = tx.ProjectsByStatus(model.ProjectPendingPublish)
		if err != nil {
			return err
		}
		out.Organizations, err = tx.OrganizationsByStatus(model.OrganizationPendingApproval)
		return err
	})
	if err != nil {
		return PendingApprovals{}, err
	}
	oldestFirst(out.Projects, func(p model.Project) time.Time { return p.CreatedAt }, func(p model.Project) string { return p.ID })
	oldestFirst(out.Organizations, func(o model.Organization) time.Time { return o.CreatedAt }, func(o model.Organization) string { return o.ID })
	return out, nil
}

func oldestFirst[T any](rows []T, createdAt func(T) time.Time, id func(T) string) {
	newestFirst(rows, createdAt, id)
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

func (e *Engine) GetSettings(ctx context.Context) (model.Settings, error) {
	var s model.Settings
	err := e.view(ctx, func(tx Tx) error {
		var err error
		s, err = tx.Settings()
		return err
	})
	return s, err
}

// UpdateSettings replaces the system settings. Entities created earlier keep the
// status they were given.
func (e *Engine) UpdateSettings(ctx context.Context, actor model.Actor, s model.Settings) (model.Settings, error) {
	if !actor.Admin {
		return model.Settings{}, ErrUnauthorized
	}
	s.UpdatedAt = e.now()
	err := e.update(ctx, func(tx Tx) error {
		return tx.PutSettings(s)
	})
	if err != nil {
		return model.Settings{}, err
	}
	e.logger.InfoContext(ctx, "settings updated",
		"auto_approve_organizations", s.AutoApproveOrganizations,
		"auto_approve_projects", s.AutoApproveProjects,
		"require_project_approval", s.RequireProjectApproval,
		"actor", actor.UserID)
	return s, nil
}
