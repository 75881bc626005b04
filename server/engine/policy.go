package engine

import "github.com/mscno/collab/server/model"

// Policy is the effective auto-approval configuration at one moment. It is built
// from the Settings read inside the transaction that creates or submits an entity,
// so the status it yields is final for that entity.
type Policy struct {
	AutoApproveOrganizations bool
	AutoApproveProjects      bool
	RequireProjectApproval   bool
}

func PolicyFrom(s model.Settings) Policy {
	return Policy{
		AutoApproveOrganizations: s.AutoApproveOrganizations,
		AutoApproveProjects:      s.AutoApproveProjects,
		RequireProjectApproval:   s.RequireProjectApproval,
	}
}

// OrganizationStatus is the initial status of a newly created organization.
func (p Policy) OrganizationStatus() model.OrganizationStatus {
	if p.AutoApproveOrganizations {
		return model.OrganizationActive
	}
	return model.OrganizationPendingApproval
}

// PublishStatus is the status a draft project moves to when submitted for publishing.
func (p Policy) PublishStatus() model.ProjectStatus {
	if !p.RequireProjectApproval {
		return model.ProjectPublished
	}
	return model.ProjectPendingPublish
}

// InitialProjectStatus is the status of a newly created project. Publishing on
// creation is only honoured when projects are auto-approved.
func (p Policy) InitialProjectStatus(publish bool) model.ProjectStatus {
	if publish && p.AutoApproveProjects {
		return p.PublishStatus()
	}
	return model.ProjectDraft
}

func (e *Engine) policy(tx Tx) (Policy, error) {
	s, err := tx.Settings()
	if err != nil {
		return Policy{}, err
	}
	return PolicyFrom(s), nil
}
