// Package client talks to the collab Connect service.
package client

import (
	"context"

	"github.com/mscno/collab/pkg/api"
	"github.com/mscno/collab/server/model"
)

// Client defines the operations the collab CLI performs against the server.
type Client interface {
	CreateOrganization(ctx context.Context, name, description string) (model.Organization, error)
	DecideOrganizationApproval(ctx context.Context, orgID string, decision model.Decision) (model.Organization, error)
	SubmitJoinRequest(ctx context.Context, orgID, message string) (model.OrganizationJoinRequest, error)
	DecideJoinRequest(ctx context.Context, id string, decision model.Decision) (model.OrganizationJoinRequest, error)
	ListJoinRequests(ctx context.Context, orgID string) ([]model.OrganizationJoinRequest, error)

	CreatePartnershipInterest(ctx context.Context, req api.CreatePartnershipInterestRequest) (model.PartnershipInterest, error)
	ListPartnershipInterests(ctx context.Context, orgID string) ([]model.PartnershipInterest, error)
	SubmitPartnershipApplication(ctx context.Context, req api.SubmitPartnershipApplicationRequest) (model.PartnershipApplication, error)
	DecidePartnershipApplication(ctx context.Context, id string, decision model.Decision) (model.PartnershipApplication, error)
	ListPartnershipApplications(ctx context.Context, orgID string) ([]model.PartnershipApplication, error)

	CreateProject(ctx context.Context, req api.CreateProjectRequest) (model.Project, error)
	SubmitProjectForPublish(ctx context.Context, projectID string) (model.Project, error)
	DecideProjectPublish(ctx context.Context, projectID string, decision model.Decision) (model.Project, error)
	StartProject(ctx context.Context, projectID string) (model.Project, error)
	CompleteProject(ctx context.Context, projectID string) (model.Project, error)
	SetApplicationsEnabled(ctx context.Context, projectID string, enabled bool) (model.Project, error)

	SubmitApplication(ctx context.Context, req api.SubmitApplicationRequest) (model.ProjectApplication, error)
	DecideApplication(ctx context.Context, id string, decision model.Decision) (model.ProjectApplication, error)
	ListProjectApplications(ctx context.Context, projectID string) ([]model.ProjectApplication, error)
	MaterializeApplication(ctx context.Context, applicationID string) (model.Partnership, error)
	CreatePartnership(ctx context.Context, req api.CreatePartnershipRequest) (model.Partnership, error)
	ListPartnerships(ctx context.Context, userID model.UserID) ([]model.PartnershipView, error)

	PendingApprovals(ctx context.Context) (api.PendingApprovalsResponse, error)
	GetSettings(ctx context.Context) (model.Settings, error)
	UpdateSettings(ctx context.Context, settings model.Settings) (model.Settings, error)
	ListNotifications(ctx context.Context, unreadOnly bool) ([]model.Notification, error)
	MarkNotificationsRead(ctx context.Context, ids ...string) (int, error)
}
