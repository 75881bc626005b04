// Package api holds the request and response messages of the collab Connect service
// and the JSON codec both sides use to encode them.
package api

import (
	"github.com/mscno/collab/server/model"
)

const ServiceName = "collab.v1.CollabService"

const (
	CreateOrganizationProcedure           = "/" + ServiceName + "/CreateOrganization"
	DecideOrganizationApprovalProcedure   = "/" + ServiceName + "/DecideOrganizationApproval"
	SubmitJoinRequestProcedure            = "/" + ServiceName + "/SubmitJoinRequest"
	DecideJoinRequestProcedure            = "/" + ServiceName + "/DecideJoinRequest"
	ListJoinRequestsProcedure             = "/" + ServiceName + "/ListJoinRequests"
	CreatePartnershipInterestProcedure    = "/" + ServiceName + "/CreatePartnershipInterest"
	ListPartnershipInterestsProcedure     = "/" + ServiceName + "/ListPartnershipInterests"
	SubmitPartnershipApplicationProcedure = "/" + ServiceName + "/SubmitPartnershipApplication"
	DecidePartnershipApplicationProcedure = "/" + ServiceName + "/DecidePartnershipApplication"
	ListPartnershipApplicationsProcedure  = "/" + ServiceName + "/ListPartnershipApplications"
	CreateProjectProcedure                = "/" + ServiceName + "/CreateProject"
	SubmitProjectForPublishProcedure      = "/" + ServiceName + "/SubmitProjectForPublish"
	DecideProjectPublishProcedure         = "/" + ServiceName + "/DecideProjectPublish"
	StartProjectProcedure                 = "/" + ServiceName + "/StartProject"
	CompleteProjectProcedure              = "/" + ServiceName + "/CompleteProject"
	SetApplicationsEnabledProcedure       = "/" + ServiceName + "/SetApplicationsEnabled"
	SubmitApplicationProcedure            = "/" + ServiceName + "/SubmitApplication"
	DecideApplicationProcedure            = "/" + ServiceName + "/DecideApplication"
	ListProjectApplicationsProcedure      = "/" + ServiceName + "/ListProjectApplications"
	MaterializeApplicationProcedure       = "/" + ServiceName + "/MaterializeApplication"
	CreatePartnershipProcedure            = "/" + ServiceName + "/CreatePartnership"
	ListPartnershipsProcedure             = "/" + ServiceName + "/ListPartnerships"
	PendingApprovalsProcedure             = "/" + ServiceName + "/PendingApprovals"
	GetSettingsProcedure                  = "/" + ServiceName + "/GetSettings"
	UpdateSettingsProcedure               = "/" + ServiceName + "/UpdateSettings"
	ListNotificationsProcedure            = "/" + ServiceName + "/ListNotifications"
	MarkNotificationsReadProcedure        = "/" + ServiceName + "/MarkNotificationsRead"
)

// DecideRequest carries an owner or admin decision on the entity with ID.
type DecideRequest struct {
	ID       string         `json:"id"`
	Decision model.Decision `json:"decision"`
}

type ProjectRequest struct {
	ProjectID string `json:"project_id"`
}

type OrganizationRequest struct {
	OrganizationID string `json:"organization_id"`
}

type Empty struct{}

type CreateOrganizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type OrganizationResponse struct {
	Organization model.Organization `json:"organization"`
}

type SubmitJoinRequestRequest struct {
	OrganizationID string `json:"organization_id"`
	Message        string `json:"message,omitempty"`
}

type JoinRequestResponse struct {
	JoinRequest model.OrganizationJoinRequest `json:"join_request"`
}

type ListJoinRequestsResponse struct {
	JoinRequests []model.OrganizationJoinRequest `json:"join_requests"`
}

type CreatePartnershipInterestRequest struct {
	OrganizationID  string                `json:"organization_id"`
	PartnershipType model.PartnershipType `json:"partnership_type"`
	Description     string                `json:"description,omitempty"`
}

type PartnershipInterestResponse struct {
	Interest model.PartnershipInterest `json:"interest"`
}

type ListPartnershipInterestsResponse struct {
	Interests []model.PartnershipInterest `json:"interests"`
}

type SubmitPartnershipApplicationRequest struct {
	InterestID string `json:"interest_id"`
	ProjectID  string `json:"project_id,omitempty"`
	Message    string `json:"message,omitempty"`
}

type PartnershipApplicationResponse struct {
	Application model.PartnershipApplication `json:"application"`
}

type ListPartnershipApplicationsResponse struct {
	Applications []model.PartnershipApplication `json:"applications"`
}

type CreateProjectRequest struct {
	OrganizationID         string                  `json:"organization_id,omitempty"`
	Title                  string                  `json:"title"`
	Description            string                  `json:"description,omitempty"`
	PartnershipTypesSought []model.PartnershipType `json:"partnership_types_sought,omitempty"`
	ApplicationsEnabled    bool                    `json:"applications_enabled"`
	Publish                bool                    `json:"publish"`
}

type ProjectResponse struct {
	Project model.Project `json:"project"`
}

type SetApplicationsEnabledRequest struct {
	ProjectID string `json:"project_id"`
	Enabled   bool   `json:"enabled"`
}

type SubmitApplicationRequest struct {
	ProjectID       string                `json:"project_id"`
	OrganizationID  string                `json:"organization_id,omitempty"`
	PartnershipType model.PartnershipType `json:"partnership_type"`
	Message         string                `json:"message,omitempty"`
}

type ApplicationResponse struct {
	Application model.ProjectApplication `json:"application"`
}

type ListProjectApplicationsResponse struct {
	Applications []model.ProjectApplication `json:"applications"`
}

type MaterializeApplicationRequest struct {
	ApplicationID string `json:"application_id"`
}

type CreatePartnershipRequest struct {
	ProjectID       string                  `json:"project_id"`
	PartnerID       model.UserID            `json:"partner_id"`
	OrganizationID  string                  `json:"organization_id,omitempty"`
	PartnershipType model.PartnershipType   `json:"partnership_type"`
	Status          model.PartnershipStatus `json:"status,omitempty"`
}

type PartnershipResponse struct {
	Partnership model.Partnership `json:"partnership"`
}

// ListPartnershipsRequest lists the effective partnerships of UserID. An empty
// UserID means the caller.
type ListPartnershipsRequest struct {
	UserID model.UserID `json:"user_id,omitempty"`
}

type ListPartnershipsResponse struct {
	Partnerships []model.PartnershipView `json:"partnerships"`
}

type PendingApprovalsResponse struct {
	Projects      []model.Project      `json:"projects"`
	Organizations []model.Organization `json:"organizations"`
}

type SettingsMessage struct {
	Settings model.Settings `json:"settings"`
}

type ListNotificationsRequest struct {
	UnreadOnly bool `json:"unread_only,omitempty"`
}

type ListNotificationsResponse struct {
	Notifications []model.Notification `json:"notifications"`
}

// MarkNotificationsReadRequest marks IDs read, or every notification when IDs is empty.
type MarkNotificationsReadRequest struct {
	IDs []string `json:"ids,omitempty"`
}

type MarkNotificationsReadResponse struct {
	Marked int `json:"marked"`
}
