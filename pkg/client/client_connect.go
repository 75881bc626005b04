package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/mscno/collab/pkg/api"
	"github.com/mscno/collab/server/model"
)

type ConnectClient struct {
	httpClient connect.HTTPClient
	baseURL    string
	options    []connect.ClientOption
	logger     *slog.Logger
}

type ClientConfig struct {
	ServerURL  string
	AuthToken  string // session token issued by collab-server
	Logger     *slog.Logger
	HTTPClient connect.HTTPClient
}

func NewConnectClient(config ClientConfig) *ConnectClient {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &ConnectClient{
		httpClient: config.HTTPClient,
		baseURL:    strings.TrimSuffix(config.ServerURL, "/"),
		options: []connect.ClientOption{
			connect.WithCodec(api.Codec{}),
			connect.WithInterceptors(authIntercepter(config.AuthToken)),
		},
		logger: config.Logger,
	}
}

func authIntercepter(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return connect.UnaryFunc(func(
			ctx context.Context,
			req connect.AnyRequest,
		) (connect.AnyResponse, error) {
			if token != "" {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		})
	}
}

// call performs one unary request. Errors keep their connect.Code so callers can use
// connect.CodeOf.
func call[Req, Res any](ctx context.Context, c *ConnectClient, procedure string, req *Req) (*Res, error) {
	client := connect.NewClient[Req, Res](c.httpClient, c.baseURL+procedure, c.options...)
	resp, err := client.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		name := procedure[strings.LastIndex(procedure, "/")+1:]
		c.logger.DebugContext(ctx, "request failed", "procedure", name, "code", connect.CodeOf(err).String(), "error", err)
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return resp.Msg, nil
}

func (c *ConnectClient) CreateOrganization(ctx context.Context, name, description string) (model.Organization, error) {
	resp, err := call[api.CreateOrganizationRequest, api.OrganizationResponse](ctx, c, api.CreateOrganizationProcedure,
		&api.CreateOrganizationRequest{Name: name, Description: description})
	if err != nil {
		return model.Organization{}, err
	}
	return resp.Organization, nil
}

func (c *ConnectClient) DecideOrganizationApproval(ctx context.Context, orgID string, decision model.Decision) (model.Organization, error) {
	resp, err := call[api.DecideRequest, api.OrganizationResponse](ctx, c, api.DecideOrganizationApprovalProcedure,
		&api.DecideRequest{ID: orgID, Decision: decision})
	if err != nil {
		return model.Organization{}, err
	}
	return resp.Organization, nil
}

func (c *ConnectClient) SubmitJoinRequest(ctx context.Context, orgID, message string) (model.OrganizationJoinRequest, error) {
	resp, err := call[api.SubmitJoinRequestRequest, api.JoinRequestResponse](ctx, c, api.SubmitJoinRequestProcedure,
		&api.SubmitJoinRequestRequest{OrganizationID: orgID, Message: message})
	if err != nil {
		return model.OrganizationJoinRequest{}, err
	}
	return resp.JoinRequest, nil
}

func (c *ConnectClient) DecideJoinRequest(ctx context.Context, id string, decision model.Decision) (model.OrganizationJoinRequest, error) {
	resp, err := call[api.DecideRequest, api.JoinRequestResponse](ctx, c, api.DecideJoinRequestProcedure,
		&api.DecideRequest{ID: id, Decision: decision})
	if err != nil {
		return model.OrganizationJoinRequest{}, err
	}
	return resp.JoinRequest, nil
}

func (c *ConnectClient) ListJoinRequests(ctx context.Context, orgID string) ([]model.OrganizationJoinRequest, error) {
	resp, err := call[api.OrganizationRequest, api.ListJoinRequestsResponse](ctx, c, api.ListJoinRequestsProcedure,
		&api.OrganizationRequest{OrganizationID: orgID})
	if err != nil {
		return nil, err
	}
	return resp.JoinRequests, nil
}

func (c *ConnectClient) CreatePartnershipInterest(ctx context.Context, req api.CreatePartnershipInterestRequest) (model.PartnershipInterest, error) {
	resp, err := call[api.CreatePartnershipInterestRequest, api.PartnershipInterestResponse](ctx, c, api.CreatePartnershipInterestProcedure, &req)
	if err != nil {
		return model.PartnershipInterest{}, err
	}
	return resp.Interest, nil
}

func (c *ConnectClient) ListPartnershipInterests(ctx context.Context, orgID string) ([]model.PartnershipInterest, error) {
	resp, err := call[api.OrganizationRequest, api.ListPartnershipInterestsResponse](ctx, c, api.ListPartnershipInterestsProcedure,
		&api.OrganizationRequest{OrganizationID: orgID})
	if err != nil {
		return nil, err
	}
	return resp.Interests, nil
}

func (c *ConnectClient) SubmitPartnershipApplication(ctx context.Context, req api.SubmitPartnershipApplicationRequest) (model.PartnershipApplication, error) {
	resp, err := call[api.SubmitPartnershipApplicationRequest, api.PartnershipApplicationResponse](ctx, c, api.SubmitPartnershipApplicationProcedure, &req)
	if err != nil {
		return model.PartnershipApplication{}, err
	}
	return resp.Application, nil
}

func (c *ConnectClient) DecidePartnershipApplication(ctx context.Context, id string, decision model.Decision) (model.PartnershipApplication, error) {
	resp, err := call[api.DecideRequest, api.PartnershipApplicationResponse](ctx, c, api.DecidePartnershipApplicationProcedure,
		&api.DecideRequest{ID: id, Decision: decision})
	if err != nil {
		return model.PartnershipApplication{}, err
	}
	return resp.Application, nil
}

func (c *ConnectClient) ListPartnershipApplications(ctx context.Context, orgID string) ([]model.PartnershipApplication, error) {
	resp, err := call[api.OrganizationRequest, api.ListPartnershipApplicationsResponse](ctx, c, api.ListPartnershipApplicationsProcedure,
		&api.OrganizationRequest{OrganizationID: orgID})
	if err != nil {
		return nil, err
	}
	return resp.Applications, nil
}

func (c *ConnectClient) CreateProject(ctx context.Context, req api.CreateProjectRequest) (model.Project, error) {
	return projectCall(ctx, c, api.CreateProjectProcedure, &req)
}

func (c *ConnectClient) SubmitProjectForPublish(ctx context.Context, projectID string) (model.Project, error) {
	return projectCall(ctx, c, api.SubmitProjectForPublishProcedure, &api.ProjectRequest{ProjectID: projectID})
}

func (c *ConnectClient) DecideProjectPublish(ctx context.Context, projectID string, decision model.Decision) (model.Project, error) {
	return projectCall(ctx, c, api.DecideProjectPublishProcedure, &api.DecideRequest{ID: projectID, Decision: decision})
}

func (c *ConnectClient) StartProject(ctx context.Context, projectID string) (model.Project, error) {
	return projectCall(ctx, c, api.StartProjectProcedure, &api.ProjectRequest{ProjectID: projectID})
}

func (c *ConnectClient) CompleteProject(ctx context.Context, projectID string) (model.Project, error) {
	return projectCall(ctx, c, api.CompleteProjectProcedure, &api.ProjectRequest{ProjectID: projectID})
}

func (c *ConnectClient) SetApplicationsEnabled(ctx context.Context, projectID string, enabled bool) (model.Project, error) {
	return projectCall(ctx, c, api.SetApplicationsEnabledProcedure, &api.SetApplicationsEnabledRequest{ProjectID: projectID, Enabled: enabled})
}

// projectCall performs one of the procedures that answer with a ProjectResponse.
func projectCall[Req any](ctx context.Context, c *ConnectClient, procedure string, req *Req) (model.Project, error) {
	resp, err := call[Req, api.ProjectResponse](ctx, c, procedure, req)
	if err != nil {
		return model.Project{}, err
	}
	return resp.Project, nil
}

func (c *ConnectClient) SubmitApplication(ctx context.Context, req api.SubmitApplicationRequest) (model.ProjectApplication, error) {
	resp, err := call[api.SubmitApplicationRequest, api.ApplicationResponse](ctx, c, api.SubmitApplicationProcedure, &req)
	if err != nil {
		return model.ProjectApplication{}, err
	}
	return resp.Application, nil
}

func (c *ConnectClient) DecideApplication(ctx context.Context, id string, decision model.Decision) (model.ProjectApplication, error) {
	resp, err := call[api.DecideRequest, api.ApplicationResponse](ctx, c, api.DecideApplicationProcedure,
		&api.DecideRequest{ID: id, Decision: decision})
	if err != nil {
		return model.ProjectApplication{}, err
	}
	return resp.Application, nil
}

func (c *ConnectClient) ListProjectApplications(ctx context.Context, projectID string) ([]model.ProjectApplication, error) {
	resp, err := call[api.ProjectRequest, api.ListProjectApplicationsResponse](ctx, c, api.ListProjectApplicationsProcedure,
		&api.ProjectRequest{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	return resp.Applications, nil
}

func (c *ConnectClient) MaterializeApplication(ctx context.Context, applicationID string) (model.Partnership, error) {
	resp, err := call[api.MaterializeApplicationRequest, api.PartnershipResponse](ctx, c, api.MaterializeApplicationProcedure,
		&api.MaterializeApplicationRequest{ApplicationID: applicationID})
	if err != nil {
		return model.Partnership{}, err
	}
	return resp.Partnership, nil
}

func (c *ConnectClient) CreatePartnership(ctx context.Context, req api.CreatePartnershipRequest) (model.Partnership, error) {
	resp, err := call[api.CreatePartnershipRequest, api.PartnershipResponse](ctx, c, api.CreatePartnershipProcedure, &req)
	if err != nil {
		return model.Partnership{}, err
	}
	return resp.Partnership, nil
}

func (c *ConnectClient) ListPartnerships(ctx context.Context, userID model.UserID) ([]model.PartnershipView, error) {
	resp, err := call[api.ListPartnershipsRequest, api.ListPartnershipsResponse](ctx, c, api.ListPartnershipsProcedure,
		&api.ListPartnershipsRequest{UserID: userID})
	if err != nil {
		return nil, err
	}
	return resp.Partnerships, nil
}

func (c *ConnectClient) PendingApprovals(ctx context.Context) (api.PendingApprovalsResponse, error) {
	resp, err := call[api.Empty, api.PendingApprovalsResponse](ctx, c, api.PendingApprovalsProcedure, &api.Empty{})
	if err != nil {
		return api.PendingApprovalsResponse{}, err
	}
	return *resp, nil
}

func (c *ConnectClient) GetSettings(ctx context.Context) (model.Settings, error) {
	resp, err := call[api.Empty, api.SettingsMessage](ctx, c, api.GetSettingsProcedure, &api.Empty{})
	if err != nil {
		return model.Settings{}, err
	}
	return resp.Settings, nil
}

func (c *ConnectClient) UpdateSettings(ctx context.Context, settings model.Settings) (model.Settings, error) {
	resp, err := call[api.SettingsMessage, api.SettingsMessage](ctx, c, api.UpdateSettingsProcedure, &api.SettingsMessage{Settings: settings})
	if err != nil {
		return model.Settings{}, err
	}
	return resp.Settings, nil
}

func (c *ConnectClient) ListNotifications(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	resp, err := call[api.ListNotificationsRequest, api.ListNotificationsResponse](ctx, c, api.ListNotificationsProcedure,
		&api.ListNotificationsRequest{UnreadOnly: unreadOnly})
	if err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

func (c *ConnectClient) MarkNotificationsRead(ctx context.Context, ids ...string) (int, error) {
	resp, err := call[api.MarkNotificationsReadRequest, api.MarkNotificationsReadResponse](ctx, c, api.MarkNotificationsReadProcedure,
		&api.MarkNotificationsReadRequest{IDs: ids})
	if err != nil {
		return 0, err
	}
	return resp.Marked, nil
}

var _ Client = (*ConnectClient)(nil)
