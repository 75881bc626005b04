package server

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/mscno/collab/pkg/api"
	"github.com/mscno/collab/server/engine"
	"github.com/mscno/collab/server/middleware"
	"github.com/mscno/collab/server/model"
)

// Server exposes the engine as the collab Connect service and a few REST read routes.
// Every procedure needs a session; the engine decides what the caller may do.
type Server struct {
	engine *engine.Engine
	logger *slog.Logger
}

func NewServer(e *engine.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: e, logger: logger}
}

type unaryFunc[Req, Res any] func(ctx context.Context, actor model.Actor, req *Req) (*Res, error)

func handle[Req, Res any](cs *ConnectServer, s *Server, procedure string, fn unaryFunc[Req, Res]) {
	cs.Handle(procedure, connect.NewUnaryHandler(procedure,
		func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error) {
			actor, ok := middleware.ActorFrom(ctx)
			if !ok {
				return nil, s.connectError(ctx, procedure, errNoSession)
			}
			res, err := fn(ctx, actor, req.Msg)
			if err != nil {
				return nil, s.connectError(ctx, procedure, err)
			}
			return connect.NewResponse(res), nil
		},
		connect.WithCodec(api.Codec{}),
	))
}

// Register mounts every procedure and REST route on cs. Middleware must be added first.
func (s *Server) Register(cs *ConnectServer) {
	handle(cs, s, api.CreateOrganizationProcedure, s.CreateOrganization)
	handle(cs, s, api.DecideOrganizationApprovalProcedure, s.DecideOrganizationApproval)
	handle(cs, s, api.SubmitJoinRequestProcedure, s.SubmitJoinRequest)
	handle(cs, s, api.DecideJoinRequestProcedure, s.DecideJoinRequest)
	handle(cs, s, api.ListJoinRequestsProcedure, s.ListJoinRequests)
	handle(cs, s, api.CreatePartnershipInterestProcedure, s.CreatePartnershipInterest)
	handle(cs, s, api.ListPartnershipInterestsProcedure, s.ListPartnershipInterests)
	handle(cs, s, api.SubmitPartnershipApplicationProcedure, s.SubmitPartnershipApplication)
	handle(cs, s, api.DecidePartnershipApplicationProcedure, s.DecidePartnershipApplication)
	handle(cs, s, api.ListPartnershipApplicationsProcedure, s.ListPartnershipApplications)
	handle(cs, s, api.CreateProjectProcedure, s.CreateProject)
	handle(cs, s, api.SubmitProjectForPublishProcedure, s.SubmitProjectForPublish)
	handle(cs, s, api.DecideProjectPublishProcedure, s.DecideProjectPublish)
	handle(cs, s, api.StartProjectProcedure, s.StartProject)
	handle(cs, s, api.CompleteProjectProcedure, s.CompleteProject)
	handle(cs, s, api.SetApplicationsEnabledProcedure, s.SetApplicationsEnabled)
	handle(cs, s, api.SubmitApplicationProcedure, s.SubmitApplication)
	handle(cs, s, api.DecideApplicationProcedure, s.DecideApplication)
	handle(cs, s, api.ListProjectApplicationsProcedure, s.ListProjectApplications)
	handle(cs, s, api.MaterializeApplicationProcedure, s.MaterializeApplication)
	handle(cs, s, api.CreatePartnershipProcedure, s.CreatePartnership)
	handle(cs, s, api.ListPartnershipsProcedure, s.ListPartnerships)
	handle(cs, s, api.PendingApprovalsProcedure, s.PendingApprovals)
	handle(cs, s, api.GetSettingsProcedure, s.GetSettings)
	handle(cs, s, api.UpdateSettingsProcedure, s.UpdateSettings)
	handle(cs, s, api.ListNotificationsProcedure, s.ListNotifications)
	handle(cs, s, api.MarkNotificationsReadProcedure, s.MarkNotificationsRead)

	s.registerRoutes(cs)
}

func (s *Server) CreateOrganization(ctx context.Context, actor model.Actor, req *api.CreateOrganizationRequest) (*api.OrganizationResponse, error) {
	org, err := s.engine.CreateOrganization(ctx, actor, engine.CreateOrganizationInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}
	return &api.OrganizationResponse{Organization: org}, nil
}

func (s *Server) DecideOrganizationApproval(ctx context.Context, actor model.Actor, req *api.DecideRequest) (*api.OrganizationResponse, error) {
	org, err := s.engine.DecideOrganizationApproval(ctx, actor, req.ID, req.Decision)
	if err != nil {
		return nil, err
	}
	return &api.OrganizationResponse{Organization: org}, nil
}

func (s *Server) SubmitJoinRequest(ctx context.Context, actor model.Actor, req *api.SubmitJoinRequestRequest) (*api.JoinRequestResponse, error) {
	jr, err := s.engine.SubmitJoinRequest(ctx, actor, req.OrganizationID, req.Message)
	if err != nil {
		return nil, err
	}
	return &api.JoinRequestResponse{JoinRequest: jr}, nil
}

func (s *Server) DecideJoinRequest(ctx context.Context, actor model.Actor, req *api.DecideRequest) (*api.JoinRequestResponse, error) {
	jr, err := s.engine.DecideJoinRequest(ctx, actor, req.ID, req.Decision)
	if err != nil {
		return nil, err
	}
	return &api.JoinRequestResponse{JoinRequest: jr}, nil
}

func (s *Server) ListJoinRequests(ctx context.Context, actor model.Actor, req *api.OrganizationRequest) (*api.ListJoinRequestsResponse, error) {
	rows, err := s.engine.ListJoinRequests(ctx, actor, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &api.ListJoinRequestsResponse{JoinRequests: rows}, nil
}

func (s *Server) CreatePartnershipInterest(ctx context.Context, actor model.Actor, req *api.CreatePartnershipInterestRequest) (*api.PartnershipInterestResponse, error) {
	interest, err := s.engine.CreatePartnershipInterest(ctx, actor, engine.CreatePartnershipInterestInput{
		OrganizationID:  req.OrganizationID,
		PartnershipType: req.PartnershipType,
		Description:     req.Description,
	})
	if err != nil {
		return nil, err
	}
	return &api.PartnershipInterestResponse{Interest: interest}, nil
}

func (s *Server) ListPartnershipInterests(ctx context.Context, _ model.Actor, req *api.OrganizationRequest) (*api.ListPartnershipInterestsResponse, error) {
	rows, err := s.engine.ListPartnershipInterests(ctx, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &api.ListPartnershipInterestsResponse{Interests: rows}, nil
}

func (s *Server) SubmitPartnershipApplication(ctx context.Context, actor model.Actor, req *api.SubmitPartnershipApplicationRequest) (*api.PartnershipApplicationResponse, error) {
	app, err := s.engine.SubmitPartnershipApplication(ctx, actor, engine.SubmitPartnershipApplicationInput{
		InterestID: req.InterestID,
		ProjectID:  req.ProjectID,
		Message:    req.Message,
	})
	if err != nil {
		return nil, err
	}
	return &api.PartnershipApplicationResponse{Application: app}, nil
}

func (s *Server) DecidePartnershipApplication(ctx context.Context, actor model.Actor, req *api.DecideRequest) (*api.PartnershipApplicationResponse, error) {
	app, err := s.engine.DecidePartnershipApplication(ctx, actor, req.ID, req.Decision)
	if err != nil {
		return nil, err
	}
	return &api.PartnershipApplicationResponse{Application: app}, nil
}

func (s *Server) ListPartnershipApplications(ctx context.Context, actor model.Actor, req *api.OrganizationRequest) (*api.ListPartnershipApplicationsResponse, error) {
	rows, err := s.engine.ListPartnershipApplications(ctx, actor, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &api.ListPartnershipApplicationsResponse{Applications: rows}, nil
}

func (s *Server) CreateProject(ctx context.Context, actor model.Actor, req *api.CreateProjectRequest) (*api.ProjectResponse, error) {
	p, err := s.engine.CreateProject(ctx, actor, engine.CreateProjectInput{
		OrganizationID:         req.OrganizationID,
		Title:                  req.Title,
		Description:            req.Description,
		PartnershipTypesSought: req.PartnershipTypesSought,
		ApplicationsEnabled:    req.ApplicationsEnabled,
		Publish:                req.Publish,
	})
	return projectResponse(p, err)
}

func (s *Server) SubmitProjectForPublish(ctx context.Context, actor model.Actor, req *api.ProjectRequest) (*api.ProjectResponse, error) {
	return projectResponse(s.engine.SubmitProjectForPublish(ctx, actor, req.ProjectID))
}

func (s *Server) DecideProjectPublish(ctx context.Context, actor model.Actor, req *api.DecideRequest) (*api.ProjectResponse, error) {
	return projectResponse(s.engine.DecideProjectPublish(ctx, actor, req.ID, req.Decision))
}

func (s *Server) StartProject(ctx context.Context, actor model.Actor, req *api.ProjectRequest) (*api.ProjectResponse, error) {
	return projectResponse(s.engine.StartProject(ctx, actor, req.ProjectID))
}

func (s *Server) CompleteProject(ctx context.Context, actor model.Actor, req *api.ProjectRequest) (*api.ProjectResponse, error) {
	return projectResponse(s.engine.CompleteProject(ctx, actor, req.ProjectID))
}

func (s *Server) SetApplicationsEnabled(ctx context.Context, actor model.Actor, req *api.SetApplicationsEnabledRequest) (*api.ProjectResponse, error) {
	return projectResponse(s.engine.SetApplicationsEnabled(ctx, actor, req.ProjectID, req.Enabled))
}

func projectResponse(p model.Project, err error) (*api.ProjectResponse, error) {
	if err != nil {
		return nil, err
	}
	return &api.ProjectResponse{Project: p}, nil
}

func (s *Server) SubmitApplication(ctx context.Context, actor model.Actor, req *api.SubmitApplicationRequest) (*api.ApplicationResponse, error) {
	app, err := s.engine.SubmitApplication(ctx, actor, engine.SubmitApplicationInput{
		ProjectID:       req.ProjectID,
		OrganizationID:  req.OrganizationID,
		PartnershipType: req.PartnershipType,
		Message:         req.Message,
	})
	if err != nil {
		return nil, err
	}
	return &api.ApplicationResponse{Application: app}, nil
}

func (s *Server) DecideApplication(ctx context.Context, actor model.Actor, req *api.DecideRequest) (*api.ApplicationResponse, error) {
	app, err := s.engine.DecideApplication(ctx, actor, req.ID, req.Decision)
	if err != nil {
		return nil, err
	}
	return &api.ApplicationResponse{Application: app}, nil
}

func (s *Server) ListProjectApplications(ctx context.Context, actor model.Actor, req *api.ProjectRequest) (*api.ListProjectApplicationsResponse, error) {
	rows, err := s.engine.ListProjectApplications(ctx, actor, req.ProjectID)
	if err != nil {
		return nil, err
	}
	return &api.ListProjectApplicationsResponse{Applications: rows}, nil
}

func (s *Server) MaterializeApplication(ctx context.Context, actor model.Actor, req *api.MaterializeApplicationRequest) (*api.PartnershipResponse, error) {
	p, err := s.engine.MaterializeApplication(ctx, actor, req.ApplicationID)
	if err != nil {
		return nil, err
	}
	return &api.PartnershipResponse{Partnership: p}, nil
}

func (s *Server) CreatePartnership(ctx context.Context, actor model.Actor, req *api.CreatePartnershipRequest) (*api.PartnershipResponse, error) {
	p, err := s.engine.CreatePartnership(ctx, actor, engine.CreatePartnershipInput{
		ProjectID:       req.ProjectID,
		PartnerID:       req.PartnerID,
		OrganizationID:  req.OrganizationID,
		PartnershipType: req.PartnershipType,
		Status:          req.Status,
	})
	if err != nil {
		return nil, err
	}
	return &api.PartnershipResponse{Partnership: p}, nil
}

// ListPartnerships returns the effective partner list of the caller, or of
// req.UserID for admins.
func (s *Server) ListPartnerships(ctx context.Context, actor model.Actor, req *api.ListPartnershipsRequest) (*api.ListPartnershipsResponse, error) {
	views, err := s.engine.ListPartnerships(ctx, actor, req.UserID)
	if err != nil {
		return nil, err
	}
	return &api.ListPartnershipsResponse{Partnerships: views}, nil
}

func (s *Server) PendingApprovals(ctx context.Context, actor model.Actor, _ *api.Empty) (*api.PendingApprovalsResponse, error) {
	pending, err := s.engine.PendingApprovalsForAdmin(ctx, actor)
	if err != nil {
		return nil, err
	}
	return &api.PendingApprovalsResponse{Projects: pending.Projects, Organizations: pending.Organizations}, nil
}

func (s *Server) GetSettings(ctx context.Context, _ model.Actor, _ *api.Empty) (*api.SettingsMessage, error) {
	settings, err := s.engine.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return &api.SettingsMessage{Settings: settings}, nil
}

func (s *Server) UpdateSettings(ctx context.Context, actor model.Actor, req *api.SettingsMessage) (*api.SettingsMessage, error) {
	settings, err := s.engine.UpdateSettings(ctx, actor, req.Settings)
	if err != nil {
		return nil, err
	}
	return &api.SettingsMessage{Settings: settings}, nil
}

func (s *Server) ListNotifications(ctx context.Context, actor model.Actor, req *api.ListNotificationsRequest) (*api.ListNotificationsResponse, error) {
	notes, err := s.engine.ListNotifications(ctx, actor, req.UnreadOnly)
	if err != nil {
		return nil, err
	}
	return &api.ListNotificationsResponse{Notifications: notes}, nil
}

func (s *Server) MarkNotificationsRead(ctx context.Context, actor model.Actor, req *api.MarkNotificationsReadRequest) (*api.MarkNotificationsReadResponse, error) {
	n, err := s.engine.MarkNotificationsRead(ctx, actor, req.IDs...)
	if err != nil {
		return nil, err
	}
	return &api.MarkNotificationsReadResponse{Marked: n}, nil
}
