package engine

import (
	"context"
	"fmt"

	"github.com/mscno/collab/server/model"
)

// Store is the persistence collaborator. Update runs fn in a single atomic
// read-modify-write transaction; if fn returns an error nothing it wrote is kept.
// Implementations may re-run fn when a concurrent writer conflicts, so fn must not
// have effects outside tx.
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// Tx gives keyed and foreign-key access to every entity. Getters return an error
// wrapping ErrNotFound when the row does not exist, except Settings, which returns
// the zero value until settings are first stored. List order is unspecified.
type Tx interface {
	Settings() (model.Settings, error)
	PutSettings(s model.Settings) error

	Project(id string) (model.Project, error)
	PutProject(p model.Project) error
	ProjectsByStatus(status model.ProjectStatus) ([]model.Project, error)

	Organization(id string) (model.Organization, error)
	PutOrganization(o model.Organization) error
	OrganizationsByStatus(status model.OrganizationStatus) ([]model.Organization, error)

	Member(orgID string, userID model.UserID) (model.OrganizationMember, error)
	PutMember(m model.OrganizationMember) error
	MembersByOrganization(orgID string) ([]model.OrganizationMember, error)

	ProjectApplication(id string) (model.ProjectApplication, error)
	PutProjectApplication(a model.ProjectApplication) error
	ProjectApplicationsByUser(userID model.UserID) ([]model.ProjectApplication, error)
	ProjectApplicationsByProject(projectID string) ([]model.ProjectApplication, error)

	Partnership(id string) (model.Partnership, error)
	PartnershipByPair(projectID string, partnerID model.UserID) (model.Partnership, error)
	PutPartnership(p model.Partnership) error
	PartnershipsByPartner(partnerID model.UserID) ([]model.Partnership, error)
	PartnershipsByProject(projectID string) ([]model.Partnership, error)

	JoinRequest(id string) (model.OrganizationJoinRequest, error)
	PutJoinRequest(r model.OrganizationJoinRequest) error
	JoinRequestsByOrganization(orgID string) ([]model.OrganizationJoinRequest, error)

	Interest(id string) (model.PartnershipInterest, error)
	PutInterest(i model.PartnershipInterest) error
	InterestsByOrganization(orgID string) ([]model.PartnershipInterest, error)

	PartnershipApplication(id string) (model.PartnershipApplication, error)
	PutPartnershipApplication(a model.PartnershipApplication) error
	PartnershipApplicationsByOrganization(orgID string) ([]model.PartnershipApplication, error)

	PutNotification(n model.Notification) error
	NotificationsByUser(userID model.UserID) ([]model.Notification, error)
}

// Sentinels stores return for missing rows. They all match ErrNotFound.
var (
	ErrProjectNotFound                = fmt.Errorf("project %w", ErrNotFound)
	ErrOrganizationNotFound           = fmt.Errorf("organization %w", ErrNotFound)
	ErrMemberNotFound                 = fmt.Errorf("organization member %w", ErrNotFound)
	ErrApplicationNotFound            = fmt.Errorf("project application %w", ErrNotFound)
	ErrPartnershipNotFound            = fmt.Errorf("partnership %w", ErrNotFound)
	ErrJoinRequestNotFound            = fmt.Errorf("join request %w", ErrNotFound)
	ErrInterestNotFound               = fmt.Errorf("partnership interest %w", ErrNotFound)
	ErrPartnershipApplicationNotFound = fmt.Errorf("partnership application %w", ErrNotFound)
)
