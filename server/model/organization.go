package model

import "time"

// OrganizationStatus is decided at creation time by the auto-approval policy and
// possibly overridden once by an admin.
type OrganizationStatus string

const (
	OrganizationPendingApproval OrganizationStatus = "pending_approval"
	OrganizationActive          OrganizationStatus = "active"
	OrganizationRejected        OrganizationStatus = "rejected"
)

// MemberRole is the role a user holds inside an organization.
type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleMember MemberRole = "member"
)

// Organization is a group of users that can run projects and publish partnership interests.
type Organization struct {
	ID          string             `json:"id"`
	OwnerID     UserID             `json:"owner_id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty" datastore:",noindex"`
	Status      OrganizationStatus `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// OrganizationMember links a user to an organization. The creator is stored as owner.
type OrganizationMember struct {
	OrganizationID string     `json:"organization_id"`
	UserID         UserID     `json:"user_id"`
	Role           MemberRole `json:"role"`
	JoinedAt       time.Time  `json:"joined_at"`
}

// OrganizationJoinRequest is a user's request to become a member of an organization.
type OrganizationJoinRequest struct {
	ID             string        `json:"id"`
	OrganizationID string        `json:"organization_id"`
	UserID         UserID        `json:"user_id"`
	Message        string        `json:"message,omitempty" datastore:",noindex"`
	Status         RequestStatus `json:"status"`
	DecidedBy      UserID        `json:"decided_by,omitempty"`
	DecidedAt      time.Time     `json:"decided_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// PartnershipInterest is an organization's standing call for partners.
type PartnershipInterest struct {
	ID              string          `json:"id"`
	OrganizationID  string          `json:"organization_id"`
	PartnershipType PartnershipType `json:"partnership_type"`
	Description     string          `json:"description,omitempty" datastore:",noindex"`
	Open            bool            `json:"open"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PartnershipApplication applies against a PartnershipInterest. It mirrors the
// ProjectApplication flow at organization scope.
type PartnershipApplication struct {
	ID              string          `json:"id"`
	OrganizationID  string          `json:"organization_id"`
	InterestID      string          `json:"interest_id"`
	UserID          UserID          `json:"user_id"`
	PartnershipType PartnershipType `json:"partnership_type"`
	ProjectID       string          `json:"project_id,omitempty"`
	Message         string          `json:"message,omitempty" datastore:",noindex"`
	Status          RequestStatus   `json:"status"`
	DecidedBy       UserID          `json:"decided_by,omitempty"`
	DecidedAt       time.Time       `json:"decided_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
