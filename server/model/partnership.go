package model

import "time"

type PartnershipStatus string

const (
	PartnershipPending   PartnershipStatus = "pending"
	PartnershipActive    PartnershipStatus = "active"
	PartnershipCompleted PartnershipStatus = "completed"
	PartnershipRejected  PartnershipStatus = "rejected"
)

// Partnership is the durable record of an accepted collaboration between a user and
// a project. At most one exists per (ProjectID, PartnerID); the engine enforces it.
type Partnership struct {
	ID              string            `json:"id"`
	ProjectID       string            `json:"project_id"`
	PartnerID       UserID            `json:"partner_id"`
	OrganizationID  string            `json:"organization_id,omitempty"`
	PartnershipType PartnershipType   `json:"partnership_type"`
	Status          PartnershipStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ViewSource tells where a PartnershipView came from.
type ViewSource string

const (
	SourcePartnership ViewSource = "partnership"
	SourceApplication ViewSource = "application"
)

// PartnershipView is one entry of a user's effective partner list.
type PartnershipView struct {
	ProjectID       string            `json:"project_id"`
	ProjectTitle    string            `json:"project_title,omitempty"`
	PartnerID       UserID            `json:"partner_id"`
	OrganizationID  string            `json:"organization_id,omitempty"`
	PartnershipType PartnershipType   `json:"partnership_type"`
	Status          PartnershipStatus `json:"status"`
	Source          ViewSource        `json:"source"`
	PartnershipID   string            `json:"partnership_id,omitempty"`
	ApplicationID   string            `json:"application_id,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}
