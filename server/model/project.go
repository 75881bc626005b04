package model

import "time"

type ProjectStatus string

const (
	ProjectDraft          ProjectStatus = "draft"
	ProjectPendingPublish ProjectStatus = "pending_publish"
	ProjectPublished      ProjectStatus = "published"
	ProjectInProgress     ProjectStatus = "in-progress"
	ProjectCompleted      ProjectStatus = "completed"
)

// AcceptsApplications reports whether a project in this status can receive new
// applications at all. The per-project ApplicationsEnabled flag is checked separately.
func (s ProjectStatus) AcceptsApplications() bool {
	return s == ProjectPublished || s == ProjectInProgress
}

// PartnershipType is the kind of contribution a partner offers.
type PartnershipType string

const (
	PartnershipSkilled     PartnershipType = "skilled"
	PartnershipFinancial   PartnershipType = "financial"
	PartnershipMaterial    PartnershipType = "material"
	PartnershipVenue       PartnershipType = "venue"
	PartnershipPromotional PartnershipType = "promotional"
	PartnershipVolunteer   PartnershipType = "volunteer"
)

var partnershipTypes = map[PartnershipType]bool{
	PartnershipSkilled:     true,
	PartnershipFinancial:   true,
	PartnershipMaterial:    true,
	PartnershipVenue:       true,
	PartnershipPromotional: true,
	PartnershipVolunteer:   true,
}

func (t PartnershipType) Valid() bool {
	return partnershipTypes[t]
}

// Project is created by an organizer and collects partnership applications.
// CompletedAt is non-zero iff Status is ProjectCompleted.
type Project struct {
	ID                     string            `json:"id"`
	OrganizerID            UserID            `json:"organizer_id"`
	OrganizationID         string            `json:"organization_id,omitempty"`
	Title                  string            `json:"title"`
	Description            string            `json:"description,omitempty" datastore:",noindex"`
	Status                 ProjectStatus     `json:"status"`
	ApplicationsEnabled    bool              `json:"applications_enabled"`
	PartnershipTypesSought []PartnershipType `json:"partnership_types_sought,omitempty"`
	CompletedAt            time.Time         `json:"completed_at,omitempty"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

// ProjectApplication is a user's request to partner on a project. A rejected
// application is never resurrected; re-applying creates a new row.
type ProjectApplication struct {
	ID              string          `json:"id"`
	ProjectID       string          `json:"project_id"`
	UserID          UserID          `json:"user_id"`
	OrganizationID  string          `json:"organization_id,omitempty"` // "applying as" context
	PartnershipType PartnershipType `json:"partnership_type"`
	Message         string          `json:"message,omitempty" datastore:",noindex"`
	Status          RequestStatus   `json:"status"`
	DecidedBy       UserID          `json:"decided_by,omitempty"`
	DecidedAt       time.Time       `json:"decided_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
