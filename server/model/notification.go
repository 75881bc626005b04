package model

import "time"

// Notification is write-once except for Read, which only the recipient flips.
type Notification struct {
	ID        string    `json:"id"`
	UserID    UserID    `json:"user_id"`
	Title     string    `json:"title" datastore:",noindex"`
	Message   string    `json:"message" datastore:",noindex"`
	Link      string    `json:"link,omitempty" datastore:",noindex"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Settings is the admin-controlled SystemSettings record.
type Settings struct {
	AutoApproveOrganizations bool      `json:"auto_approve_organizations" yaml:"auto_approve_organizations"`
	AutoApproveProjects      bool      `json:"auto_approve_projects" yaml:"auto_approve_projects"`
	RequireProjectApproval   bool      `json:"require_project_approval" yaml:"require_project_approval"`
	UpdatedAt                time.Time `json:"updated_at" yaml:"-"`
}
