package engine

import (
	"testing"
	"time"

	"github.com/mscno/collab/server/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(minute int) time.Time {
	return time.Date(2025, 2, 1, 10, minute, 0, 0, time.UTC)
}

func TestReconcile_SynthesizesFromApprovedApplication(t *testing.T) {
	apps := []model.ProjectApplication{
		{ID: "a1", ProjectID: "p1", UserID: "u", PartnershipType: model.PartnershipSkilled, Status: model.RequestApproved, CreatedAt: at(1)},
	}
	projects := map[string]model.Project{"p1": {ID: "p1", Title: "Garden", Status: model.ProjectPublished}}

	views := reconcilePartnerships(nil, apps, projects)
	require.Len(t, views, 1)
	assert.Equal(t, model.PartnershipView{
		ProjectID:       "p1",
		ProjectTitle:    "Garden",
		PartnerID:       "u",
		PartnershipType: model.PartnershipSkilled,
		Status:          model.PartnershipActive,
		Source:          model.SourceApplication,
		ApplicationID:   "a1",
		CreatedAt:       at(1),
	}, views[0])
}

func TestReconcile_PartnershipRowWins(t *testing.T) {
	rows := []model.Partnership{
		{ID: "ps1", ProjectID: "p1", PartnerID: "u", Status: model.PartnershipPending, CreatedAt: at(1)},
	}
	apps := []model.ProjectApplication{
		{ID: "a1", ProjectID: "p1", UserID: "u", Status: model.RequestApproved, CreatedAt: at(2)},
		{ID: "a2", ProjectID: "p2", UserID: "u", Status: model.RequestApproved, CreatedAt: at(3)},
	}
	views := reconcilePartnerships(rows, apps, nil)
	require.Len(t, views, 2)
	assert.Equal(t, model.SourcePartnership, views[0].Source)
	assert.Equal(t, "ps1", views[0].PartnershipID)
	assert.Equal(t, model.PartnershipPending, views[0].Status)
	assert.Equal(t, model.SourceApplication, views[1].Source)
	assert.Equal(t, "p2", views[1].ProjectID)
}

func TestReconcile_OrderAndUniqueness(t *testing.T) {
	rows := []model.Partnership{
		{ID: "ps-old", ProjectID: "p1", PartnerID: "u", Status: model.PartnershipRejected, CreatedAt: at(1)},
		{ID: "ps-b", ProjectID: "p2", PartnerID: "u", Status: model.PartnershipActive, CreatedAt: at(5)},
		{ID: "ps-new", ProjectID: "p1", PartnerID: "u", Status: model.PartnershipActive, CreatedAt: at(4)},
	}
	apps := []model.ProjectApplication{
		{ID: "a3", ProjectID: "p3", UserID: "u", Status: model.RequestApproved, CreatedAt: at(2)},
		{ID: "a4", ProjectID: "p4", UserID: "u", Status: model.RequestApproved, CreatedAt: at(6)},
		{ID: "a5", ProjectID: "p4", UserID: "u", Status: model.RequestApproved, CreatedAt: at(3)},
	}
	views := reconcilePartnerships(rows, apps, nil)

	var order []string
	seen := map[string]bool{}
	for _, v := range views {
		assert.False(t, seen[v.ProjectID], "duplicate project %s", v.ProjectID)
		seen[v.ProjectID] = true
		order = append(order, v.ProjectID)
	}
	assert.Equal(t, []string{"p2", "p1", "p4", "p3"}, order)
	assert.Equal(t, "ps-new", views[1].PartnershipID, "newest row wins for a project")
	assert.Equal(t, "a4", views[2].ApplicationID)
}

func TestReconcile_CompletedOverlay(t *testing.T) {
	rows := []model.Partnership{
		{ID: "ps1", ProjectID: "done", PartnerID: "u", Status: model.PartnershipPending, CreatedAt: at(1)},
		{ID: "ps2", ProjectID: "live", PartnerID: "u", Status: model.PartnershipActive, CreatedAt: at(2)},
	}
	apps := []model.ProjectApplication{
		{ID: "a1", ProjectID: "done-too", UserID: "u", Status: model.RequestApproved, CreatedAt: at(3)},
	}
	projects := map[string]model.Project{
		"done":     {ID: "done", Status: model.ProjectCompleted, CompletedAt: at(9)},
		"live":     {ID: "live", Status: model.ProjectInProgress},
		"done-too": {ID: "done-too", Status: model.ProjectCompleted, CompletedAt: at(9)},
	}
	views := reconcilePartnerships(rows, apps, projects)
	require.Len(t, views, 3)
	status := map[string]model.PartnershipStatus{}
	for _, v := range views {
		status[v.ProjectID] = v.Status
	}
	assert.Equal(t, model.PartnershipCompleted, status["done"])
	assert.Equal(t, model.PartnershipActive, status["live"])
	assert.Equal(t, model.PartnershipCompleted, status["done-too"])
}

func TestSynthesizedStatus(t *testing.T) {
	assert.Equal(t, model.PartnershipActive, synthesizedStatus(model.RequestApproved))
	assert.Equal(t, model.PartnershipPending, synthesizedStatus(model.RequestPending))
	assert.Equal(t, model.PartnershipRejected, synthesizedStatus(model.RequestRejected))
}

func TestReconcile_DoesNotMutateInput(t *testing.T) {
	rows := []model.Partnership{
		{ID: "b", ProjectID: "p1", CreatedAt: at(1)},
		{ID: "a", ProjectID: "p2", CreatedAt: at(2)},
	}
	_ = reconcilePartnerships(rows, nil, nil)
	assert.Equal(t, "b", rows[0].ID)
}
