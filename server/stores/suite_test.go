package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mscno/collab/server/engine"
	"github.com/mscno/collab/server/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreSuite checks the engine.Store contract against a fresh, empty store.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) engine.Store) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("settings default to zero", func(t *testing.T) {
		s := newStore(t)
		err := s.View(context.Background(), func(tx engine.Tx) error {
			got, err := tx.Settings()
			require.NoError(t, err)
			assert.Equal(t, model.Settings{}, got)
			return nil
		})
		require.NoError(t, err)

		want := model.Settings{AutoApproveOrganizations: true, RequireProjectApproval: true, UpdatedAt: ts}
		require.NoError(t, s.Update(context.Background(), func(tx engine.Tx) error {
			return tx.PutSettings(want)
		}))
		require.NoError(t, s.View(context.Background(), func(tx engine.Tx) error {
			got, err := tx.Settings()
			require.NoError(t, err)
			assert.True(t, got.AutoApproveOrganizations)
			assert.False(t, got.AutoApproveProjects)
			assert.True(t, got.RequireProjectApproval)
			assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
			return nil
		}))
	})

	t.Run("not found sentinels", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.View(context.Background(), func(tx engine.Tx) error {
			_, err := tx.Project("missing")
			assert.ErrorIs(t, err, engine.ErrProjectNotFound)
			assert.ErrorIs(t, err, engine.ErrNotFound)
			_, err = tx.Organization("missing")
			assert.ErrorIs(t, err, engine.ErrOrganizationNotFound)
			_, err = tx.Member("org", "user")
			assert.ErrorIs(t, err, engine.ErrMemberNotFound)
			_, err = tx.ProjectApplication("missing")
			assert.ErrorIs(t, err, engine.ErrApplicationNotFound)
			_, err = tx.PartnershipByPair("p", "u")
			assert.ErrorIs(t, err, engine.ErrPartnershipNotFound)
			_, err = tx.JoinRequest("missing")
			assert.ErrorIs(t, err, engine.ErrJoinRequestNotFound)
			_, err = tx.Interest("missing")
			assert.ErrorIs(t, err, engine.ErrInterestNotFound)
			_, err = tx.PartnershipApplication("missing")
			assert.ErrorIs(t, err, engine.ErrPartnershipApplicationNotFound)
			return nil
		}))
	})

	t.Run("failed update keeps nothing", func(t *testing.T) {
		s := newStore(t)
		boom := errors.New("boom")
		err := s.Update(context.Background(), func(tx engine.Tx) error {
			if err := tx.PutProject(model.Project{ID: "p1", Title: "Garden", Status: model.ProjectDraft, CreatedAt: ts}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)
		require.NoError(t, s.View(context.Background(), func(tx engine.Tx) error {
			_, err := tx.Project("p1")
			assert.ErrorIs(t, err, engine.ErrNotFound)
			return nil
		}))
	})

	t.Run("view is read only", func(t *testing.T) {
		s := newStore(t)
		err := s.View(context.Background(), func(tx engine.Tx) error {
			return tx.PutOrganization(model.Organization{ID: "o1", Name: "Org"})
		})
		require.Error(t, err)
	})

	t.Run("projects and organizations by status", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Update(context.Background(), func(tx engine.Tx) error {
			for _, p := range []model.Project{
				{ID: "p1", Title: "One", Status: model.ProjectPendingPublish, PartnershipTypesSought: []model.PartnershipType{model.PartnershipSkilled, model.PartnershipVenue}, CreatedAt: ts},
				{ID: "p2", Title: "Two", Status: model.ProjectDraft, CreatedAt: ts},
				{ID: "p3", Title: "Three", Status: model.ProjectPendingPublish, CreatedAt: ts},
			} {
				if err := tx.PutProject(p); err != nil {
					return err
				}
			}
			if err := tx.PutOrganization(model.Organization{ID: "o1", Name: "A", Status: model.OrganizationPendingApproval, CreatedAt: ts}); err != nil {
				return err
			}
			return tx.PutOrganization(model.Organization{ID: "o2", Name: "B", Status: model.OrganizationActive, CreatedAt: ts})
		}))
		require.NoError(t, s.View(context.Background(), func(tx engine.Tx) error {
			pending, err := tx.ProjectsByStatus(model.ProjectPendingPublish)
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"p1", "p3"}, projectIDsOf(pending))

			p1, err := tx.Project("p1")
			require.NoError(t, err)
			assert.Equal(t, []model.PartnershipType{model.PartnershipSkilled, model.PartnershipVenue}, p1.PartnershipTypesSought)

			orgs, err := tx.OrganizationsByStatus(model.OrganizationPendingApproval)
			require.NoError(t, err)
			require.Len(t, orgs, 1)
			assert.Equal(t, "o1", orgs[0].ID)
			return nil
		}))
	})

	t.Run("members by organization", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Update(context.Background(), func(tx engine.Tx) error {
			for _, m := range []model.OrganizationMember{
				{OrganizationID: "o1", UserID: "alice", Role: model.RoleOwner, JoinedAt: ts},
				{OrganizationID: "o1", UserID: "bob", Role: model.RoleMember, JoinedAt: ts},
				{OrganizationID: "o10", UserID: "carol", Role: model.RoleOwner, JoinedAt: ts},
			} {
				if err := tx.PutMember(m); err != nil {
					return err
				}
			}
			return nil
		}))
		require.NoError(t, s.View(context.Background(), func(tx engine.Tx) error {
			members, err := tx.MembersByOrganization("o1")
			require.NoError(t, err)
			assert.Len(t, members, 2)
			m, err := tx.Member("o1", "bob")
			require.NoError(t, err)
			assert.Equal(t, model.RoleMember, m.Role)
			return nil
		}))
	})

	t.Run("partnership pair lookup", func(t *testing.T) {
		s := newStore(t)
		p := model.Partnership{ID: "ps1", ProjectID: "p1", PartnerID: "u1", PartnershipType: model.PartnershipSkilled, Status: model.PartnershipPending, CreatedAt: ts, UpdatedAt: ts}
		require.NoError(t, s.Update(context.Background(), func(tx engine.Tx) error {
			if err := tx.PutPartnership(p); err != nil {
				return err
			}
			return tx.PutPartnership(model.Partnership{ID: "ps2", ProjectID: "p2", PartnerID: "u1", Status: model.PartnershipActive, CreatedAt: ts, UpdatedAt: ts})
		}))
		require.NoError(t, s.Update(context.Background(), func(tx engine.Tx) error {
			got, err := tx.PartnershipByPair("p1", "u1")
			require.NoError(t, err)
			assert.Equal(t, "ps1", got.ID)
			got.Status = model.PartnershipActive
			return tx.PutPartnership(got)
		}))
		require.NoError(t, s.View(context.Background(), func(tx engine.Tx) error {
			got, err := tx.PartnershipByPair("p1", "u1")
			require.NoError(t, err)
			assert.Equal(t, model.PartnershipActive, got.Status)

			byPartner, err := tx.PartnershipsByPartner("u1")
			require.NoError(t, err)
			assert.Len(t, byPartner, 2)

			byProject, err := tx.PartnershipsByProject("p2")
			require.NoError(t, err)
			require.Len(t, byProject, 1)
			assert.Equal(t, "ps2", byProject[0].ID)

			_, err = tx.PartnershipByPair("p1", "u2")
			assert.ErrorIs(t, err, engine.ErrNotFound)
			return nil
		}))
	})

	t.Run("requests by foreign key", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Update(context.Background(), func(tx engine.Tx) error {
			steps := []func() error{
				func() error {
					return tx.PutProjectApplication(model.ProjectApplication{ID: "a1", ProjectID: "p1", UserID: "u1", Status: model.RequestPending, CreatedAt: ts})
				},
				func() error {
					return tx.PutProjectApplication(model.ProjectApplication{ID: "a2", ProjectID: "p1", UserID: "u2", Status: model.RequestApproved, CreatedAt: ts})
				},
				func() error {
					return tx.PutJoinRequest(model.OrganizationJoinRequest{ID: "j1", OrganizationID: "o1", UserID: "u1", Status: model.RequestPending, CreatedAt: ts})
				},
				func() error {
					return tx.PutInterest(model.PartnershipInterest{ID: "i1", OrganizationID: "o1", PartnershipType: model.PartnershipFinancial, Open: true, CreatedAt: ts})
				},
				func() error {
					return tx.PutPartnershipApplication(model.PartnershipApplication{ID: "pa1", OrganizationID: "o1", InterestID: "i1", UserID: "u3", Status: model.RequestPending, CreatedAt: ts})
				},
				func() error {
					return tx.PutNotification(model.Notification{ID: "n1", UserID: "u1", Title: "hi", CreatedAt: ts})
				},
			}
			for _, step := range steps {
				if err := step(); err != nil {
					return err
				}
			}
			return nil
		}))
		require.NoError(t, s.View(context.Background(), func(tx engine.Tx) error {
			byProject, err := tx.ProjectApplicationsByProject("p1")
			require.NoError(t, err)
			assert.Len(t, byProject, 2)
			byUser, err := tx.ProjectApplicationsByUser("u2")
			require.NoError(t, err)
			require.Len(t, byUser, 1)
			assert.Equal(t, model.RequestApproved, byUser[0].Status)

			reqs, err := tx.JoinRequestsByOrganization("o1")
			require.NoError(t, err)
			assert.Len(t, reqs, 1)
			interests, err := tx.InterestsByOrganization("o1")
			require.NoError(t, err)
			require.Len(t, interests, 1)
			assert.True(t, interests[0].Open)
			orgApps, err := tx.PartnershipApplicationsByOrganization("o1")
			require.NoError(t, err)
			assert.Len(t, orgApps, 1)
			notes, err := tx.NotificationsByUser("u1")
			require.NoError(t, err)
			assert.Len(t, notes, 1)
			return nil
		}))
	})
}

func projectIDsOf(projects []model.Project) []string {
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	return ids
}
