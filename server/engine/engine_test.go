package engine_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mscno/collab/server/engine"
	"github.com/mscno/collab/server/model"
	"github.com/mscno/collab/server/stores"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin     = model.Actor{UserID: "admin", Admin: true}
	organizer = model.Actor{UserID: "olivia"}
	applicant = model.Actor{UserID: "uma"}
	stranger  = model.Actor{UserID: "sam"}
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []model.Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, n model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) to(user model.UserID) []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, n := range r.sent {
		if n.UserID == user {
			out = append(out, n)
		}
	}
	return out
}

type fixture struct {
	engine   *engine.Engine
	store    engine.Store
	notifier *recordingNotifier
}

// newFixture builds an engine over a memory store with a clock that advances one
// second per call and sequential ids.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, stores.NewMemoryStore())
}

func newBoltFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := stores.OpenBoltStore(filepath.Join(t.TempDir(), "collab.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return newFixtureWithStore(t, store)
}

func newFixtureWithStore(t *testing.T, store engine.Store) *fixture {
	t.Helper()
	var (
		mu  sync.Mutex
		now = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
		seq int
	)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
	ids := func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("id-%04d", seq)
	}
	notifier := &recordingNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := engine.New(store, notifier, logger,
		engine.WithClock(clock),
		engine.WithIDGenerator(ids),
		engine.WithLinkBase("https://collab.test/"),
	)
	return &fixture{engine: e, store: store, notifier: notifier}
}

func (f *fixture) settings(t *testing.T, s model.Settings) {
	t.Helper()
	_, err := f.engine.UpdateSettings(context.Background(), admin, s)
	require.NoError(t, err)
}

// publishedProject creates an open, published project owned by organizer.
func (f *fixture) publishedProject(t *testing.T, title string) model.Project {
	t.Helper()
	ctx := context.Background()
	p, err := f.engine.CreateProject(ctx, organizer, engine.CreateProjectInput{
		Title:                  title,
		ApplicationsEnabled:    true,
		PartnershipTypesSought: []model.PartnershipType{model.PartnershipSkilled},
	})
	require.NoError(t, err)
	p, err = f.engine.SubmitProjectForPublish(ctx, organizer, p.ID)
	require.NoError(t, err)
	require.Equal(t, model.ProjectPublished, p.Status)
	return p
}

func (f *fixture) partnerships(t *testing.T, projectID string) []model.Partnership {
	t.Helper()
	var rows []model.Partnership
	require.NoError(t, f.store.View(context.Background(), func(tx engine.Tx) error {
		var err error
		rows, err = tx.PartnershipsByProject(projectID)
		return err
	}))
	return rows
}

func TestScenarioA_ApplyAndApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.publishedProject(t, "Community garden")

	app, err := f.engine.SubmitApplication(ctx, applicant, engine.SubmitApplicationInput{
		ProjectID:       p.ID,
		PartnershipType: model.PartnershipSkilled,
		Message:         "I can build raised beds",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, app.Status)
	assert.Len(t, f.notifier.to(organizer.UserID), 1, "organizer hears about the application")

	app, err = f.engine.DecideApplication(ctx, organizer, app.ID, model.DecisionApproved)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, app.Status)
	assert.Equal(t, organizer.UserID, app.DecidedBy)

	rows := f.partnerships(t, p.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, applicant.UserID, rows[0].PartnerID)
	assert.Equal(t, model.PartnershipActive, rows[0].Status)
	assert.Equal(t, model.PartnershipSkilled, rows[0].PartnershipType)

	notes := f.notifier.to(applicant.UserID)
	require.Len(t, notes, 1)
	assert.Equal(t, "https://collab.test/projects/"+p.ID, notes[0].Link)
}

func TestDecideApplication_TwiceIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.publishedProject(t, "Mural")
	app, err := f.engine.SubmitApplication(ctx, applicant, engine.SubmitApplicationInput{ProjectID: p.ID, PartnershipType: model.PartnershipMaterial})
	require.NoError(t, err)

	first, err := f.engine.DecideApplication(ctx, organizer, app.ID, model.DecisionApproved)
	require.NoError(t, err)
	second, err := f.engine.DecideApplication(ctx, organizer, app.ID, model.DecisionApproved)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Len(t, f.partnerships(t, p.ID), 1)
	assert.Len(t, f.notifier.to(applicant.UserID), 1)
}

func TestDecideApplication_ConcurrentApprovals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.publishedProject(t, "Food bank")
	app, err := f.engine.SubmitApplication(ctx, applicant, engine.SubmitApplicationInput{ProjectID: p.ID, PartnershipType: model.PartnershipVolunteer})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.DecideApplication(ctx, organizer, app.ID, model.DecisionApproved)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	assert.Len(t, f.partnerships(t, p.ID), 1)
	assert.Len(t, f.notifier.to(applicant.UserID), 1)
}

func TestDecideApplication_RacesLegacyCreateOnBolt(t *testing.T) {
	f := newBoltFixture(t)
	ctx := context.Background()
	p := f.publishedProject(t, "Repair cafe")
	app, err := f.engine.SubmitApplication(ctx, applicant, engine.SubmitApplicationInput{ProjectID: p.ID, PartnershipType: model.PartnershipSkilled})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.engine.DecideApplication(ctx, organizer, app.ID, model.DecisionApproved)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := f.engine.CreatePartnership(ctx, organizer, engine.CreatePartnershipInput{
				ProjectID:       p.ID,
				PartnerID:       applicant.UserID,
				PartnershipType: model.PartnershipSkilled,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	rows := f.partnerships(t, p.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, model.PartnershipActive, rows[0].Status)
	views, err := f.engine.PartnershipsFor(ctx, applicant.UserID)
	require.NoError(t, err)
	assert.Len(t, views, 1)

	// the legacy path notifies only when it wins the insert
	titles := map[string]int{}
	for _, n := range f.notifier.to(applicant.UserID) {
		titles[n.Title]++
	}
	assert.Equal(t, 1, titles["Application approved"])
	assert.LessOrEqual(t, titles["New partnership"], 1)
}

func TestDecideApplication_RejectTwiceAndConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.publishedProject(t, "Library")
	app, err := f.engine.SubmitApplication(ctx, applicant, engine.SubmitApplicationInput{ProjectID: p.ID, PartnershipType: model.PartnershipSkilled})
	require.NoError(t, err)

	rejected, err := f.engine.DecideApplication(ctx, organizer, app.ID, model.DecisionRejected)
	require.NoError(t, err)
	again, err := f.engine.DecideApplication(ctx, organizer, app.ID, model.DecisionRejected)
	require.NoError(t, err)
	assert.Equal(t, rejected, again)
	assert.Len(t, f.notifier.to(applicant.UserID), 1)
	assert.Empty(t, f.notifier.to(applicant.UserID)[0].Link)

	stored, err := f.engine.DecideApplication(ctx, organizer, app.ID, model.DecisionApproved)
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)
	assert.Equal(t, model.RequestRejected, stored.Status)
	assert.Empty(t, f.partnerships(t, p.ID))

	// rejection never closes the project
	_, err = f.engine.SubmitApplication(ctx, applicant, engine.SubmitApplicationInput{ProjectID: p.ID, PartnershipType: model.PartnershipSkilled})
	assert.NoError(t, err)
}

func TestDecideApplication_Unauthorized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.publishedProject(t, "Cleanup")
	app, err := f.engine.SubmitApplication(ctx, applicant, engine.SubmitApplicationInput{ProjectID: p.ID, PartnershipType: model.PartnershipSkilled})
	require.NoError(t, err)

	_, err = f.engine.DecideApplication(ctx, stranger, app.ID, model.DecisionApproved)
	assert.ErrorIs(t, err, engine.ErrUnauthorized)
	_, err = f.engine.DecideApplication(ctx, applicant, app.ID, model.DecisionApproved)
	assert.ErrorIs(t, err, engine.ErrUnauthorized)

	// admins may decide on any project
	got, err := f.engine.DecideApplication(ctx, admin, app.ID, model.DecisionApproved)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, got.Status)

	_, err = f.engine.DecideApplication(ctx, organizer, "missing", model.DecisionApproved)
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestSubmitApplication_Closed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.engine.CreateProject(ctx, organizer, engine.CreateProjectInput{Title: "Draft", ApplicationsEnabled: true})
	require.NoError(t, err)
	_, err = f.engine.SubmitApplication(ctx, applicant, engine.SubmitApplicationInput{ProjectID: draft.ID, PartnershipType: model.PartnershipSkilled})
	assert.ErrorIs(t, err, engine.ErrApplicationsClosed)

	p := f.publishedProject(t, "Open")
	_, err = f.engine.SetApplicationsEnabled(ctx, organizer, p.ID, false)
	require.NoError(t, err)
	_, err = f.engine.SubmitApplication(ctx, applicant, engine.SubmitApplicationInput{ProjectID: p.ID, PartnershipType: model.PartnershipSkilled})
	assert.ErrorIs(t, err, engine.ErrApplicationsClosed)

	_, err = f.engine.SubmitApplication(ctx, applicant, engine.SubmitApplicationInput{ProjectID: "missing", PartnershipType: model.PartnershipSkilled})
	assert.ErrorIs(t, err, engine.ErrNotFound)

	_, err = f.engine.SubmitApplication(ctx, applicant, engine.SubmitApplicationInput{ProjectID: p.ID, PartnershipType: "charity"})
	assert.ErrorIs(t, err, engine.ErrInvalidInput)
}

func TestSubmitApplication_MultiplePendingAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.publishedProject(t, "Festival")
	for _, pt := range []model.PartnershipType{model.PartnershipVenue, model.PartnershipPromotional} {
		_, err := f.engine.SubmitApplication(ctx, applicant, engine.SubmitApplicationInput{ProjectID: p.ID, PartnershipType: pt})
		require.NoError(t, err)
	}
	apps, err := f.engine.ListProjectApplications(ctx, organizer, p.ID)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, model.PartnershipPromotional, apps[0].PartnershipType, "newest first")

	_, err = f.engine.ListProjectApplications(ctx, stranger, p.ID)
	assert.ErrorIs(t, err, engine.ErrUnauthorized)
}

func TestSubmitApplication_AsOrganizationRequiresMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.settings(t, model.Settings{AutoApproveOrganizations: true})
	org, err := f.engine.CreateOrganization(ctx, applicant, engine.CreateOrganizationInput{Name: "Uma's Carpentry"})
	require.NoError(t, err)
	p := f.publishedProject(t, "Benches")

	_, err = f.engine.SubmitApplication(ctx, stranger, engine.SubmitApplicationInput{ProjectID: p.ID, OrganizationID: org.ID, PartnershipType: model.PartnershipSkilled})
	assert.ErrorIs(t, err, engine.ErrUnauthorized)

	app, err := f.engine.SubmitApplication(ctx, applicant, engine.SubmitApplicationInput{ProjectID: p.ID, OrganizationID: org.ID, PartnershipType: model.PartnershipSkilled})
	require.NoError(t, err)
	_, err = f.engine.DecideApplication(ctx, organizer, app.ID, model.DecisionApproved)
	require.NoError(t, err)

	rows := f.partnerships(t, p.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, org.ID, rows[0].OrganizationID)
}

func TestMaterialize_ReusesLegacyPartnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.publishedProject(t, "Legacy")

	legacy, err := f.engine.CreatePartnership(ctx, organizer, engine.CreatePartnershipInput{
		ProjectID:       p.ID,
		PartnerID:       applicant.UserID,
		PartnershipType: model.PartnershipFinancial,
	})
	require.NoError(t, err)
	assert.Equal(t, model.PartnershipPending, legacy.Status)

	dup, err := f.engine.CreatePartnership(ctx, organizer, engine.CreatePartnershipInput{
		ProjectID:       p.ID,
		PartnerID:       applicant.UserID,
		PartnershipType: model.PartnershipSkilled,
	})
	require.NoError(t, err)
	assert.Equal(t, legacy.ID, dup.ID)

	app, err := f.engine.SubmitApplication(ctx, applicant, engine.SubmitApplicationInput{ProjectID: p.ID, PartnershipType: model.PartnershipSkilled})
	require.NoError(t, err)
	_, err = f.engine.DecideApplication(ctx, organizer, app.ID, model.DecisionApproved)
	require.NoError(t, err)

	rows := f.partnerships(t, p.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, legacy.ID, rows[0].ID)
	assert.Equal(t, model.PartnershipActive, rows[0].Status)

	again, err := f.engine.MaterializeApplication(ctx, organizer, app.ID)
	require.NoError(t, err)
	assert.Equal(t, legacy.ID, again.ID)
	assert.Len(t, f.partnerships(t, p.ID), 1)

	_, err = f.engine.CreatePartnership(ctx, stranger, engine.CreatePartnershipInput{ProjectID: p.ID, PartnerID: "x", PartnershipType: model.PartnershipSkilled})
	assert.ErrorIs(t, err, engine.ErrUnauthorized)
}

func TestMaterializeApplication_RequiresApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.publishedProject(t, "Pending")
	app, err := f.engine.SubmitApplication(ctx, applicant, engine.SubmitApplicationInput{ProjectID: p.ID, PartnershipType: model.PartnershipSkilled})
	require.NoError(t, err)

	_, err = f.engine.MaterializeApplication(ctx, organizer, app.ID)
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)
	assert.Empty(t, f.partnerships(t, p.ID))
}

func TestNotifierFailureDoesNotFailDecision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.publishedProject(t, "Resilient")
	app, err := f.engine.SubmitApplication(ctx, applicant, engine.SubmitApplicationInput{ProjectID: p.ID, PartnershipType: model.PartnershipSkilled})
	require.NoError(t, err)

	f.notifier.err = errors.New("smtp down")
	got, err := f.engine.DecideApplication(ctx, organizer, app.ID, model.DecisionApproved)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, got.Status)
	assert.Len(t, f.partnerships(t, p.ID), 1)
}

type failingStore struct {
	engine.Store
}

func (failingStore) Update(context.Context, func(engine.Tx) error) error {
	return errors.New("connection reset")
}

func TestStoreFailureIsDependencyFailure(t *testing.T) {
	e := engine.New(failingStore{Store: stores.NewMemoryStore()}, nil, nil)
	_, err := e.CreateOrganization(context.Background(), applicant, engine.CreateOrganizationInput{Name: "Org"})
	assert.ErrorIs(t, err, engine.ErrDependencyFailure)
}

func TestRequireActor(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.CreateOrganization(context.Background(), model.Actor{}, engine.CreateOrganizationInput{Name: "Anon"})
	assert.ErrorIs(t, err, engine.ErrUnauthorized)
}
