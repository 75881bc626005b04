package e2e

import (
	"context"
	"io"
	"net/http"
	"testing"

	"connectrpc.com/connect"
	json "github.com/dustin/gojson"
	"github.com/mscno/collab/pkg/api"
	"github.com/mscno/collab/pkg/client"
	"github.com/mscno/collab/server/model"
	"github.com/mscno/collab/testutl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, ts *testutl.TestServer, userID string, admin bool) *client.ConnectClient {
	t.Helper()
	token := ""
	if userID != "" {
		token = testutl.SessionToken(t, userID, admin)
	}
	return client.NewConnectClient(client.ClientConfig{
		ServerURL:  ts.URL,
		AuthToken:  token,
		HTTPClient: ts.Client(),
	})
}

func TestApplicationApprovalMaterializesPartnership(t *testing.T) {
	ts := testutl.StartServer(t)
	ctx := context.Background()
	organizer := newClient(t, ts, "olga", false)
	partner := newClient(t, ts, "uma", false)

	project, err := organizer.CreateProject(ctx, api.CreateProjectRequest{
		Title:               "Community garden",
		ApplicationsEnabled: true,
	})
	require.NoError(t, err)
	require.Equal(t, model.ProjectDraft, project.Status)
	project, err = organizer.SubmitProjectForPublish(ctx, project.ID)
	require.NoError(t, err)
	require.Equal(t, model.ProjectPublished, project.Status)

	app, err := partner.SubmitApplication(ctx, api.SubmitApplicationRequest{
		ProjectID:       project.ID,
		PartnershipType: model.PartnershipVolunteer,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, app.Status)

	app, err = organizer.DecideApplication(ctx, app.ID, model.DecisionApproved)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, app.Status)

	views, err := partner.ListPartnerships(ctx, "")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, project.ID, views[0].ProjectID)
	assert.Equal(t, model.PartnershipActive, views[0].Status)
	assert.Equal(t, model.SourcePartnership, views[0].Source)

	notes, err := partner.ListNotifications(ctx, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.NotEmpty(t, notes[0].Link)

	marked, err := partner.MarkNotificationsRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)
}

func TestErrorCodes(t *testing.T) {
	ts := testutl.StartServer(t)
	ctx := context.Background()
	organizer := newClient(t, ts, "olga", false)
	stranger := newClient(t, ts, "sam", false)
	anonymous := newClient(t, ts, "", false)

	project, err := organizer.CreateProject(ctx, api.CreateProjectRequest{Title: "Mural"})
	require.NoError(t, err)
	project, err = organizer.SubmitProjectForPublish(ctx, project.ID)
	require.NoError(t, err)

	_, err = anonymous.ListNotifications(ctx, false)
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	_, err = stranger.SubmitApplication(ctx, api.SubmitApplicationRequest{ProjectID: "missing", PartnershipType: model.PartnershipSkilled})
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = stranger.SubmitApplication(ctx, api.SubmitApplicationRequest{ProjectID: project.ID, PartnershipType: model.PartnershipSkilled})
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err), "applications are disabled")

	_, err = stranger.SubmitApplication(ctx, api.SubmitApplicationRequest{ProjectID: project.ID, PartnershipType: "telepathy"})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = stranger.CompleteProject(ctx, project.ID)
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	_, err = stranger.PendingApprovals(ctx)
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
}

func TestProjectModeration(t *testing.T) {
	ts := testutl.StartServer(t)
	ctx := context.Background()
	admin := newClient(t, ts, "ada", true)
	organizer := newClient(t, ts, "olga", false)

	_, err := admin.UpdateSettings(ctx, model.Settings{RequireProjectApproval: true})
	require.NoError(t, err)

	project, err := organizer.CreateProject(ctx, api.CreateProjectRequest{Title: "Repair cafe"})
	require.NoError(t, err)
	project, err = organizer.SubmitProjectForPublish(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectPendingPublish, project.Status)

	pending, err := admin.PendingApprovals(ctx)
	require.NoError(t, err)
	require.Len(t, pending.Projects, 1)

	project, err = admin.DecideProjectPublish(ctx, project.ID, model.DecisionApproved)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectPublished, project.Status)

	_, err = admin.DecideProjectPublish(ctx, project.ID, model.DecisionRejected)
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
}

func TestRESTRoutes(t *testing.T) {
	ts := testutl.StartServer(t)

	resp, err := ts.Client().Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = ts.Client().Get(ts.URL + "/api/v1/users/uma/partnerships")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	get := func(path, token string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := ts.Client().Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp = get("/api/v1/users/uma/partnerships", testutl.SessionToken(t, "olga", false))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = get("/api/v1/users/uma/partnerships", testutl.SessionToken(t, "ada", true))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get("/api/v1/users/uma/partnerships", testutl.SessionToken(t, "uma", false))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var list struct {
		Partnerships []model.PartnershipView `json:"partnerships"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Empty(t, list.Partnerships)

	resp = get("/api/v1/admin/pending", testutl.SessionToken(t, "olga", false))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = get("/api/v1/admin/pending", testutl.SessionToken(t, "ada", true))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
