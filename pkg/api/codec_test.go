package api

import (
	"testing"
	"time"

	"github.com/mscno/collab/server/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_WireNames(t *testing.T) {
	data, err := Codec{}.Marshal(&DecideRequest{ID: "app-1", Decision: model.DecisionApproved})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"app-1","decision":"approved"}`, string(data))
}

func TestCodec_DecodesViews(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	in := ListPartnershipsResponse{Partnerships: []model.PartnershipView{{
		ProjectID: "p1",
		PartnerID: "uma",
		Status:    model.PartnershipActive,
		Source:    model.SourceApplication,
		CreatedAt: created,
	}}}
	data, err := Codec{}.Marshal(&in)
	require.NoError(t, err)

	var out ListPartnershipsResponse
	require.NoError(t, Codec{}.Unmarshal(data, &out))
	require.Len(t, out.Partnerships, 1)
	assert.Equal(t, model.SourceApplication, out.Partnerships[0].Source)
	assert.True(t, created.Equal(out.Partnerships[0].CreatedAt))
}

func TestCodec_EmptyBody(t *testing.T) {
	var req ListNotificationsRequest
	require.NoError(t, Codec{}.Unmarshal(nil, &req))
	assert.False(t, req.UnreadOnly)
}
