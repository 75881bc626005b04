package seed

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mscno/collab/server/engine"
	"github.com/mscno/collab/server/stores"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
settings:
  auto_approve_organizations: true
  require_project_approval: true
`), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, f.Settings)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := engine.New(stores.NewMemoryStore(), nil, logger)
	require.NoError(t, Apply(context.Background(), e, f, logger))

	s, err := e.GetSettings(context.Background())
	require.NoError(t, err)
	assert.True(t, s.AutoApproveOrganizations)
	assert.False(t, s.AutoApproveProjects)
	assert.True(t, s.RequireProjectApproval)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("settings:\n  auto_approve_everything: true\n"))
	assert.Error(t, err)
}

func TestApply_NoSettingsSection(t *testing.T) {
	f, err := Parse([]byte("{}\n"))
	require.NoError(t, err)
	assert.NoError(t, Apply(context.Background(), nil, f, slog.Default()))
}
