// Package seed bootstraps SystemSettings from a YAML file at server start.
//
//	settings:
//	  auto_approve_organizations: false
//	  auto_approve_projects: true
//	  require_project_approval: true
package seed

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mscno/collab/server/engine"
	"github.com/mscno/collab/server/model"
	"gopkg.in/yaml.v3"
)

// SystemActor is the admin identity seeding runs as.
var SystemActor = model.Actor{UserID: "system", Admin: true}

type File struct {
	Settings *model.Settings `yaml:"settings"`
}

func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("parse seed file: %w", err)
	}
	return f, nil
}

// Apply writes the seeded settings. A file without a settings section leaves the
// stored settings untouched.
func Apply(ctx context.Context, e *engine.Engine, f File, logger *slog.Logger) error {
	if f.Settings == nil {
		return nil
	}
	s, err := e.UpdateSettings(ctx, SystemActor, *f.Settings)
	if err != nil {
		return fmt.Errorf("apply seeded settings: %w", err)
	}
	logger.Info("seeded settings",
		"auto_approve_organizations", s.AutoApproveOrganizations,
		"auto_approve_projects", s.AutoApproveProjects,
		"require_project_approval", s.RequireProjectApproval,
	)
	return nil
}
