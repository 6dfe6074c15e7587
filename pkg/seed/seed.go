// Package seed loads example projects from a YAML fixture and inserts them
// through the project service, so seeded rows pass the same validation and
// slug handling as API writes.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/folioworks/portfolio-api/pkg/apperrors"
	"github.com/folioworks/portfolio-api/pkg/models"
	"github.com/folioworks/portfolio-api/pkg/repositories"
	"github.com/folioworks/portfolio-api/pkg/services"
)

// FixtureProject is one project entry in the seed file.
type FixtureProject struct {
	Title            string   `yaml:"title"`
	Slug             string   `yaml:"slug,omitempty"`
	ShortDescription *string  `yaml:"short_description,omitempty"`
	LongDescription  *string  `yaml:"long_description,omitempty"`
	TechStack        []string `yaml:"tech_stack,omitempty"`
	ProjectType      string   `yaml:"project_type"`
	Status           string   `yaml:"status,omitempty"`
	GithubURL        *string  `yaml:"github_url,omitempty"`
	DemoURL          *string  `yaml:"demo_url,omitempty"`
	ImageURL         *string  `yaml:"image_url,omitempty"`
	Featured         bool     `yaml:"featured,omitempty"`
}

// Fixture is the top-level structure of a seed file.
type Fixture struct {
	Projects []FixtureProject `yaml:"projects"`
}

// Load reads and parses a seed fixture from path.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	return &fixture, nil
}

// Apply inserts the fixture's projects through svc and returns how many were
// created. A database that already holds projects is left untouched; a slug
// collision skips that one entry rather than aborting the run.
func Apply(ctx context.Context, fixture *Fixture, svc services.ProjectService, logger *zap.Logger) (int, error) {
	existing, err := svc.List(ctx, repositories.ListFilter{Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("failed to check for existing projects: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("Database already has projects, skipping seed")
		return 0, nil
	}

	created := 0
	for _, p := range fixture.Projects {
		req := &services.CreateProjectRequest{
			Title:            p.Title,
			Slug:             p.Slug,
			ShortDescription: p.ShortDescription,
			LongDescription:  p.LongDescription,
			TechStack:        p.TechStack,
			ProjectType:      models.ProjectType(p.ProjectType),
			Status:           models.ProjectStatus(p.Status),
			GithubURL:        p.GithubURL,
			DemoURL:          p.DemoURL,
			ImageURL:         p.ImageURL,
			Featured:         p.Featured,
		}

		project, err := svc.Create(ctx, req)
		if err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				logger.Warn("Skipping seed project with taken slug",
					zap.String("title", p.Title))
				continue
			}
			return created, fmt.Errorf("failed to seed project %q: %w", p.Title, err)
		}

		logger.Info("Seeded project",
			zap.String("slug", project.Slug),
			zap.String("project_id", project.ID.String()))
		created++
	}

	return created, nil
}
