package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/folioworks/portfolio-api/pkg/apperrors"
	"github.com/folioworks/portfolio-api/pkg/models"
	"github.com/folioworks/portfolio-api/pkg/repositories"
	"github.com/folioworks/portfolio-api/pkg/slug"
)

const (
	maxTitleLength            = 200
	maxShortDescriptionLength = 500
	maxURLLength              = 500
)

// CreateProjectRequest carries the client-supplied fields for a new project.
// Slug is optional; when blank the canonical slug is derived from Title. The
// same shape is used for full replacement, where omitted optional fields
// clear the stored values.
type CreateProjectRequest struct {
	Title            string               `json:"title"`
	Slug             string               `json:"slug,omitempty"`
	ShortDescription *string              `json:"short_description,omitempty"`
	LongDescription  *string              `json:"long_description,omitempty"`
	TechStack        []string             `json:"tech_stack,omitempty"`
	ProjectType      models.ProjectType   `json:"project_type"`
	Status           models.ProjectStatus `json:"status,omitempty"`
	GithubURL        *string              `json:"github_url,omitempty"`
	DemoURL          *string              `json:"demo_url,omitempty"`
	ImageURL         *string              `json:"image_url,omitempty"`
	Featured         bool                 `json:"featured,omitempty"`
}

// UpdateProjectRequest is the sparse payload for partial updates. Every field
// is a pointer so that omitted fields can be told apart from fields set to a
// zero value; only non-nil fields are applied.
type UpdateProjectRequest struct {
	Title            *string               `json:"title,omitempty"`
	Slug             *string               `json:"slug,omitempty"`
	ShortDescription *string               `json:"short_description,omitempty"`
	LongDescription  *string               `json:"long_description,omitempty"`
	TechStack        *[]string             `json:"tech_stack,omitempty"`
	ProjectType      *models.ProjectType   `json:"project_type,omitempty"`
	Status           *models.ProjectStatus `json:"status,omitempty"`
	GithubURL        *string               `json:"github_url,omitempty"`
	DemoURL          *string               `json:"demo_url,omitempty"`
	ImageURL         *string               `json:"image_url,omitempty"`
	Featured         *bool                 `json:"featured,omitempty"`
}

// ProjectService defines the interface for project operations.
type ProjectService interface {
	// Create validates the request, derives the canonical slug, and persists
	// a new project. Returns a ConflictError when the slug is already taken.
	Create(ctx context.Context, req *CreateProjectRequest) (*models.Project, error)

	// Get returns a project by its ID.
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)

	// Replace overwrites every stored field of an existing project with the
	// request values. Optional fields absent from the request are cleared.
	Replace(ctx context.Context, id uuid.UUID, req *CreateProjectRequest) (*models.Project, error)

	// Patch applies only the fields present in the request, leaving the rest
	// untouched. A blank patched slug is ignored rather than cleared.
	Patch(ctx context.Context, id uuid.UUID, req *UpdateProjectRequest) (*models.Project, error)

	// Delete removes a project. Returns ErrNotFound when no row matches.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns projects matching the filter, newest first.
	List(ctx context.Context, filter repositories.ListFilter) ([]*models.Project, error)
}

type projectService struct {
	repo   repositories.ProjectRepository
	logger *zap.Logger
}

// NewProjectService creates a new project service.
func NewProjectService(repo repositories.ProjectRepository, logger *zap.Logger) ProjectService {
	return &projectService{
		repo:   repo,
		logger: logger.Named("project-service"),
	}
}

// Ensure projectService implements ProjectService at compile time.
var _ ProjectService = (*projectService)(nil)

func (s *projectService) Create(ctx context.Context, req *CreateProjectRequest) (*models.Project, error) {
	if err := validateProjectFields(req); err != nil {
		return nil, err
	}

	canonical, err := deriveSlug(req.Slug, req.Title)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.IsSlugTaken(ctx, canonical, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug availability: %w", err)
	}
	if taken {
		return nil, &apperrors.ConflictError{Slug: canonical}
	}

	project := projectFromRequest(req, canonical)
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("Created project",
		zap.String("project_id", project.ID.String()),
		zap.String("slug", project.Slug))

	return project, nil
}

func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *projectService) Replace(ctx context.Context, id uuid.UUID, req *CreateProjectRequest) (*models.Project, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validateProjectFields(req); err != nil {
		return nil, err
	}

	canonical, err := deriveSlug(req.Slug, req.Title)
	if err != nil {
		return nil, err
	}

	// Only check availability when the slug actually changes, so a replace
	// that keeps the current slug never conflicts with itself.
	if canonical != existing.Slug {
		taken, err := s.repo.IsSlugTaken(ctx, canonical, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check slug availability: %w", err)
		}
		if taken {
			return nil, &apperrors.ConflictError{Slug: canonical}
		}
	}

	project := projectFromRequest(req, canonical)
	project.ID = id
	project.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("Replaced project",
		zap.String("project_id", project.ID.String()),
		zap.String("slug", project.Slug))

	return project, nil
}

func (s *projectService) Patch(ctx context.Context, id uuid.UUID, req *UpdateProjectRequest) (*models.Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, apperrors.Validationf("title", "title must not be empty")
		}
		if utf8.RuneCountInString(*req.Title) > maxTitleLength {
			return nil, apperrors.Validationf("title", "title must be at most %d characters", maxTitleLength)
		}
		project.Title = *req.Title
	}

	// A blank patched slug is ignored: a patch may change a slug but never
	// clear one.
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		canonical := slug.Normalize(*req.Slug)
		if canonical == "" {
			return nil, apperrors.Validationf("slug", "slug must contain at least one letter or digit")
		}
		if canonical != project.Slug {
			taken, err := s.repo.IsSlugTaken(ctx, canonical, id)
			if err != nil {
				return nil, fmt.Errorf("failed to check slug availability: %w", err)
			}
			if taken {
				return nil, &apperrors.ConflictError{Slug: canonical}
			}
		}
		project.Slug = canonical
	}

	if req.ShortDescription != nil {
		if utf8.RuneCountInString(*req.ShortDescription) > maxShortDescriptionLength {
			return nil, apperrors.Validationf("short_description", "short_description must be at most %d characters", maxShortDescriptionLength)
		}
		project.ShortDescription = req.ShortDescription
	}

	if req.LongDescription != nil {
		project.LongDescription = req.LongDescription
	}

	if req.TechStack != nil {
		project.TechStack = *req.TechStack
	}

	if req.ProjectType != nil {
		if !models.IsValidProjectType(*req.ProjectType) {
			return nil, apperrors.Validationf("project_type", "project_type must be one of: data_engineering, ml_ai, web, automation, saas")
		}
		project.ProjectType = *req.ProjectType
	}

	if req.Status != nil {
		if !models.IsValidProjectStatus(*req.Status) {
			return nil, apperrors.Validationf("status", "status must be one of: active, archived, draft")
		}
		project.Status = *req.Status
	}

	if req.GithubURL != nil {
		if utf8.RuneCountInString(*req.GithubURL) > maxURLLength {
			return nil, apperrors.Validationf("github_url", "github_url must be at most %d characters", maxURLLength)
		}
		project.GithubURL = req.GithubURL
	}

	if req.DemoURL != nil {
		if utf8.RuneCountInString(*req.DemoURL) > maxURLLength {
			return nil, apperrors.Validationf("demo_url", "demo_url must be at most %d characters", maxURLLength)
		}
		project.DemoURL = req.DemoURL
	}

	if req.ImageURL != nil {
		if utf8.RuneCountInString(*req.ImageURL) > maxURLLength {
			return nil, apperrors.Validationf("image_url", "image_url must be at most %d characters", maxURLLength)
		}
		project.ImageURL = req.ImageURL
	}

	if req.Featured != nil {
		project.Featured = *req.Featured
	}

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("Updated project",
		zap.String("project_id", project.ID.String()),
		zap.String("slug", project.Slug))

	return project, nil
}

func (s *projectService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Deleted project", zap.String("project_id", id.String()))
	return nil
}

func (s *projectService) List(ctx context.Context, filter repositories.ListFilter) ([]*models.Project, error) {
	return s.repo.List(ctx, filter)
}

// deriveSlug picks the slug source (explicit slug when non-blank, otherwise
// the title) and normalizes it to canonical form.
func deriveSlug(rawSlug, title string) (string, error) {
	source := rawSlug
	if strings.TrimSpace(source) == "" {
		source = title
	}

	canonical := slug.Normalize(source)
	if canonical == "" {
		return "", apperrors.Validationf("slug", "slug must contain at least one letter or digit")
	}
	return canonical, nil
}

func validateProjectFields(req *CreateProjectRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return apperrors.Validationf("title", "title must not be empty")
	}
	if utf8.RuneCountInString(req.Title) > maxTitleLength {
		return apperrors.Validationf("title", "title must be at most %d characters", maxTitleLength)
	}
	if !models.IsValidProjectType(req.ProjectType) {
		return apperrors.Validationf("project_type", "project_type must be one of: data_engineering, ml_ai, web, automation, saas")
	}
	if req.Status != "" && !models.IsValidProjectStatus(req.Status) {
		return apperrors.Validationf("status", "status must be one of: active, archived, draft")
	}
	if req.ShortDescription != nil && utf8.RuneCountInString(*req.ShortDescription) > maxShortDescriptionLength {
		return apperrors.Validationf("short_description", "short_description must be at most %d characters", maxShortDescriptionLength)
	}
	if req.GithubURL != nil && utf8.RuneCountInString(*req.GithubURL) > maxURLLength {
		return apperrors.Validationf("github_url", "github_url must be at most %d characters", maxURLLength)
	}
	if req.DemoURL != nil && utf8.RuneCountInString(*req.DemoURL) > maxURLLength {
		return apperrors.Validationf("demo_url", "demo_url must be at most %d characters", maxURLLength)
	}
	if req.ImageURL != nil && utf8.RuneCountInString(*req.ImageURL) > maxURLLength {
		return apperrors.Validationf("image_url", "image_url must be at most %d characters", maxURLLength)
	}
	return nil
}

// projectFromRequest builds a full project from a create/replace payload.
// Absent optional fields take their defaults: status active, featured false,
// empty tech stack, nil descriptions and links.
func projectFromRequest(req *CreateProjectRequest, canonicalSlug string) *models.Project {
	status := req.Status
	if status == "" {
		status = models.ProjectStatusActive
	}

	techStack := req.TechStack
	if techStack == nil {
		techStack = []string{}
	}

	return &models.Project{
		Title:            req.Title,
		Slug:             canonicalSlug,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		TechStack:        techStack,
		ProjectType:      req.ProjectType,
		Status:           status,
		GithubURL:        req.GithubURL,
		DemoURL:          req.DemoURL,
		ImageURL:         req.ImageURL,
		Featured:         req.Featured,
	}
}
