package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/folioworks/portfolio-api/pkg/apperrors"
	"github.com/folioworks/portfolio-api/pkg/models"
	"github.com/folioworks/portfolio-api/pkg/repositories"
)

// ============================================================================
// Mock Repository
// ============================================================================

type mockProjectRepo struct {
	projects map[uuid.UUID]*models.Project

	createErr    error
	getErr       error
	updateErr    error
	deleteErr    error
	listErr      error
	slugCheckErr error
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{
		projects: make(map[uuid.UUID]*models.Project),
	}
}

func (m *mockProjectRepo) Create(ctx context.Context, project *models.Project) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, p := range m.projects {
		if p.Slug == project.Slug {
			return &apperrors.ConflictError{Slug: project.Slug}
		}
	}
	project.ID = uuid.New()
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	stored := *project
	m.projects[project.ID] = &stored
	return nil
}

func (m *mockProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, exists := m.projects[id]
	if !exists {
		return nil, apperrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProjectRepo) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, p := range m.projects {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockProjectRepo) IsSlugTaken(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	if m.slugCheckErr != nil {
		return false, m.slugCheckErr
	}
	for _, p := range m.projects {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockProjectRepo) Update(ctx context.Context, project *models.Project) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, exists := m.projects[project.ID]; !exists {
		return apperrors.ErrNotFound
	}
	project.UpdatedAt = time.Now()
	stored := *project
	m.projects[project.ID] = &stored
	return nil
}

func (m *mockProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, exists := m.projects[id]; !exists {
		return apperrors.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *mockProjectRepo) List(ctx context.Context, filter repositories.ListFilter) ([]*models.Project, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	result := make([]*models.Project, 0)
	for _, p := range m.projects {
		if filter.ProjectType != nil && p.ProjectType != *filter.ProjectType {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.Featured != nil && p.Featured != *filter.Featured {
			continue
		}
		cp := *p
		result = append(result, &cp)
	}
	return result, nil
}

func strPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}

// ============================================================================
// Tests - Create
// ============================================================================

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	project, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "My Awesome Project",
		ProjectType: models.ProjectTypeWeb,
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, project.ID)
	assert.Equal(t, "my-awesome-project", project.Slug)
	assert.Equal(t, models.ProjectStatusActive, project.Status)
	assert.False(t, project.Featured)
	assert.NotNil(t, project.TechStack)
	assert.Empty(t, project.TechStack)
	assert.False(t, project.CreatedAt.IsZero())
}

func TestProjectService_Create_ExplicitSlugWins(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	project, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "My Awesome Project",
		Slug:        "  Custom Slug ",
		ProjectType: models.ProjectTypeWeb,
	})
	require.NoError(t, err)
	assert.Equal(t, "custom-slug", project.Slug)
}

func TestProjectService_Create_AccentedTitle(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	project, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "Análise de Dados",
		ProjectType: models.ProjectTypeDataEngineering,
	})
	require.NoError(t, err)
	assert.Equal(t, "analise-de-dados", project.Slug)
}

func TestProjectService_Create_SlugConflict(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	_, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "My Awesome Project",
		ProjectType: models.ProjectTypeWeb,
	})
	require.NoError(t, err)

	// A different title that normalizes to the same slug still conflicts.
	_, err = svc.Create(ctx, &CreateProjectRequest{
		Title:       "My  AWESOME  Project!",
		ProjectType: models.ProjectTypeMLAI,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Contains(t, err.Error(), "my-awesome-project")
	assert.Contains(t, err.Error(), "already exists")
}

func TestProjectService_Create_MissingTitle(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	_, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "   ",
		ProjectType: models.ProjectTypeWeb,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "title")
}

func TestProjectService_Create_TitleTooLong(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	_, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       strings.Repeat("a", 201),
		ProjectType: models.ProjectTypeWeb,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestProjectService_Create_InvalidProjectType(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	_, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "Some Project",
		ProjectType: models.ProjectType("mobile"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "project_type")
}

func TestProjectService_Create_SymbolOnlyTitle(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	// Every character is stripped during normalization, so no slug can be
	// derived.
	_, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "!!! ???",
		ProjectType: models.ProjectTypeWeb,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "slug")
}

func TestProjectService_Create_SlugCheckError(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	repo.slugCheckErr = errors.New("connection refused")
	svc := NewProjectService(repo, zap.NewNop())

	_, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "Some Project",
		ProjectType: models.ProjectTypeWeb,
	})
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperrors.ErrValidation))
	assert.False(t, errors.Is(err, apperrors.ErrConflict))
	assert.Contains(t, err.Error(), "failed to check slug availability")
}

// ============================================================================
// Tests - Replace
// ============================================================================

func TestProjectService_Replace_ClearsOmittedFields(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	created, err := svc.Create(ctx, &CreateProjectRequest{
		Title:            "Original Project",
		ShortDescription: strPtr("A short description"),
		TechStack:        []string{"Go", "Postgres"},
		ProjectType:      models.ProjectTypeWeb,
		Status:           models.ProjectStatusDraft,
		GithubURL:        strPtr("https://github.com/example/original"),
		Featured:         true,
	})
	require.NoError(t, err)

	replaced, err := svc.Replace(ctx, created.ID, &CreateProjectRequest{
		Title:       "Replacement Project",
		ProjectType: models.ProjectTypeMLAI,
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, replaced.ID)
	assert.Equal(t, "Replacement Project", replaced.Title)
	assert.Equal(t, "replacement-project", replaced.Slug)
	assert.Nil(t, replaced.ShortDescription)
	assert.Nil(t, replaced.GithubURL)
	assert.Empty(t, replaced.TechStack)
	assert.Equal(t, models.ProjectStatusActive, replaced.Status)
	assert.False(t, replaced.Featured)
	assert.Equal(t, created.CreatedAt, replaced.CreatedAt)
}

func TestProjectService_Replace_KeepsOwnSlug(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	created, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "My Project",
		ProjectType: models.ProjectTypeWeb,
	})
	require.NoError(t, err)

	// Replacing with the same title keeps the same slug and must not
	// conflict with the project's own row. The availability check is skipped
	// entirely, so a failing check would not surface here.
	repo.slugCheckErr = errors.New("should not be called")
	replaced, err := svc.Replace(ctx, created.ID, &CreateProjectRequest{
		Title:       "My Project",
		ProjectType: models.ProjectTypeSaaS,
	})
	require.NoError(t, err)
	assert.Equal(t, "my-project", replaced.Slug)
	assert.Equal(t, models.ProjectTypeSaaS, replaced.ProjectType)
}

func TestProjectService_Replace_SlugConflict(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	_, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "First Project",
		ProjectType: models.ProjectTypeWeb,
	})
	require.NoError(t, err)

	second, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "Second Project",
		ProjectType: models.ProjectTypeWeb,
	})
	require.NoError(t, err)

	_, err = svc.Replace(ctx, second.ID, &CreateProjectRequest{
		Title:       "First Project",
		ProjectType: models.ProjectTypeWeb,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Contains(t, err.Error(), "first-project")
}

func TestProjectService_Replace_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	_, err := svc.Replace(ctx, uuid.New(), &CreateProjectRequest{
		Title:       "Anything",
		ProjectType: models.ProjectTypeWeb,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

// ============================================================================
// Tests - Patch
// ============================================================================

func TestProjectService_Patch_PartialFields(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	created, err := svc.Create(ctx, &CreateProjectRequest{
		Title:            "Original Project",
		ShortDescription: strPtr("Keep me"),
		TechStack:        []string{"Go"},
		ProjectType:      models.ProjectTypeWeb,
		Featured:         true,
	})
	require.NoError(t, err)

	patched, err := svc.Patch(ctx, created.ID, &UpdateProjectRequest{
		Title: strPtr("Renamed Project"),
	})
	require.NoError(t, err)

	// Only the title changes; the slug and everything else stay put.
	assert.Equal(t, "Renamed Project", patched.Title)
	assert.Equal(t, "original-project", patched.Slug)
	require.NotNil(t, patched.ShortDescription)
	assert.Equal(t, "Keep me", *patched.ShortDescription)
	assert.Equal(t, []string{"Go"}, patched.TechStack)
	assert.True(t, patched.Featured)
}

func TestProjectService_Patch_FalseValuesApplied(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	created, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "Featured Project",
		ProjectType: models.ProjectTypeWeb,
		Featured:    true,
	})
	require.NoError(t, err)

	// An explicit false is present in the payload and must be applied, not
	// confused with an omitted field.
	patched, err := svc.Patch(ctx, created.ID, &UpdateProjectRequest{
		Featured: boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, patched.Featured)
}

func TestProjectService_Patch_BlankSlugIgnored(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	created, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "My Project",
		ProjectType: models.ProjectTypeWeb,
	})
	require.NoError(t, err)

	patched, err := svc.Patch(ctx, created.ID, &UpdateProjectRequest{
		Slug: strPtr("   "),
	})
	require.NoError(t, err)
	assert.Equal(t, "my-project", patched.Slug)
}

func TestProjectService_Patch_SlugNormalized(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	created, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "My Project",
		ProjectType: models.ProjectTypeWeb,
	})
	require.NoError(t, err)

	patched, err := svc.Patch(ctx, created.ID, &UpdateProjectRequest{
		Slug: strPtr("Project #1: Data Engineering"),
	})
	require.NoError(t, err)
	assert.Equal(t, "project-1-data-engineering", patched.Slug)
}

func TestProjectService_Patch_SlugConflict(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	_, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "First Project",
		ProjectType: models.ProjectTypeWeb,
	})
	require.NoError(t, err)

	second, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "Second Project",
		ProjectType: models.ProjectTypeWeb,
	})
	require.NoError(t, err)

	_, err = svc.Patch(ctx, second.ID, &UpdateProjectRequest{
		Slug: strPtr("first-project"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Contains(t, err.Error(), "first-project")
}

func TestProjectService_Patch_UnchangedSlugSkipsAvailabilityCheck(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	created, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "My Project",
		ProjectType: models.ProjectTypeWeb,
	})
	require.NoError(t, err)

	// Re-submitting the current slug (even unnormalized) must not trigger
	// an availability check against the project's own row.
	repo.slugCheckErr = errors.New("should not be called")
	patched, err := svc.Patch(ctx, created.ID, &UpdateProjectRequest{
		Slug: strPtr("My Project"),
	})
	require.NoError(t, err)
	assert.Equal(t, "my-project", patched.Slug)
}

func TestProjectService_Patch_InvalidStatus(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	created, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "My Project",
		ProjectType: models.ProjectTypeWeb,
	})
	require.NoError(t, err)

	badStatus := models.ProjectStatus("paused")
	_, err = svc.Patch(ctx, created.ID, &UpdateProjectRequest{
		Status: &badStatus,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "status")
}

func TestProjectService_Patch_EmptyTitleRejected(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	created, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "My Project",
		ProjectType: models.ProjectTypeWeb,
	})
	require.NoError(t, err)

	_, err = svc.Patch(ctx, created.ID, &UpdateProjectRequest{
		Title: strPtr(""),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestProjectService_Patch_TechStackReplaced(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	created, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "My Project",
		TechStack:   []string{"Go", "Postgres"},
		ProjectType: models.ProjectTypeWeb,
	})
	require.NoError(t, err)

	newStack := []string{"Python"}
	patched, err := svc.Patch(ctx, created.ID, &UpdateProjectRequest{
		TechStack: &newStack,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Python"}, patched.TechStack)
}

func TestProjectService_Patch_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	_, err := svc.Patch(ctx, uuid.New(), &UpdateProjectRequest{
		Title: strPtr("Anything"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

// ============================================================================
// Tests - Get / Delete / List
// ============================================================================

func TestProjectService_Get(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	created, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "My Project",
		ProjectType: models.ProjectTypeWeb,
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "my-project", got.Slug)
}

func TestProjectService_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	_, err := svc.Get(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	created, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "My Project",
		ProjectType: models.ProjectTypeWeb,
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, created.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestProjectService_Delete_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	err := svc.Delete(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestProjectService_List_Filtered(t *testing.T) {
	ctx := context.Background()
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, zap.NewNop())

	_, err := svc.Create(ctx, &CreateProjectRequest{
		Title:       "Web Project",
		ProjectType: models.ProjectTypeWeb,
		Featured:    true,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &CreateProjectRequest{
		Title:       "Pipeline Project",
		ProjectType: models.ProjectTypeDataEngineering,
	})
	require.NoError(t, err)

	featured := true
	projects, err := svc.List(ctx, repositories.ListFilter{Featured: &featured, Limit: 100})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "web-project", projects[0].Slug)
}
