package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/folioworks/portfolio-api/pkg/apperrors"
	"github.com/folioworks/portfolio-api/pkg/database"
	"github.com/folioworks/portfolio-api/pkg/models"
)

// ListFilter narrows List results. Nil filter fields are not applied.
// Skip and Limit are expected to arrive already clamped by the transport
// boundary.
type ListFilter struct {
	ProjectType *models.ProjectType
	Status      *models.ProjectStatus
	Featured    *bool
	Skip        int
	Limit       int
}

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetBySlug(ctx context.Context, slug string) (*models.Project, error)
	// IsSlugTaken reports whether a project other than excludeID holds the
	// slug. Pass uuid.Nil to consider every project.
	IsSlugTaken(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]*models.Project, error)
}

// projectRepository implements ProjectRepository using PostgreSQL.
type projectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *database.DB) ProjectRepository {
	return &projectRepository{db: db}
}

var _ ProjectRepository = (*projectRepository)(nil)

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	now := time.Now()
	project.ID = uuid.New()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.TechStack == nil {
		project.TechStack = []string{}
	}

	sql := `
		INSERT INTO projects (
			id, title, slug, short_description, long_description, tech_stack,
			project_type, status, github_url, demo_url, image_url, featured,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(ctx, sql,
		project.ID, project.Title, project.Slug, project.ShortDescription, project.LongDescription,
		project.TechStack, project.ProjectType, project.Status, project.GithubURL, project.DemoURL,
		project.ImageURL, project.Featured, project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &apperrors.ConflictError{Slug: project.Slug}
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	sql := `
		SELECT id, title, slug, short_description, long_description, tech_stack,
		       project_type, status, github_url, demo_url, image_url, featured,
		       created_at, updated_at
		FROM projects
		WHERE id = $1`

	row := r.db.QueryRow(ctx, sql, id)
	p, err := scanProjectRow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return p, nil
}

func (r *projectRepository) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	sql := `
		SELECT id, title, slug, short_description, long_description, tech_stack,
		       project_type, status, github_url, demo_url, image_url, featured,
		       created_at, updated_at
		FROM projects
		WHERE slug = $1`

	row := r.db.QueryRow(ctx, sql, slug)
	p, err := scanProjectRow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project by slug: %w", err)
	}

	return p, nil
}

func (r *projectRepository) IsSlugTaken(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	sql := `SELECT 1 FROM projects WHERE slug = $1 AND id != $2 LIMIT 1`

	var exists int
	err := r.db.QueryRow(ctx, sql, slug, excludeID).Scan(&exists)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check slug availability: %w", err)
	}

	return true, nil
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now()
	if project.TechStack == nil {
		project.TechStack = []string{}
	}

	sql := `
		UPDATE projects
		SET title = $2,
		    slug = $3,
		    short_description = $4,
		    long_description = $5,
		    tech_stack = $6,
		    project_type = $7,
		    status = $8,
		    github_url = $9,
		    demo_url = $10,
		    image_url = $11,
		    featured = $12,
		    updated_at = $13
		WHERE id = $1`

	result, err := r.db.Exec(ctx, sql,
		project.ID, project.Title, project.Slug, project.ShortDescription, project.LongDescription,
		project.TechStack, project.ProjectType, project.Status, project.GithubURL, project.DemoURL,
		project.ImageURL, project.Featured, project.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &apperrors.ConflictError{Slug: project.Slug}
		}
		return fmt.Errorf("failed to update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *projectRepository) List(ctx context.Context, filter ListFilter) ([]*models.Project, error) {
	conditions := []string{}
	args := []any{}
	argIdx := 1

	if filter.ProjectType != nil {
		conditions = append(conditions, fmt.Sprintf("project_type = $%d", argIdx))
		args = append(args, *filter.ProjectType)
		argIdx++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("featured = $%d", argIdx))
		args = append(args, *filter.Featured)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	sql := fmt.Sprintf(`
		SELECT id, title, slug, short_description, long_description, tech_stack,
		       project_type, status, github_url, demo_url, image_url, featured,
		       created_at, updated_at
		FROM projects
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)

	args = append(args, filter.Limit, filter.Skip)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// isUniqueViolation checks for a PostgreSQL unique constraint violation
// (error code 23505), raised by the slug index when the application-level
// uniqueness pre-check loses a race.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanProject(rows pgx.Rows) (*models.Project, error) {
	var p models.Project
	err := rows.Scan(
		&p.ID, &p.Title, &p.Slug, &p.ShortDescription, &p.LongDescription, &p.TechStack,
		&p.ProjectType, &p.Status, &p.GithubURL, &p.DemoURL, &p.ImageURL, &p.Featured,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	return &p, nil
}

func scanProjectRow(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.ShortDescription, &p.LongDescription, &p.TechStack,
		&p.ProjectType, &p.Status, &p.GithubURL, &p.DemoURL, &p.ImageURL, &p.Featured,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
