// Package models contains domain types for portfolio-api.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectType categorizes a portfolio project.
type ProjectType string

const (
	ProjectTypeDataEngineering ProjectType = "data_engineering"
	ProjectTypeMLAI            ProjectType = "ml_ai"
	ProjectTypeWeb             ProjectType = "web"
	ProjectTypeAutomation      ProjectType = "automation"
	ProjectTypeSaaS            ProjectType = "saas"
)

// ValidProjectTypes contains all valid project type values.
var ValidProjectTypes = []ProjectType{
	ProjectTypeDataEngineering,
	ProjectTypeMLAI,
	ProjectTypeWeb,
	ProjectTypeAutomation,
	ProjectTypeSaaS,
}

// IsValidProjectType checks if the given project type is valid.
func IsValidProjectType(t ProjectType) bool {
	for _, v := range ValidProjectTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ProjectStatus tracks the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusArchived ProjectStatus = "archived"
	ProjectStatusDraft    ProjectStatus = "draft"
)

// ValidProjectStatuses contains all valid project status values.
var ValidProjectStatuses = []ProjectStatus{
	ProjectStatusActive,
	ProjectStatusArchived,
	ProjectStatusDraft,
}

// IsValidProjectStatus checks if the given status is valid.
func IsValidProjectStatus(s ProjectStatus) bool {
	for _, v := range ValidProjectStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Project represents a portfolio project. The slug is unique across all
// projects and is kept in canonical form (lowercase alphanumerics and single
// hyphens) by the service layer.
type Project struct {
	ID               uuid.UUID     `json:"id"`
	Title            string        `json:"title"`
	Slug             string        `json:"slug"`
	ShortDescription *string       `json:"short_description"`
	LongDescription  *string       `json:"long_description"`
	TechStack        []string      `json:"tech_stack"`
	ProjectType      ProjectType   `json:"project_type"`
	Status           ProjectStatus `json:"status"`
	GithubURL        *string       `json:"github_url"`
	DemoURL          *string       `json:"demo_url"`
	ImageURL         *string       `json:"image_url"`
	Featured         bool          `json:"featured"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
