package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/folioworks/portfolio-api/pkg/apperrors"
	"github.com/folioworks/portfolio-api/pkg/config"
	"github.com/folioworks/portfolio-api/pkg/models"
	"github.com/folioworks/portfolio-api/pkg/repositories"
	"github.com/folioworks/portfolio-api/pkg/services"
)

const (
	defaultListLimit = 100
	maxListLimit     = 100
)

// ProjectsHandler handles project-related HTTP requests.
type ProjectsHandler struct {
	projectService services.ProjectService
	cfg            *config.Config
	logger         *zap.Logger
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(projectService services.ProjectService, cfg *config.Config, logger *zap.Logger) *ProjectsHandler {
	return &ProjectsHandler{
		projectService: projectService,
		cfg:            cfg,
		logger:         logger,
	}
}

// RegisterRoutes registers the projects handler's routes on the given mux
// under the configured API prefix.
func (h *ProjectsHandler) RegisterRoutes(mux *http.ServeMux) {
	prefix := strings.TrimRight(h.cfg.APIPrefix, "/")
	mux.HandleFunc(fmt.Sprintf("GET %s/projects", prefix), h.List)
	mux.HandleFunc(fmt.Sprintf("POST %s/projects", prefix), h.Create)
	mux.HandleFunc(fmt.Sprintf("GET %s/projects/{pid}", prefix), h.Get)
	mux.HandleFunc(fmt.Sprintf("PUT %s/projects/{pid}", prefix), h.Replace)
	mux.HandleFunc(fmt.Sprintf("PATCH %s/projects/{pid}", prefix), h.Patch)
	mux.HandleFunc(fmt.Sprintf("DELETE %s/projects/{pid}", prefix), h.Delete)
}

// List handles GET {prefix}/projects
// Returns projects newest first, optionally filtered by project_type, status,
// and featured, paginated via skip/limit.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseListFilter(w, r)
	if !ok {
		return
	}

	projects, err := h.projectService.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list projects", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to list projects"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, projects); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST {prefix}/projects
// Creates a project from the request body and returns it with status 201.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	project, err := h.projectService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		if errors.Is(err, apperrors.ErrConflict) {
			if err := ErrorResponse(w, http.StatusBadRequest, "conflict", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to create project", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to create project"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET {prefix}/projects/{pid}
// Returns the project details.
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	project, err := h.projectService.Get(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "not_found", fmt.Sprintf("Project with id %s not found", projectID)); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to get project",
			zap.String("project_id", projectID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to get project"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Replace handles PUT {prefix}/projects/{pid}
// Overwrites every field of an existing project with the request body;
// optional fields left out of the body are cleared.
func (h *ProjectsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	var req services.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	project, err := h.projectService.Replace(r.Context(), projectID, &req)
	if err != nil {
		h.writeUpdateError(w, err, projectID.String())
		return
	}

	if err := WriteJSON(w, http.StatusOK, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Patch handles PATCH {prefix}/projects/{pid}
// Applies only the fields present in the request body.
func (h *ProjectsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	var req services.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	project, err := h.projectService.Patch(r.Context(), projectID, &req)
	if err != nil {
		h.writeUpdateError(w, err, projectID.String())
		return
	}

	if err := WriteJSON(w, http.StatusOK, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE {prefix}/projects/{pid}
// Removes the project and returns 204. Deleting an already-deleted project
// yields 404, not success.
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.projectService.Delete(r.Context(), projectID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "not_found", fmt.Sprintf("Project with id %s not found", projectID)); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to delete project",
			zap.String("project_id", projectID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to delete project"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeUpdateError maps full and partial update failures onto HTTP
// responses. Validation and conflict failures both map to 400 with distinct
// error codes; anything unexpected is logged and returned as an opaque 500.
func (h *ProjectsHandler) writeUpdateError(w http.ResponseWriter, err error, projectID string) {
	if errors.Is(err, apperrors.ErrNotFound) {
		if err := ErrorResponse(w, http.StatusNotFound, "not_found", fmt.Sprintf("Project with id %s not found", projectID)); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if errors.Is(err, apperrors.ErrValidation) {
		if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if errors.Is(err, apperrors.ErrConflict) {
		if err := ErrorResponse(w, http.StatusBadRequest, "conflict", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	h.logger.Error("Failed to update project",
		zap.String("project_id", projectID),
		zap.Error(err))
	if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to update project"); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

// parseListFilter reads pagination and filter query parameters. Skip is
// floored at zero and limit is clamped to [1, maxListLimit]; malformed
// values get a 400 response and a false return.
func (h *ProjectsHandler) parseListFilter(w http.ResponseWriter, r *http.Request) (repositories.ListFilter, bool) {
	filter := repositories.ListFilter{Limit: defaultListLimit}
	query := r.URL.Query()

	if raw := query.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "skip must be an integer"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return repositories.ListFilter{}, false
		}
		filter.Skip = skip
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "limit must be an integer"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return repositories.ListFilter{}, false
		}
		filter.Limit = limit
	}

	if filter.Skip < 0 {
		filter.Skip = 0
	}
	if filter.Limit < 1 {
		filter.Limit = 1
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	if raw := query.Get("project_type"); raw != "" {
		projectType := models.ProjectType(raw)
		if !models.IsValidProjectType(projectType) {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "project_type must be one of: data_engineering, ml_ai, web, automation, saas"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return repositories.ListFilter{}, false
		}
		filter.ProjectType = &projectType
	}

	if raw := query.Get("status"); raw != "" {
		status := models.ProjectStatus(raw)
		if !models.IsValidProjectStatus(status) {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "status must be one of: active, archived, draft"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return repositories.ListFilter{}, false
		}
		filter.Status = &status
	}

	if raw := query.Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "featured must be a boolean"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return repositories.ListFilter{}, false
		}
		filter.Featured = &featured
	}

	return filter, true
}
