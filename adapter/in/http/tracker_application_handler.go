package http

import (
	"errors"
	"strconv"
	"strings"

	"tracker_server/adapter/out/persistence"
	"tracker_server/core/domain"
	"tracker_server/core/port/out"
	"tracker_server/infra/middleware"
	"tracker_server/pkg/apperr"
	"tracker_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ApplicationHandler exposes CRUD over tracked applications.
type ApplicationHandler struct {
	repo out.ApplicationRepository
}

func NewApplicationHandler(repo out.ApplicationRepository) *ApplicationHandler {
	return &ApplicationHandler{repo: repo}
}

func (h *ApplicationHandler) Register(router fiber.Router) {
	router.Get("/applications", h.List)
	router.Post("/applications", h.Create)
	router.Patch("/applications/:id", h.UpdateStatus)
	router.Delete("/applications/:id", h.Delete)
}

// List returns the user's applications, newest first.
// GET /api/v1/applications
func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return apperr.Unauthorized("")
	}

	apps, err := h.repo.ListByUser(c.Context(), userID)
	if err != nil {
		return apperr.DatabaseError("list applications", err)
	}
	if apps == nil {
		apps = []*domain.Application{}
	}

	return response.OK(c, apps)
}

// CreateApplicationRequest is the manual-entry request body.
type CreateApplicationRequest struct {
	Company string `json:"company"`
	Role    string `json:"role"`
	Status  string `json:"status"`
}

// Create adds a manually entered application.
// POST /api/v1/applications
func (h *ApplicationHandler) Create(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return apperr.Unauthorized("")
	}

	var req CreateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	req.Company = strings.TrimSpace(req.Company)
	req.Role = strings.TrimSpace(req.Role)
	if req.Company == "" {
		return apperr.MissingField("company")
	}
	if req.Role == "" {
		return apperr.MissingField("role")
	}

	status := domain.StatusApplied
	if req.Status != "" {
		status = domain.ApplicationStatus(req.Status)
		if !status.IsValid() {
			return apperr.InvalidInput("status", "must be one of applied, accepted, rejected")
		}
	}

	app := &domain.Application{
		UserID:  userID,
		Company: req.Company,
		Role:    req.Role,
		Status:  status,
	}
	if err := h.repo.Create(c.Context(), app); err != nil {
		return apperr.DatabaseError("create application", err)
	}

	return response.Created(c, app)
}

// UpdateStatusRequest updates an application's lifecycle state.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus changes the status of one application.
// PATCH /api/v1/applications/:id
func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return apperr.Unauthorized("")
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	status := domain.ApplicationStatus(req.Status)
	if !status.IsValid() {
		return apperr.InvalidInput("status", "must be one of applied, accepted, rejected")
	}

	if err := h.repo.UpdateStatus(c.Context(), userID, id, status); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return apperr.NotFound("application")
		}
		return apperr.DatabaseError("update application status", err)
	}

	return response.OK(c, fiber.Map{"id": id, "status": status})
}

// Delete removes one application.
// DELETE /api/v1/applications/:id
func (h *ApplicationHandler) Delete(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return apperr.Unauthorized("")
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.repo.Delete(c.Context(), userID, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return apperr.NotFound("application")
		}
		return apperr.DatabaseError("delete application", err)
	}

	return response.NoContent(c)
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidInput("id", "must be a positive integer")
	}
	return id, nil
}
