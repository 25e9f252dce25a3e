package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"planportal/internal/http/middleware"
	"planportal/internal/model"
	"planportal/internal/service"
)

type createProjectRequest struct {
	Title       string          `json:"title"`
	ProjectInfo json.RawMessage `json:"project_info"`
}

// ListProjects godoc
// @Summary List the caller's applications
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param status query string false "filter by status"
// @Param limit query int false "limit" default(10)
// @Param offset query int false "offset" default(0)
// @Success 200 {object} service.ProjectListResult
// @Failure 400 {object} errorPayload
// @Router /api/projects [get]
func ListProjects(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return err
		}
		status := model.ProjectStatus(c.Query("status"))
		res, err := svc.List(c.UserContext(), middleware.UserID(c), status, limit, offset)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// CreateProject godoc
// @Summary Start a draft application
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body createProjectRequest false "title and project info"
// @Success 201 {object} model.Project
// @Router /api/projects [post]
func CreateProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createProjectRequest
		if len(c.Body()) > 0 {
			if err := bind(c, &req); err != nil {
				return err
			}
		}
		p, err := svc.Create(c.UserContext(), middleware.UserID(c), req.Title, req.ProjectInfo)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// GetProject godoc
// @Summary One of the caller's applications
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "project id"
// @Success 200 {object} model.Project
// @Failure 404 {object} errorPayload
// @Router /api/projects/{id} [get]
func GetProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		p, err := svc.Get(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// PatchProject godoc
// @Summary Partially update an application
// @Description Present documents are merged key by key; absent ones are kept.
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "project id"
// @Param body body model.ProjectPatch true "patch"
// @Success 200 {object} model.Project
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/projects/{id} [put]
func PatchProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var patch model.ProjectPatch
		if err := bind(c, &patch); err != nil {
			return err
		}
		if patch.UserID == "" {
			patch.UserID = middleware.UserID(c)
		}
		if err := sameUser(c, patch.UserID); err != nil {
			return err
		}
		p, err := svc.Patch(c.UserContext(), id, patch)
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// GetDashboard godoc
// @Summary Application counts per status and the most recent applications
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Dashboard
// @Router /api/dashboard [get]
func GetDashboard(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := svc.Dashboard(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(d)
	}
}
