package handler

import (
	"github.com/gofiber/fiber/v2"

	"planportal/internal/http/middleware"
	"planportal/internal/model"
	"planportal/internal/service"
)

type setRoleRequest struct {
	UserID   string         `json:"user_id"`
	Role     model.Role     `json:"role"`
	Metadata model.Metadata `json:"metadata"`
}

type loginIDRequest struct {
	UserID string `json:"user_id"`
}

type userPasswordRequest struct {
	UserID   string         `json:"userId"`
	Password string         `json:"password"`
	Metadata model.Metadata `json:"metadata"`
}

// sameUser rejects account calls that name someone other than the caller.
func sameUser(c *fiber.Ctx, userID string) error {
	if userID == "" {
		return service.ErrIDRequired
	}
	if userID != middleware.UserID(c) {
		return service.ErrForbidden
	}
	return nil
}

// SetUserRole godoc
// @Summary Upsert the caller's role and merge metadata
// @Tags account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body setRoleRequest true "role and metadata"
// @Success 200 {object} model.User
// @Failure 403 {object} errorPayload
// @Router /api/set-user-role [post]
func SetUserRole(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req setRoleRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		if err := sameUser(c, req.UserID); err != nil {
			return err
		}
		u, err := svc.SetUserRole(c.UserContext(), req.UserID, req.Role, req.Metadata)
		if err != nil {
			return err
		}
		return c.JSON(u)
	}
}

// LoginIDTaken godoc
// @Summary Check whether a login id is registered
// @Description 200 when the login id is taken, 404 when it is available.
// @Tags account
// @Accept json
// @Produce json
// @Param body body loginIDRequest true "login id"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /api/get-user-email [post]
func LoginIDTaken(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginIDRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		taken, err := svc.LoginIDTaken(c.UserContext(), req.UserID)
		if err != nil {
			return err
		}
		if !taken {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "login id is available")
		}
		return c.JSON(fiber.Map{"taken": true})
	}
}

// UpdateUserPassword godoc
// @Summary Set the password and metadata of a new account
// @Tags account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body userPasswordRequest true "password and metadata"
// @Success 200 {object} model.User
// @Failure 422 {object} errorPayload
// @Router /api/functions/update-user-password [post]
func UpdateUserPassword(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req userPasswordRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		if err := sameUser(c, req.UserID); err != nil {
			return err
		}
		u, err := svc.UpdateUserPassword(c.UserContext(), req.UserID, req.Password, req.Metadata)
		if err != nil {
			return err
		}
		return c.JSON(u)
	}
}
