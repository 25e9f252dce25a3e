package handler

import (
	"github.com/gofiber/fiber/v2"

	"planportal/internal/http/middleware"
	"planportal/internal/service"
	"planportal/internal/validation"
)

// GetDraft godoc
// @Summary Saved snapshot of a form
// @Tags drafts
// @Produce json
// @Security BearerAuth
// @Param form path string true "form key"
// @Success 200 {object} model.Draft
// @Failure 404 {object} errorPayload
// @Router /api/drafts/{form} [get]
func GetDraft(svc service.DraftService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := svc.Get(c.UserContext(), middleware.UserID(c), validation.FormKey(c.Params("form")))
		if err != nil {
			return err
		}
		return c.JSON(d)
	}
}

// SaveDraft godoc
// @Summary Save a snapshot of a form
// @Description Password fields are never stored.
// @Tags drafts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param form path string true "form key"
// @Param body body map[string]string true "form values"
// @Success 200 {object} model.Draft
// @Router /api/drafts/{form} [put]
func SaveDraft(svc service.DraftService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var values validation.Values
		if err := bind(c, &values); err != nil {
			return err
		}
		d, err := svc.Save(c.UserContext(), middleware.UserID(c), validation.FormKey(c.Params("form")), values)
		if err != nil {
			return err
		}
		return c.JSON(d)
	}
}

// DeleteDraft godoc
// @Summary Discard a form snapshot
// @Tags drafts
// @Security BearerAuth
// @Param form path string true "form key"
// @Success 204
// @Router /api/drafts/{form} [delete]
func DeleteDraft(svc service.DraftService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), middleware.UserID(c), validation.FormKey(c.Params("form"))); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
