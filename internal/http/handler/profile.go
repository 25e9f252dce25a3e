package handler

import (
	"github.com/gofiber/fiber/v2"

	"planportal/internal/http/middleware"
	"planportal/internal/model"
	"planportal/internal/service"
	"planportal/internal/validation"
)

// GetProfile godoc
// @Summary The caller's profile and metadata, as stored on the server
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Router /api/profile [get]
func GetProfile(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.Get(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(u)
	}
}

// UpdateProfile godoc
// @Summary Update profile fields
// @Description A changed email or mobile number needs its verification token from /auth/verify,
// @Description sent as email_verification_token or phone_verification_token.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body map[string]string true "profile form values"
// @Success 200 {object} model.User
// @Failure 409 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /api/profile [put]
func UpdateProfile(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var values validation.Values
		if err := bind(c, &values); err != nil {
			return err
		}
		proofs := takeProofs(values)
		u, err := svc.Update(c.UserContext(), middleware.UserID(c), values, proofs)
		if err != nil {
			return err
		}
		return c.JSON(u)
	}
}

// ReplaceDocument godoc
// @Summary Replace one of the caller's documents
// @Description The previous object is deleted only after the new one is recorded.
// @Tags profile
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param purpose path string true "document purpose"
// @Param file formData file true "file"
// @Success 200 {object} model.StoredFile
// @Router /api/profile/documents/{purpose} [put]
func ReplaceDocument(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		in, f, err := openPart(fh)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		purpose := model.DocumentPurpose(c.Params("purpose"))
		sf, err := svc.ReplaceDocument(c.UserContext(), middleware.UserID(c), purpose, in)
		if err != nil {
			return err
		}
		return c.JSON(sf)
	}
}

// CheckDocuments godoc
// @Summary HEAD-check every stored document URL
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]service.DocumentStatus
// @Router /api/profile/documents/check [get]
func CheckDocuments(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.CheckDocuments(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": res})
	}
}
