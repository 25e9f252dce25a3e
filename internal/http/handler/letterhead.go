package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"planportal/internal/http/middleware"
	"planportal/internal/letterhead"
	"planportal/internal/service"
)

// letterheadRequest is the overlay text plus an optional background image.
// Blank fields are filled from the caller's profile.
type letterheadRequest struct {
	letterhead.Content
	Background *backgroundRequest `json:"background,omitempty"`
}

type backgroundRequest struct {
	// Data is base64 in JSON.
	Data []byte `json:"data"`
	Type string `json:"type"`
}

// Response headers describing the stored letterhead.
const (
	HeaderDroppedLines = "X-Letterhead-Dropped-Lines"
	HeaderFilePath     = "X-Letterhead-Path"
)

// GenerateLetterhead godoc
// @Summary Render a letterhead PDF
// @Description Body lines past the footer are dropped; the count is reported in X-Letterhead-Dropped-Lines.
// @Tags letterhead
// @Accept json
// @Produce application/pdf
// @Security BearerAuth
// @Param body body letterheadRequest true "letterhead content"
// @Success 200 {file} binary
// @Failure 400 {object} errorPayload
// @Router /api/letterhead [post]
func GenerateLetterhead(svc service.LetterheadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req letterheadRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		var bg *letterhead.Background
		if req.Background != nil && len(req.Background.Data) > 0 {
			bg = &letterhead.Background{Data: req.Background.Data, Type: req.Background.Type}
		}

		out, err := svc.Generate(c.UserContext(), middleware.UserID(c), req.Content, bg)
		if err != nil {
			return err
		}
		c.Set(HeaderDroppedLines, strconv.Itoa(out.Dropped))
		if out.File != nil {
			c.Set(HeaderFilePath, out.File.Path)
		}
		c.Set(fiber.HeaderContentDisposition, `inline; filename="letterhead.pdf"`)
		c.Type("pdf")
		return c.Send(out.PDF)
	}
}
