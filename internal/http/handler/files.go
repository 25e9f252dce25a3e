package handler

import (
	"errors"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"planportal/internal/http/middleware"
	"planportal/internal/model"
	"planportal/internal/service"
)

type checkURLRequest struct {
	URL string `json:"url"`
}

var (
	errInvalidLimit  = errors.New("invalid limit")
	errInvalidOffset = errors.New("invalid offset")
)

// pageParams reads limit and offset; the services clamp the values.
func pageParams(c *fiber.Ctx) (limit, offset int, err error) {
	if limit, err = strconv.Atoi(c.Query("limit", "10")); err != nil {
		return 0, 0, errInvalidLimit
	}
	if offset, err = strconv.Atoi(c.Query("offset", "0")); err != nil {
		return 0, 0, errInvalidOffset
	}
	return limit, offset, nil
}

// openPart opens an uploaded part as a FileInput. The caller closes the file.
func openPart(fh *multipart.FileHeader) (service.FileInput, multipart.File, error) {
	f, err := fh.Open()
	if err != nil {
		return service.FileInput{}, nil, err
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return service.FileInput{Filename: fh.Filename, ContentType: ct, Reader: f}, f, nil
}

// UploadFile godoc
// @Summary Upload a document (idempotent by content)
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param purpose formData string true "document purpose"
// @Param file formData file true "file"
// @Success 201 {object} model.StoredFile "new object"
// @Success 200 {object} model.StoredFile "identical content already stored"
// @Failure 400 {object} errorPayload
// @Router /api/files [post]
func UploadFile(svc service.UploadService) fiber.Handler {
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

		purpose := model.DocumentPurpose(c.FormValue("purpose"))
		sf, err := svc.Upload(c.UserContext(), middleware.UserID(c), purpose, in.Filename, in.ContentType, in.Reader)
		if err != nil {
			return err
		}
		status := fiber.StatusOK
		if sf.Created {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(sf)
	}
}

// ListFiles godoc
// @Summary List the caller's uploaded files
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param limit query int false "limit" default(10)
// @Param offset query int false "offset" default(0)
// @Success 200 {object} service.FileListResult
// @Router /api/files [get]
func ListFiles(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return err
		}
		res, err := svc.List(c.UserContext(), middleware.UserID(c), limit, offset)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// DeleteFile godoc
// @Summary Delete one of the caller's files
// @Tags files
// @Security BearerAuth
// @Param path query string true "object path"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /api/files [delete]
func DeleteFile(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Query("path")
		if path == "" {
			return writeError(c, fiber.StatusBadRequest, "PATH_REQUIRED", "path is required")
		}
		if err := svc.Delete(c.UserContext(), middleware.UserID(c), path); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// CheckFile godoc
// @Summary Check whether a stored public URL still resolves
// @Tags files
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body checkURLRequest true "url"
// @Success 200 {object} map[string]bool
// @Router /api/files/check [post]
func CheckFile(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req checkURLRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		if req.URL == "" {
			return writeError(c, fiber.StatusBadRequest, "URL_REQUIRED", "url is required")
		}
		ok, err := svc.Verify(c.UserContext(), req.URL)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"exists": ok})
	}
}
