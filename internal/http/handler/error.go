package handler

import (
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"

	"planportal/internal/http/middleware"
	"planportal/internal/letterhead"
	"planportal/internal/model"
	"planportal/internal/service"
	"planportal/internal/validation"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

// errorEnvelope carries section and fields only for validation failures.
type errorEnvelope struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Section string                  `json:"section,omitempty"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

func writeValidation(c *fiber.Ctx, r validation.Result) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    "VALIDATION_FAILED",
			Message: "please correct the highlighted fields",
			Section: r.FirstSection(),
			Fields:  r.Errors,
		},
	})
}

type mapped struct {
	status int
	code   string
}

// serviceErrors maps sentinel errors to responses. Their messages are safe
// to show to users.
var serviceErrors = []struct {
	err error
	mapped
}{
	{errInvalidBody, mapped{fiber.StatusBadRequest, "INVALID_BODY"}},
	{errInvalidLimit, mapped{fiber.StatusBadRequest, "INVALID_LIMIT"}},
	{errInvalidOffset, mapped{fiber.StatusBadRequest, "INVALID_OFFSET"}},
	{service.ErrIDRequired, mapped{fiber.StatusBadRequest, "ID_REQUIRED"}},
	{service.ErrReaderNil, mapped{fiber.StatusBadRequest, "FILE_REQUIRED"}},
	{service.ErrForbidden, mapped{fiber.StatusForbidden, "FORBIDDEN"}},
	{service.ErrUserNotFound, mapped{fiber.StatusNotFound, "USER_NOT_FOUND"}},
	{service.ErrInvalidCredentials, mapped{fiber.StatusUnauthorized, "INVALID_CREDENTIALS"}},
	{service.ErrInvalidToken, mapped{fiber.StatusUnauthorized, "INVALID_TOKEN"}},
	{service.ErrWeakPassword, mapped{fiber.StatusUnprocessableEntity, "WEAK_PASSWORD"}},
	{service.ErrInvalidChannel, mapped{fiber.StatusBadRequest, "INVALID_CHANNEL"}},
	{service.ErrInvalidContact, mapped{fiber.StatusBadRequest, "INVALID_CONTACT"}},
	{service.ErrOTPThrottled, mapped{fiber.StatusTooManyRequests, "OTP_THROTTLED"}},
	{service.ErrOTPDelivery, mapped{fiber.StatusBadGateway, "OTP_DELIVERY_FAILED"}},
	{service.ErrOTPInvalid, mapped{fiber.StatusUnprocessableEntity, "OTP_INVALID"}},
	{service.ErrOTPAttempts, mapped{fiber.StatusTooManyRequests, "OTP_ATTEMPTS_EXCEEDED"}},
	{service.ErrInvalidPurpose, mapped{fiber.StatusBadRequest, "INVALID_PURPOSE"}},
	{service.ErrFileNotFound, mapped{fiber.StatusNotFound, "FILE_NOT_FOUND"}},
	{service.ErrFileTooLarge, mapped{fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"}},
	{service.ErrEmailNotVerified, mapped{fiber.StatusConflict, "EMAIL_NOT_VERIFIED"}},
	{service.ErrPhoneNotVerified, mapped{fiber.StatusConflict, "PHONE_NOT_VERIFIED"}},
	{service.ErrLoginIDTaken, mapped{fiber.StatusConflict, "LOGIN_ID_TAKEN"}},
	{service.ErrMissingDocuments, mapped{fiber.StatusUnprocessableEntity, "MISSING_DOCUMENTS"}},
	{service.ErrInvalidRole, mapped{fiber.StatusBadRequest, "INVALID_ROLE"}},
	{service.ErrAlreadyRegistered, mapped{fiber.StatusConflict, "ALREADY_REGISTERED"}},
	{service.ErrContactMismatch, mapped{fiber.StatusForbidden, "CONTACT_MISMATCH"}},
	{service.ErrProjectNotFound, mapped{fiber.StatusNotFound, "PROJECT_NOT_FOUND"}},
	{service.ErrEmptyPatch, mapped{fiber.StatusBadRequest, "EMPTY_PATCH"}},
	{service.ErrInvalidStatus, mapped{fiber.StatusBadRequest, "INVALID_STATUS"}},
	{service.ErrInvalidJSON, mapped{fiber.StatusBadRequest, "INVALID_JSON"}},
	{service.ErrDraftNotFound, mapped{fiber.StatusNotFound, "DRAFT_NOT_FOUND"}},
	{validation.ErrDeclarationNotAccepted, mapped{fiber.StatusUnprocessableEntity, "DECLARATION_REQUIRED"}},
	{validation.ErrUnknownForm, mapped{fiber.StatusNotFound, "UNKNOWN_FORM"}},
	{model.ErrUnknownVariant, mapped{fiber.StatusUnprocessableEntity, "UNKNOWN_VARIANT"}},
	{model.ErrUndeclaredKey, mapped{fiber.StatusUnprocessableEntity, "UNDECLARED_FIELD"}},
	{letterhead.ErrEmptyContent, mapped{fiber.StatusBadRequest, "EMPTY_LETTERHEAD"}},
}

// ErrorHandler returns a Fiber global error handler that standardizes error
// responses. Known service errors keep their message; anything unrecognised
// is reported to Sentry and rendered as a generic 500.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ve *validation.Error
		if errors.As(err, &ve) {
			return writeValidation(c, ve.Result)
		}
		for _, se := range serviceErrors {
			if errors.Is(err, se.err) {
				return writeError(c, se.status, se.code, se.err.Error())
			}
		}

		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "invalid or expired token")
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", "not allowed for this user")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "request body too large")
		case fiber.StatusTooManyRequests:
			return writeError(c, status, "RATE_LIMITED", "too many requests")
		}

		slog.ErrorContext(c.UserContext(), "request_failed",
			"request_id", requestIDFromCtx(c),
			"path", c.Path(),
			"error", err.Error(),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
		return writeError(c, status, "INTERNAL_ERROR", "internal server error")
	}
}
