package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"planportal/internal/http/middleware"
	"planportal/internal/model"
	"planportal/internal/service"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type otpRequest struct {
	Channel    model.OTPChannel `json:"channel"`
	Contact    string           `json:"contact"`
	CreateUser bool             `json:"create_user"`
}

type verifyRequest struct {
	Channel model.OTPChannel `json:"channel"`
	Contact string           `json:"contact"`
	Code    string           `json:"code"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

var errInvalidBody = errors.New("invalid request body")

// bind decodes the request body into v.
func bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return errInvalidBody
	}
	return nil
}

// Login godoc
// @Summary Sign in with email, mobile number or login id
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "credentials"
// @Success 200 {object} model.Session
// @Failure 401 {object} errorPayload
// @Router /api/auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		s, err := svc.SignInWithPassword(c.UserContext(), req.Login, req.Password)
		if err != nil {
			return err
		}
		return c.JSON(s)
	}
}

// Refresh godoc
// @Summary Rotate a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body refreshRequest true "refresh token"
// @Success 200 {object} model.Session
// @Failure 401 {object} errorPayload
// @Router /api/auth/refresh [post]
func Refresh(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req refreshRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		s, err := svc.Refresh(c.UserContext(), req.RefreshToken)
		if err != nil {
			return err
		}
		return c.JSON(s)
	}
}

// Logout godoc
// @Summary Revoke a refresh token
// @Tags auth
// @Accept json
// @Param body body refreshRequest true "refresh token"
// @Success 204
// @Router /api/auth/logout [post]
func Logout(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req refreshRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		if err := svc.SignOut(c.UserContext(), req.RefreshToken); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// RequestOTP godoc
// @Summary Send a one-time code by email or SMS
// @Tags auth
// @Accept json
// @Produce json
// @Param body body otpRequest true "channel and contact"
// @Success 200 {object} service.OTPSent
// @Failure 429 {object} errorPayload
// @Router /api/auth/otp [post]
func RequestOTP(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req otpRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		sent, err := svc.SendOTP(c.UserContext(), req.Channel, req.Contact, req.CreateUser)
		if err != nil {
			return err
		}
		return c.JSON(sent)
	}
}

// VerifyOTP godoc
// @Summary Verify a one-time code
// @Description The response carries a session when an account is bound to the contact.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body verifyRequest true "code"
// @Success 200 {object} model.Verification
// @Failure 422 {object} errorPayload
// @Router /api/auth/verify [post]
func VerifyOTP(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req verifyRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		v, err := svc.VerifyOTP(c.UserContext(), req.Channel, req.Contact, req.Code)
		if err != nil {
			return err
		}
		return c.JSON(v)
	}
}

// GetUser godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Router /api/auth/user [get]
func GetUser(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.GetUser(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(u)
	}
}

// UpdatePassword godoc
// @Summary Change the current user's password
// @Tags auth
// @Accept json
// @Security BearerAuth
// @Param body body passwordRequest true "new password"
// @Success 204
// @Failure 422 {object} errorPayload
// @Router /api/auth/user [put]
func UpdatePassword(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req passwordRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		if err := svc.UpdatePassword(c.UserContext(), middleware.UserID(c), req.Password); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
