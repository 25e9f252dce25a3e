package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// UserLocalKey is where the JWT middleware stores the parsed token.
const UserLocalKey = "user"

// JWTProtected rejects requests without a valid HS256 access token. The
// rejection is returned as fiber.ErrUnauthorized so the global error
// handler renders it.
func JWTProtected(secret []byte) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: secret},
		ContextKey: UserLocalKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return fiber.ErrUnauthorized
		},
	})
}

// UserID returns the subject of the authenticated token, or "".
func UserID(c *fiber.Ctx) string {
	token, ok := c.Locals(UserLocalKey).(*jwt.Token)
	if !ok || token == nil {
		return ""
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
