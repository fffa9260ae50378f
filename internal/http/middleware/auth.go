package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"insadmin/internal/auth"
	"insadmin/internal/model"
)

// AuthClaimsLocalKey is the key used to store the verified token claims in
// Fiber's context locals.
const AuthClaimsLocalKey = "auth_claims"

// ClaimsFromCtx returns the claims stored by Auth, or nil when the request is
// unauthenticated.
func ClaimsFromCtx(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(AuthClaimsLocalKey).(*auth.Claims)
	return claims
}

// Auth verifies the Bearer token on every request and stores its claims in
// context locals. Requests without a valid token are rejected with 401.
func Auth(tokens *auth.Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			return unauthorized(c)
		}
		claims, err := tokens.Verify(tokenString)
		if err != nil {
			return unauthorized(c)
		}
		c.Locals(AuthClaimsLocalKey, claims)
		return c.Next()
	}
}

// RequireSuperAdmin rejects requests whose verified claims do not carry the
// super admin role. Must run after Auth.
func RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := ClaimsFromCtx(c)
		if claims == nil || claims.Role != model.RoleSuperAdmin {
			rid, _ := c.Locals(RequestIDLocalKey).(string)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"request_id": rid,
				"error": fiber.Map{
					"code":    "FORBIDDEN",
					"message": "super admin role required",
				},
			})
		}
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	rid, _ := c.Locals(RequestIDLocalKey).(string)
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"request_id": rid,
		"error": fiber.Map{
			"code":    "UNAUTHORIZED",
			"message": "missing or invalid token",
		},
	})
}
