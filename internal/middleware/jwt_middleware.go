package middleware

import (
	"context"
	"strings"

	"katalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type credentialKey struct{}

// WithUser returns a copy of ctx carrying cred.
func WithUser(ctx context.Context, cred services.Credential) context.Context {
	return context.WithValue(ctx, credentialKey{}, cred)
}

// UserFromContext returns the credential stored by AuthRequired.
func UserFromContext(ctx context.Context) (services.Credential, bool) {
	cred, ok := ctx.Value(credentialKey{}).(services.Credential)
	return cred, ok
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		cred, err := authService.ValidateToken(parts[1])
		if err != nil {
			logger.Debug().Err(err).Str("path", c.Path()).Msg("JWT validation failed")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		c.SetUserContext(WithUser(c.UserContext(), cred))
		c.Locals("user_id", cred.UserID)
		c.Locals("username", cred.Username)

		return c.Next()
	}
}
