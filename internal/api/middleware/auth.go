package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/statusbridge/internal/domain"
)

// Auth guards the webhook endpoints with a static bearer token, matching
// what Alertmanager's webhook_config credentials setting sends. An empty
// token disables the check.
func Auth(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Next()
		}

		provided := extractBearerToken(c)
		if provided == "" {
			return domain.ErrUnauthorized
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			return domain.ErrUnauthorized
		}

		return c.Next()
	}
}

// extractBearerToken extracts token from Authorization header
func extractBearerToken(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	if auth == "" {
		return ""
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
