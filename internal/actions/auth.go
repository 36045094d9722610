package actions

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// APIKeyMiddleware guards the /actions group. With no key configured the
// whole surface answers 503, so a misconfigured deployment fails loudly
// instead of silently accepting anything.
func APIKeyMiddleware(expected string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if expected == "" {
			return errorJSON(c, fiber.StatusServiceUnavailable, "Proxy API key is not configured")
		}
		key := c.Get("X-Api-Key")
		if key == "" {
			return errorJSON(c, fiber.StatusUnauthorized, "Missing X-Api-Key header")
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(expected)) != 1 {
			return errorJSON(c, fiber.StatusUnauthorized, "Invalid API key")
		}
		return c.Next()
	}
}
