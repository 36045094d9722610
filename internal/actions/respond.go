// Package actions exposes the bridge's HTTP action surface: plain REST
// endpoints under /actions guarded by an API key, for callers that cannot
// speak MCP. Each action maps onto the same gateway cores the MCP tools
// use.
package actions

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/alphaomegateam/taiga-bridge/internal/errors"
	"github.com/alphaomegateam/taiga-bridge/internal/gateway"
	"github.com/alphaomegateam/taiga-bridge/internal/requestid"
)

// errorJSON is the uniform error body of the action surface.
func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// errorStatus maps bridge errors onto HTTP status codes. Caller mistakes
// and remote rejections are 400s; version conflicts count as remote
// rejections here, the rewritten message alone tells them apart.
func errorStatus(err error) int {
	switch {
	case errors.IsValidation(err), errors.IsNotFound(err):
		return fiber.StatusBadRequest
	case errors.IsConflict(err):
		return fiber.StatusBadRequest
	case stderrors.Is(err, errors.ErrKeyNotConfigured):
		return fiber.StatusServiceUnavailable
	case stderrors.Is(err, errors.ErrUnauthorized):
		return fiber.StatusUnauthorized
	}
	if _, ok := errors.AsAPIError(err); ok {
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// writeError renders err as the uniform error body. Anything unexpected
// is logged in full and reported opaquely.
func writeError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		logger.Error().Err(err).
			Str("path", c.Path()).
			Str("request_id", requestid.FromContext(c.UserContext())).
			Msg("unhandled action error")
		return errorJSON(c, status, "internal server error")
	}
	if stderrors.Is(err, errors.ErrKeyNotConfigured) {
		return errorJSON(c, status, "Proxy API key is not configured")
	}
	return errorJSON(c, status, err.Error())
}

// body is a decoded JSON action payload. Key presence is significant:
// an absent key becomes the Unset sentinel, an explicit null stays nil.
type body map[string]any

func (b body) fieldOrUnset(name string) any {
	v, ok := b[name]
	if !ok {
		return gateway.Unset
	}
	return v
}

func (b body) requireInt(name string) (int, error) {
	v, ok := b[name]
	if !ok {
		return 0, errors.NewValidation("'%s' is required", name)
	}
	return gateway.RequireInt(v, name)
}

func (b body) requireString(name string) (string, error) {
	v, ok := b[name]
	if !ok {
		return "", errors.NewValidation("'%s' is required", name)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", errors.NewValidation("'%s' is required", name)
	}
	return s, nil
}

func parseBody(c *fiber.Ctx) (body, error) {
	var b body
	if err := c.App().Config().JSONDecoder(c.Body(), &b); err != nil {
		return nil, errors.NewValidation("request body must be a JSON object")
	}
	if b == nil {
		b = body{}
	}
	return b, nil
}
