package server

import (
	"strings"

	"skillhive/internal/ai"
	"skillhive/internal/featureflags"
	"skillhive/internal/middleware"
	"skillhive/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parseBody decodes the request body into dest or returns a validation error.
func parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// param returns a trimmed route parameter or a validation error when empty.
func param(c *fiber.Ctx, name string) (string, error) {
	v := strings.TrimSpace(c.Params(name))
	if v == "" {
		return "", models.NewValidationError("Invalid " + name)
	}
	return v, nil
}

// loadMatch returns the match named by the :id param when the caller is a
// party or an admin.
func (s *Server) loadMatch(c *fiber.Ctx) (*models.Match, error) {
	id, err := param(c, "id")
	if err != nil {
		return nil, err
	}
	m, err := s.svc.Matches.Get(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if !m.Involves(middleware.UserID(c)) && !middleware.IsAdmin(c) {
		return nil, models.NewForbiddenError("not a party of this match")
	}
	return m, nil
}

// requireAI fails with 503 when no model is configured or the assistant flag
// is off for the caller.
func (s *Server) requireAI(c *fiber.Ctx) error {
	if !s.svc.Assistant.Enabled() || !s.flags.Enabled(featureflags.AIAssistant, middleware.UserID(c)) {
		return models.NewUnavailableError("AI assistant", ai.ErrDisabled)
	}
	return nil
}

// requireFeature fails with 403 when flag is off for the caller.
func (s *Server) requireFeature(c *fiber.Ctx, flag string) error {
	if !s.flags.Enabled(flag, middleware.UserID(c)) {
		return models.NewForbiddenError("feature " + flag + " is disabled")
	}
	return nil
}
