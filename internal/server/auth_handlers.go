package server

import (
	"log/slog"

	"skillhive/internal/models"
	"skillhive/internal/observability"
	"skillhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the issued token and the caller's profile.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}

	user, err := s.svc.Users.Register(c.UserContext(), req)
	if err != nil {
		return models.Respond(c, err)
	}
	observability.Logger.InfoContext(c.UserContext(), "user registered", slog.String("user_id", user.ID))

	return s.respondWithToken(c, fiber.StatusCreated, user)
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}
	if req.Email == "" || req.Password == "" {
		return models.Respond(c, models.NewValidationError("Email and password are required"))
	}

	user, err := s.svc.Users.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return models.Respond(c, err)
	}
	return s.respondWithToken(c, fiber.StatusOK, user)
}

func (s *Server) respondWithToken(c *fiber.Ctx, status int, user *models.User) error {
	token, err := s.auth.IssueToken(user.ID, user.Role)
	if err != nil {
		return models.Respond(c, models.NewInternalError(err))
	}
	return c.Status(status).JSON(AuthResponse{Token: token, User: user})
}

// GetBadges handles GET /api/badges
func (s *Server) GetBadges(c *fiber.Ctx) error {
	return c.JSON(s.svc.Badges.Catalog())
}
