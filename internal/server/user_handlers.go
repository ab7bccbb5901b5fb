package server

import (
	"skillhive/internal/middleware"
	"skillhive/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.svc.Users.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var patch models.UserPatch
	if err := parseBody(c, &patch); err != nil {
		return models.Respond(c, err)
	}
	user, err := s.svc.Users.Update(c.UserContext(), middleware.UserID(c), patch)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(user)
}

// GetAllUsers handles GET /api/users
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	users, err := s.svc.Users.List(c.UserContext())
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	user, err := s.svc.Users.Get(c.UserContext(), id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(user)
}

// BlockUser handles POST /api/users/:id/block
func (s *Server) BlockUser(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	user, err := s.svc.Users.Block(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(user)
}

// UnblockUser handles DELETE /api/users/:id/block
func (s *Server) UnblockUser(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	user, err := s.svc.Users.Unblock(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(user)
}

// AdminUpdateUser handles PUT /api/admin/users/:id
func (s *Server) AdminUpdateUser(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	var patch models.AdminUserPatch
	if err := parseBody(c, &patch); err != nil {
		return models.Respond(c, err)
	}
	user, err := s.svc.Users.AdminUpdate(c.UserContext(), id, patch)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(user)
}

// AdminDeleteUser handles DELETE /api/admin/users/:id
func (s *Server) AdminDeleteUser(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	if id == middleware.UserID(c) {
		return models.Respond(c, models.NewValidationError("cannot delete your own account"))
	}
	if err := s.svc.Users.Delete(c.UserContext(), id); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
