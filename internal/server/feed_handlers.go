package server

import (
	"skillhive/internal/middleware"
	"skillhive/internal/models"
	"skillhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.svc.Feed.List(c.UserContext())
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.CreatePostInput
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}
	req.UserID = middleware.UserID(c)

	post, err := s.svc.Feed.Create(c.UserContext(), req)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	post, err := s.svc.Feed.ToggleLike(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(post)
}

// AddComment handles POST /api/posts/:id/comments
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	var req service.CommentInput
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}
	post, err := s.svc.Feed.AddComment(c.UserContext(), id, middleware.UserID(c), req)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// AIReplyToPost handles POST /api/posts/:id/ai-reply. The draft is returned
// to the caller and not stored.
func (s *Server) AIReplyToPost(c *fiber.Ctx) error {
	if err := s.requireAI(c); err != nil {
		return models.Respond(c, err)
	}
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	reply, err := s.svc.Feed.AIReply(c.UserContext(), id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"reply": reply})
}
