package server

import (
	"skillhive/internal/middleware"
	"skillhive/internal/models"

	"github.com/gofiber/fiber/v2"
)

// RoadmapRequest is the body of POST /api/ai/roadmap.
type RoadmapRequest struct {
	Skill string `json:"skill"`
}

// ChatRequest is the body of POST /api/ai/chat. An empty sessionId opens a
// new guide session.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// ChatResponse carries the guide's answer and the session to continue.
type ChatResponse struct {
	SessionID string `json:"sessionId"`
	Reply     string `json:"reply"`
}

// GetRecommendations handles GET /api/ai/recommendations
func (s *Server) GetRecommendations(c *fiber.Ctx) error {
	if err := s.requireAI(c); err != nil {
		return models.Respond(c, err)
	}
	ctx := c.UserContext()
	userID := middleware.UserID(c)

	user, err := s.svc.Users.Get(ctx, userID)
	if err != nil {
		return models.Respond(c, err)
	}
	users, err := s.svc.Users.List(ctx)
	if err != nil {
		return models.Respond(c, err)
	}
	skills, err := s.svc.Skills.List(ctx)
	if err != nil {
		return models.Respond(c, err)
	}
	tasks, err := s.svc.Tasks.ListForUser(ctx, userID)
	if err != nil {
		return models.Respond(c, err)
	}

	recs, err := s.svc.Assistant.Recommendations(ctx, user, users, skills, tasks)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(recs)
}

// GetDiscoveries handles GET /api/ai/discoveries
func (s *Server) GetDiscoveries(c *fiber.Ctx) error {
	if err := s.requireAI(c); err != nil {
		return models.Respond(c, err)
	}
	ctx := c.UserContext()

	user, err := s.svc.Users.Get(ctx, middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	users, err := s.svc.Users.List(ctx)
	if err != nil {
		return models.Respond(c, err)
	}
	skills, err := s.svc.Skills.List(ctx)
	if err != nil {
		return models.Respond(c, err)
	}

	peers, err := s.svc.Assistant.SynergyDiscoveries(ctx, user, users, skills)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(peers)
}

// GetRoadmap handles POST /api/ai/roadmap
func (s *Server) GetRoadmap(c *fiber.Ctx) error {
	if err := s.requireAI(c); err != nil {
		return models.Respond(c, err)
	}
	var req RoadmapRequest
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}
	if req.Skill == "" {
		return models.Respond(c, models.NewValidationError("skill is required"))
	}

	roadmap, err := s.svc.Assistant.Roadmap(c.UserContext(), req.Skill)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(roadmap)
}

// ChatWithGuide handles POST /api/ai/chat
func (s *Server) ChatWithGuide(c *fiber.Ctx) error {
	if err := s.requireAI(c); err != nil {
		return models.Respond(c, err)
	}
	var req ChatRequest
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}

	sessionID, reply, err := s.svc.Assistant.Chat(c.UserContext(), req.SessionID, req.Message)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(ChatResponse{SessionID: sessionID, Reply: reply})
}

// EndGuideChat handles DELETE /api/ai/chat/:id
func (s *Server) EndGuideChat(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	s.svc.Assistant.EndChat(id)
	return c.SendStatus(fiber.StatusNoContent)
}
