package server

import (
	"encoding/json"

	"skillhive/internal/featureflags"
	"skillhive/internal/middleware"
	"skillhive/internal/models"
	"skillhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SendMessageRequest is the body of POST /api/matches/:id/messages.
type SendMessageRequest struct {
	Text     string             `json:"text"`
	MediaURL string             `json:"mediaUrl"`
	Type     models.MessageType `json:"type"`
}

// TypingRequest is the body of PUT /api/matches/:id/typing.
type TypingRequest struct {
	Typing bool `json:"typing"`
}

// WhiteboardRequest is the body of PUT /api/matches/:id/whiteboard.
type WhiteboardRequest struct {
	Items []json.RawMessage `json:"items"`
}

// GetMessages handles GET /api/matches/:id/messages
func (s *Server) GetMessages(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	list, err := s.svc.Messages.List(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(list)
}

// GetLastMessage handles GET /api/matches/:id/messages/last. It answers 204
// when the match has no messages.
func (s *Server) GetLastMessage(c *fiber.Ctx) error {
	m, err := s.loadMatch(c)
	if err != nil {
		return models.Respond(c, err)
	}
	last, err := s.svc.Messages.Last(c.UserContext(), m.ID)
	if err != nil {
		return models.Respond(c, err)
	}
	if last == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(last)
}

// SendMessage handles POST /api/matches/:id/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	var req SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}

	msg, err := s.svc.Messages.Send(c.UserContext(), service.SendMessageInput{
		MatchID:  id,
		SenderID: middleware.UserID(c),
		Text:     req.Text,
		MediaURL: req.MediaURL,
		Type:     req.Type,
	})
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// MarkMessagesRead handles POST /api/matches/:id/read
func (s *Server) MarkMessagesRead(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	n, err := s.svc.Messages.MarkRead(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

// SetTyping handles PUT /api/matches/:id/typing
func (s *Server) SetTyping(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	var req TypingRequest
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}
	if err := s.svc.Messages.SetTyping(c.UserContext(), id, middleware.UserID(c), req.Typing); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPartnerTyping handles GET /api/matches/:id/typing. It reports whether
// the caller's partner is typing.
func (s *Server) GetPartnerTyping(c *fiber.Ctx) error {
	m, err := s.loadMatch(c)
	if err != nil {
		return models.Respond(c, err)
	}
	partner := m.Partner(middleware.UserID(c))
	typing, err := s.svc.Messages.IsTyping(c.UserContext(), m.ID, partner)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"userId": partner, "typing": typing})
}

// GetWhiteboard handles GET /api/matches/:id/whiteboard
func (s *Server) GetWhiteboard(c *fiber.Ctx) error {
	if err := s.requireFeature(c, featureflags.Whiteboard); err != nil {
		return models.Respond(c, err)
	}
	m, err := s.loadMatch(c)
	if err != nil {
		return models.Respond(c, err)
	}
	board, err := s.svc.Whiteboards.Get(c.UserContext(), m.ID)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(board)
}

// SaveWhiteboard handles PUT /api/matches/:id/whiteboard
func (s *Server) SaveWhiteboard(c *fiber.Ctx) error {
	if err := s.requireFeature(c, featureflags.Whiteboard); err != nil {
		return models.Respond(c, err)
	}
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	var req WhiteboardRequest
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}
	board, err := s.svc.Whiteboards.Save(c.UserContext(), id, middleware.UserID(c), req.Items)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(board)
}
