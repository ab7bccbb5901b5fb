package server

import (
	"time"

	"skillhive/internal/middleware"
	"skillhive/internal/models"
	"skillhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdateMatchRequest is the body of PUT /api/matches/:id. It replaces the
// mutable fields of the match.
type UpdateMatchRequest struct {
	Status        models.MatchStatus `json:"status"`
	ScheduledTime *time.Time         `json:"scheduledTime"`
	MeetLink      *string            `json:"meetLink"`
}

// ScheduleRequest is the body of POST /api/matches/:id/schedule.
type ScheduleRequest struct {
	Time time.Time `json:"time"`
}

// GetMatches handles GET /api/matches
func (s *Server) GetMatches(c *fiber.Ctx) error {
	list, err := s.svc.Matches.ListForUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(list)
}

// GetAllMatches handles GET /api/admin/matches
func (s *Server) GetAllMatches(c *fiber.Ctx) error {
	return s.GetMatches(c)
}

// GetMatch handles GET /api/matches/:id
func (s *Server) GetMatch(c *fiber.Ctx) error {
	m, err := s.loadMatch(c)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(m)
}

// CreateMatch handles POST /api/matches. The caller is always the initiator.
func (s *Server) CreateMatch(c *fiber.Ctx) error {
	var req service.CreateMatchInput
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}
	req.User1ID = middleware.UserID(c)

	m, err := s.svc.Matches.Create(c.UserContext(), req)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

// UpdateMatch handles PUT /api/matches/:id
func (s *Server) UpdateMatch(c *fiber.Ctx) error {
	m, err := s.loadMatch(c)
	if err != nil {
		return models.Respond(c, err)
	}
	var req UpdateMatchRequest
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}
	switch req.Status {
	case models.MatchPending, models.MatchAccepted, models.MatchDeclined:
	default:
		return models.Respond(c, models.NewValidationError("status must be pending, accepted or declined"))
	}

	next := *m
	next.Status = req.Status
	next.ScheduledTime = req.ScheduledTime
	next.MeetLink = req.MeetLink
	updated, err := s.svc.Matches.Update(c.UserContext(), next)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(updated)
}

// AcceptMatch handles POST /api/matches/:id/accept
func (s *Server) AcceptMatch(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	m, err := s.svc.Matches.Accept(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(m)
}

// DeclineMatch handles POST /api/matches/:id/decline
func (s *Server) DeclineMatch(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	m, err := s.svc.Matches.Decline(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(m)
}

// ScheduleSession handles POST /api/matches/:id/schedule
func (s *Server) ScheduleSession(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	var req ScheduleRequest
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}
	m, err := s.svc.Matches.Schedule(c.UserContext(), id, middleware.UserID(c), req.Time)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(m)
}

// CompleteSession handles POST /api/matches/:id/complete
func (s *Server) CompleteSession(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	session, err := s.svc.Matches.CompleteSession(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// GetMySessions handles GET /api/sessions
func (s *Server) GetMySessions(c *fiber.Ctx) error {
	list, err := s.svc.Matches.SessionsForUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(list)
}

// GetMyFeedback handles GET /api/feedback
func (s *Server) GetMyFeedback(c *fiber.Ctx) error {
	list, err := s.svc.Matches.FeedbackForUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(list)
}

// LeaveFeedback handles POST /api/feedback
func (s *Server) LeaveFeedback(c *fiber.Ctx) error {
	var req service.FeedbackInput
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}
	req.FromUserID = middleware.UserID(c)

	fb, err := s.svc.Matches.LeaveFeedback(c.UserContext(), req)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fb)
}
