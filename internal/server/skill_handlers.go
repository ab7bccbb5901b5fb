package server

import (
	"log/slog"

	"skillhive/internal/middleware"
	"skillhive/internal/models"
	"skillhive/internal/observability"
	"skillhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// QuizQuestionView is a quiz question without its answer key.
type QuizQuestionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// SubmitQuizRequest is the body of POST /api/skills/:id/quiz.
type SubmitQuizRequest struct {
	Answers []int `json:"answers"`
}

// VerifySkillRequest is the body of POST /api/admin/skills/:id/verify.
type VerifySkillRequest struct {
	UserID string `json:"userId"`
}

// GetSkills handles GET /api/skills
func (s *Server) GetSkills(c *fiber.Ctx) error {
	skills, err := s.svc.Skills.List(c.UserContext())
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(skills)
}

// AddSkill handles POST /api/skills. Members list skills for themselves;
// admins may set ownerId.
func (s *Server) AddSkill(c *fiber.Ctx) error {
	var req service.AddSkillInput
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}
	if req.OwnerID == "" || !middleware.IsAdmin(c) {
		req.OwnerID = middleware.UserID(c)
	}

	skill, err := s.svc.Skills.Add(c.UserContext(), req)
	if err != nil {
		if skill != nil {
			// The listing exists but the owner's profile was not updated.
			observability.Logger.WarnContext(c.UserContext(), "skill added without profile update",
				slog.String("skill_id", skill.ID),
				slog.String("error", err.Error()),
			)
			return c.Status(fiber.StatusCreated).JSON(skill)
		}
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(skill)
}

// DeleteSkill handles DELETE /api/skills/:id
func (s *Server) DeleteSkill(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	skill, err := s.svc.Skills.Get(c.UserContext(), id)
	if err != nil {
		return models.Respond(c, err)
	}
	if skill.OwnerID != middleware.UserID(c) && !middleware.IsAdmin(c) {
		return models.Respond(c, models.NewForbiddenError("only the owner can delete this skill"))
	}
	if err := s.svc.Skills.Delete(c.UserContext(), id); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// StartSkillQuiz handles GET /api/skills/:id/quiz. It generates a quiz for the
// skill and keeps the answer key server-side.
func (s *Server) StartSkillQuiz(c *fiber.Ctx) error {
	if err := s.requireAI(c); err != nil {
		return models.Respond(c, err)
	}
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	skill, err := s.svc.Skills.Get(c.UserContext(), id)
	if err != nil {
		return models.Respond(c, err)
	}

	questions, err := s.svc.Assistant.SkillQuiz(c.UserContext(), skill.Name, skill.Level)
	if err != nil {
		return models.Respond(c, err)
	}
	s.quizzes.Put(middleware.UserID(c), skill.ID, questions)

	views := make([]QuizQuestionView, len(questions))
	for i, q := range questions {
		views[i] = QuizQuestionView{Question: q.Question, Options: q.Options}
	}
	return c.JSON(fiber.Map{
		"skillId":   skill.ID,
		"questions": views,
		"passMark":  service.QuizPassMark,
	})
}

// SubmitSkillQuiz handles POST /api/skills/:id/quiz
func (s *Server) SubmitSkillQuiz(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	var req SubmitQuizRequest
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}

	userID := middleware.UserID(c)
	questions, ok := s.quizzes.Take(userID, id)
	if !ok {
		return models.Respond(c, models.NewNotFoundError("Quiz", id))
	}

	res, err := s.svc.Skills.VerifyWithQuiz(c.UserContext(), userID, id, questions, req.Answers)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(res)
}

// AdminVerifySkill handles POST /api/admin/skills/:id/verify
func (s *Server) AdminVerifySkill(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	var req VerifySkillRequest
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}
	if req.UserID == "" {
		return models.Respond(c, models.NewValidationError("userId is required"))
	}

	verified, err := s.svc.Skills.Verify(c.UserContext(), req.UserID, id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"verified": verified})
}
