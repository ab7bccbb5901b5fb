package server

import (
	"skillhive/internal/middleware"
	"skillhive/internal/models"
	"skillhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ResolveReportRequest is the body of POST /api/admin/reports/:id/resolve.
type ResolveReportRequest struct {
	Status models.ReportStatus `json:"status"`
}

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	list, err := s.svc.Notifications.ListForUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(list)
}

// MarkNotificationRead handles POST /api/notifications/:id/read. Only the
// recipient may mark a notification.
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	list, err := s.svc.Notifications.ListForUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	owned := false
	for _, n := range list {
		if n.ID == id {
			owned = true
			break
		}
	}
	if !owned {
		return models.Respond(c, models.NewNotFoundError("Notification", id))
	}
	if err := s.svc.Notifications.MarkRead(c.UserContext(), id); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	n, err := s.svc.Notifications.MarkAllRead(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

// GetTasks handles GET /api/tasks
func (s *Server) GetTasks(c *fiber.Ctx) error {
	list, err := s.svc.Tasks.ListForUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(list)
}

// CreateTask handles POST /api/tasks
func (s *Server) CreateTask(c *fiber.Ctx) error {
	var req service.CreateTaskInput
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}
	req.UserID = middleware.UserID(c)

	task, err := s.svc.Tasks.Create(c.UserContext(), req)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// CompleteTask handles POST /api/tasks/:id/complete
func (s *Server) CompleteTask(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	res, err := s.svc.Tasks.Complete(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(res)
}

// CreateReport handles POST /api/reports
func (s *Server) CreateReport(c *fiber.Ctx) error {
	var req service.ReportInput
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}
	req.ReporterID = middleware.UserID(c)

	report, err := s.svc.Reports.Report(c.UserContext(), req)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// GetReports handles GET /api/admin/reports
func (s *Server) GetReports(c *fiber.Ctx) error {
	list, err := s.svc.Reports.List(c.UserContext())
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(list)
}

// ResolveReport handles POST /api/admin/reports/:id/resolve
func (s *Server) ResolveReport(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return models.Respond(c, err)
	}
	var req ResolveReportRequest
	if err := parseBody(c, &req); err != nil {
		return models.Respond(c, err)
	}
	if err := s.svc.Reports.Resolve(c.UserContext(), id, req.Status); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFeatureFlags returns configured feature flags and evaluated state for current user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"raw":       s.flags.Raw(),
		"evaluated": s.flags.Snapshot(middleware.UserID(c)),
	})
}
