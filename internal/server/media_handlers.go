package server

import (
	"io"

	"skillhive/internal/featureflags"
	"skillhive/internal/middleware"
	"skillhive/internal/models"
	"skillhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadMedia handles POST /api/media. The returned URL is used as the
// mediaUrl of an image message.
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	stored, err := s.storeUpload(c)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(stored)
}

// UploadAvatar handles POST /api/users/me/avatar
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	stored, err := s.storeUpload(c)
	if err != nil {
		return models.Respond(c, err)
	}
	user, err := s.svc.Users.Update(c.UserContext(), middleware.UserID(c), models.UserPatch{AvatarURL: &stored.URL})
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(user)
}

func (s *Server) storeUpload(c *fiber.Ctx) (*service.StoredMedia, error) {
	if err := s.requireFeature(c, featureflags.MediaUpload); err != nil {
		return nil, err
	}
	file, err := c.FormFile("file")
	if err != nil {
		return nil, models.NewValidationError("No file uploaded")
	}

	src, err := file.Open()
	if err != nil {
		return nil, models.NewValidationError("Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, models.NewValidationError("Unable to read uploaded file")
	}

	return s.svc.Media.Upload(c.UserContext(), service.UploadMediaInput{
		UserID:      middleware.UserID(c),
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	})
}
