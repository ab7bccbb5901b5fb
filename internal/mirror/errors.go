package mirror

import (
	"errors"

	"skillhive/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// mapError converts driver errors into AppErrors so callers can tell
// not-found, conflict and transport failures apart.
func mapError(err error, resource string, id any) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.NewConflictError(resource + " already exists")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		conflict := models.NewConflictError(resource + " already exists")
		conflict.Err = pgErr
		return conflict
	}
	return models.NewUnavailableError("database", err)
}
