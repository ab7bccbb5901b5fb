package mirror

import (
	"context"

	"skillhive/internal/events"
	"skillhive/internal/models"
	"skillhive/internal/repository"
	"skillhive/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type matchRepository struct {
	base
}

// NewMatchRepository returns a MatchRepository on the matches table.
func NewMatchRepository(db *gorm.DB, pub events.Publisher) repository.MatchRepository {
	return &matchRepository{base: newBase(db, pub)}
}

func (r *matchRepository) List(ctx context.Context) ([]models.Match, error) {
	q, done := r.query(ctx, "select", "matches")
	defer done()
	var rows []matchRow
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, mapError(err, "Match", "*")
	}
	return rowsToModels[matchRow, models.Match](rows), nil
}

func (r *matchRepository) ListForUser(ctx context.Context, userID string) ([]models.Match, error) {
	q, done := r.query(ctx, "select", "matches")
	defer done()
	var rows []matchRow
	if err := q.Where("user1_id = ? OR user2_id = ?", userID, userID).Order("id").Find(&rows).Error; err != nil {
		return nil, mapError(err, "Match", "*")
	}
	return rowsToModels[matchRow, models.Match](rows), nil
}

func (r *matchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	q, done := r.query(ctx, "select", "matches")
	defer done()
	var row matchRow
	if err := q.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, mapError(err, "Match", id)
	}
	m := row.toModel()
	return &m, nil
}

func (r *matchRepository) Create(ctx context.Context, match *models.Match) error {
	q, done := r.query(ctx, "insert", "matches")
	defer done()
	row := matchFromModel(match)
	if err := q.Create(&row).Error; err != nil {
		return mapError(err, "Match", match.ID)
	}
	r.signal(store.Matches, events.OpCreate, match.ID)
	return nil
}

func (r *matchRepository) Update(ctx context.Context, id string, fn repository.EditFunc[models.Match]) (*models.Match, error) {
	var out models.Match
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row matchRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&row).Error; err != nil {
			return err
		}
		m := row.toModel()
		var err error
		if changed, err = fn(&m); err != nil {
			return err
		}
		out = m
		if !changed {
			return nil
		}
		next := matchFromModel(&m)
		next.ID = id
		return tx.Select("*").Save(&next).Error
	})
	if err != nil {
		return nil, mapError(err, "Match", id)
	}
	if changed {
		r.signal(store.Matches, events.OpUpdate, id)
	}
	return &out, nil
}

type sessionRepository struct {
	base
}

// NewSessionRepository returns a SessionRepository on the sessions table.
func NewSessionRepository(db *gorm.DB, pub events.Publisher) repository.SessionRepository {
	return &sessionRepository{base: newBase(db, pub)}
}

func (r *sessionRepository) ListForMatches(ctx context.Context, matchIDs []string) ([]models.Session, error) {
	if len(matchIDs) == 0 {
		return []models.Session{}, nil
	}
	q, done := r.query(ctx, "select", "sessions")
	defer done()
	var rows []sessionRow
	if err := q.Where("match_id IN ?", matchIDs).Order("start_time DESC").Find(&rows).Error; err != nil {
		return nil, mapError(err, "Session", "*")
	}
	return rowsToModels[sessionRow, models.Session](rows), nil
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	q, done := r.query(ctx, "insert", "sessions")
	defer done()
	row := sessionFromModel(session)
	if err := q.Create(&row).Error; err != nil {
		return mapError(err, "Session", session.ID)
	}
	r.signal(store.Sessions, events.OpCreate, session.ID)
	return nil
}

type feedbackRepository struct {
	base
}

// NewFeedbackRepository returns a FeedbackRepository on the feedbacks table.
func NewFeedbackRepository(db *gorm.DB, pub events.Publisher) repository.FeedbackRepository {
	return &feedbackRepository{base: newBase(db, pub)}
}

func (r *feedbackRepository) ListForUser(ctx context.Context, toUserID string) ([]models.Feedback, error) {
	q, done := r.query(ctx, "select", "feedbacks")
	defer done()
	var rows []feedbackRow
	if err := q.Where("to_user_id = ?", toUserID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, mapError(err, "Feedback", "*")
	}
	return rowsToModels[feedbackRow, models.Feedback](rows), nil
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	q, done := r.query(ctx, "insert", "feedbacks")
	defer done()
	row := feedbackFromModel(feedback)
	if err := q.Create(&row).Error; err != nil {
		return mapError(err, "Feedback", feedback.ID)
	}
	r.signal(store.Feedbacks, events.OpCreate, feedback.ID)
	return nil
}
