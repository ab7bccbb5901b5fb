package repository

import (
	"context"
	"slices"

	"skillhive/internal/models"
	"skillhive/internal/store"
)

type matchRepository struct {
	records *store.Records
}

// NewMatchRepository returns a MatchRepository backed by the record store.
func NewMatchRepository(records *store.Records) MatchRepository {
	return &matchRepository{records: records}
}

func (r *matchRepository) List(ctx context.Context) ([]models.Match, error) {
	return store.Load(ctx, r.records, matchesCollection)
}

func (r *matchRepository) ListForUser(ctx context.Context, userID string) ([]models.Match, error) {
	matches, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if m.Involves(userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *matchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	matches, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(matches, id); i >= 0 {
		return &matches[i], nil
	}
	return nil, models.NewNotFoundError("Match", id)
}

func (r *matchRepository) Create(ctx context.Context, match *models.Match) error {
	return store.Mutate(ctx, r.records, matchesCollection, func(matches []models.Match) ([]models.Match, bool, error) {
		return append(matches, *match), true, nil
	})
}

func (r *matchRepository) Update(ctx context.Context, id string, fn EditFunc[models.Match]) (*models.Match, error) {
	var out models.Match
	err := store.Mutate(ctx, r.records, matchesCollection, func(matches []models.Match) ([]models.Match, bool, error) {
		i := indexOf(matches, id)
		if i < 0 {
			return nil, false, models.NewNotFoundError("Match", id)
		}
		changed, err := fn(&matches[i])
		if err != nil {
			return nil, false, err
		}
		out = matches[i]
		return matches, changed, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type sessionRepository struct {
	records *store.Records
}

// NewSessionRepository returns a SessionRepository backed by the record store.
func NewSessionRepository(records *store.Records) SessionRepository {
	return &sessionRepository{records: records}
}

func (r *sessionRepository) ListForMatches(ctx context.Context, matchIDs []string) ([]models.Session, error) {
	sessions, err := store.Load(ctx, r.records, sessionsCollection)
	if err != nil {
		return nil, err
	}
	out := make([]models.Session, 0)
	for _, s := range sessions {
		if slices.Contains(matchIDs, s.MatchID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return store.Mutate(ctx, r.records, sessionsCollection, func(sessions []models.Session) ([]models.Session, bool, error) {
		return append(sessions, *session), true, nil
	})
}

type feedbackRepository struct {
	records *store.Records
}

// NewFeedbackRepository returns a FeedbackRepository backed by the record store.
func NewFeedbackRepository(records *store.Records) FeedbackRepository {
	return &feedbackRepository{records: records}
}

func (r *feedbackRepository) ListForUser(ctx context.Context, toUserID string) ([]models.Feedback, error) {
	feedbacks, err := store.Load(ctx, r.records, feedbacksCollection)
	if err != nil {
		return nil, err
	}
	out := make([]models.Feedback, 0)
	for _, f := range feedbacks {
		if f.ToUserID == toUserID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	return store.Mutate(ctx, r.records, feedbacksCollection, func(feedbacks []models.Feedback) ([]models.Feedback, bool, error) {
		return append(feedbacks, *feedback), true, nil
	})
}
