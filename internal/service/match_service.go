package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"skillhive/internal/models"
	"skillhive/internal/observability"
	"skillhive/internal/repository"
	"skillhive/internal/validation"
)

// Notification texts for match traffic.
const (
	MatchRequestMessage  = "A user sent you a connection request!"
	MatchAcceptedMessage = "Your match request was accepted!"
)

// SessionReward is paid to the partner of the user who completes a session.
const SessionReward = 20

const meetLinkPrefix = "https://meet.google.com/skillhive-"

type MatchService struct {
	matches   repository.MatchRepository
	sessions  repository.SessionRepository
	feedbacks repository.FeedbackRepository
	messages  repository.MessageRepository
	users     repository.UserRepository
	badges    *BadgeService
	notes     *NotificationService
	now       func() time.Time
}

type CreateMatchInput struct {
	User1ID        string `json:"user1Id" validate:"required"`
	User2ID        string `json:"user2Id" validate:"required,nefield=User1ID"`
	SkillOfferedID string `json:"skillOfferedId"`
	SkillWantedID  string `json:"skillWantedId"`
}

type FeedbackInput struct {
	SessionID  string `json:"sessionId" validate:"required"`
	FromUserID string `json:"fromUserId" validate:"required"`
	ToUserID   string `json:"toUserId" validate:"required"`
	Rating     int    `json:"rating" validate:"min=1,max=5"`
	Comment    string `json:"comment" validate:"max=2000"`
}

func NewMatchService(
	matches repository.MatchRepository,
	sessions repository.SessionRepository,
	feedbacks repository.FeedbackRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
	badges *BadgeService,
	notes *NotificationService,
) *MatchService {
	return &MatchService{
		matches:   matches,
		sessions:  sessions,
		feedbacks: feedbacks,
		messages:  messages,
		users:     users,
		badges:    badges,
		notes:     notes,
		now:       nowUTC,
	}
}

// ListForUser returns the matches userID takes part in. Admins see every match.
func (s *MatchService) ListForUser(ctx context.Context, userID string) ([]models.Match, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() {
		return s.matches.List(ctx)
	}
	return s.matches.ListForUser(ctx, userID)
}

func (s *MatchService) Get(ctx context.Context, id string) (*models.Match, error) {
	return s.matches.GetByID(ctx, id)
}

// Create stores a pending match and notifies the receiver once.
func (s *MatchService) Create(ctx context.Context, in CreateMatchInput) (*models.Match, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, in.User2ID); err != nil {
		return nil, err
	}

	m := &models.Match{
		ID:             newID(),
		User1ID:        in.User1ID,
		User2ID:        in.User2ID,
		SkillOfferedID: in.SkillOfferedID,
		SkillWantedID:  in.SkillWantedID,
		Status:         models.MatchPending,
	}
	if err := s.matches.Create(ctx, m); err != nil {
		return nil, err
	}

	s.notes.Fanout(ctx, m.User2ID, MatchRequestMessage, models.NotifyMatch, m.ID)
	return m, nil
}

// Update overwrites status, scheduledTime and meetLink from next. Only the
// pending to accepted transition notifies the initiator.
func (s *MatchService) Update(ctx context.Context, next models.Match) (*models.Match, error) {
	var previous models.MatchStatus
	updated, err := s.matches.Update(ctx, next.ID, func(m *models.Match) (bool, error) {
		previous = m.Status
		m.Status = next.Status
		m.ScheduledTime = next.ScheduledTime
		m.MeetLink = next.MeetLink
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if previous == models.MatchPending && updated.Status == models.MatchAccepted {
		s.notes.Fanout(ctx, updated.User1ID, MatchAcceptedMessage, models.NotifyMatch, updated.ID)
	}
	return updated, nil
}

// Accept is reserved for the receiver of the request.
func (s *MatchService) Accept(ctx context.Context, id, actorID string) (*models.Match, error) {
	m, err := s.partyMatch(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	if m.User2ID != actorID {
		return nil, models.NewForbiddenError("only the receiver can accept a match request")
	}
	return s.setStatus(ctx, id, actorID, models.MatchAccepted)
}

func (s *MatchService) Decline(ctx context.Context, id, actorID string) (*models.Match, error) {
	return s.setStatus(ctx, id, actorID, models.MatchDeclined)
}

func (s *MatchService) setStatus(ctx context.Context, id, actorID string, status models.MatchStatus) (*models.Match, error) {
	m, err := s.partyMatch(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	next := *m
	next.Status = status
	return s.Update(ctx, next)
}

// Schedule sets the session time and a generated meeting link on an accepted
// match, posts a system message into the chat and tells the partner.
func (s *MatchService) Schedule(ctx context.Context, id, actorID string, at time.Time) (*models.Match, error) {
	if at.IsZero() {
		return nil, models.NewValidationError("scheduled time is required")
	}

	link := meetLinkPrefix + randomSuffix(10)
	when := at.UTC()
	updated, err := s.matches.Update(ctx, id, func(m *models.Match) (bool, error) {
		if !m.Involves(actorID) {
			return false, models.NewForbiddenError("not a party to this match")
		}
		if m.Status != models.MatchAccepted {
			return false, models.NewConflictError("only accepted matches can be scheduled")
		}
		m.ScheduledTime = &when
		m.MeetLink = &link
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:        newID(),
		MatchID:   updated.ID,
		SenderID:  models.SystemSenderID,
		Text:      fmt.Sprintf("📅 Session scheduled for %s. GMeet: %s", when.Format(time.RFC1123), link),
		Type:      models.MessageText,
		Timestamp: s.now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		observability.Logger.WarnContext(ctx, "failed to post schedule message",
			slog.String("match_id", updated.ID),
			slog.String("error", err.Error()),
		)
	}

	s.notes.Fanout(ctx, updated.Partner(actorID), fmt.Sprintf("A session was scheduled for %s", when.Format(time.RFC1123)), models.NotifySession, updated.ID)
	return updated, nil
}

// CompleteSession closes the scheduled session of an accepted match: it clears
// the schedule, records the session, pays the partner and runs badge checks for
// both parties. Each schedule pays out once.
func (s *MatchService) CompleteSession(ctx context.Context, matchID, actorID string) (*models.Session, error) {
	span, ctx := observability.NewSpan(ctx, "MatchService.CompleteSession")
	defer span.End()

	var start time.Time
	m, err := s.matches.Update(ctx, matchID, func(m *models.Match) (bool, error) {
		if !m.Involves(actorID) {
			return false, models.NewForbiddenError("not a party to this match")
		}
		if m.Status != models.MatchAccepted || m.ScheduledTime == nil {
			return false, models.NewConflictError("match has no scheduled session to complete")
		}
		start = *m.ScheduledTime
		m.ScheduledTime = nil
		m.MeetLink = nil
		return true, nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	session := &models.Session{
		ID:        newID(),
		MatchID:   m.ID,
		StartTime: start,
		EndTime:   s.now(),
		Status:    models.SessionCompleted,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		span.SetError(err)
		return nil, err
	}

	partner := m.Partner(actorID)
	if _, err := s.users.AddCredits(ctx, partner, SessionReward); err != nil {
		span.SetError(err)
		return session, err
	}

	for _, uid := range []string{actorID, partner} {
		if _, err := s.badges.CheckAndAward(ctx, uid); err != nil {
			observability.Logger.WarnContext(ctx, "badge check failed",
				slog.String("user_id", uid),
				slog.String("error", err.Error()),
			)
		}
	}
	return session, nil
}

// SessionsForUser returns the sessions of every match userID takes part in.
func (s *MatchService) SessionsForUser(ctx context.Context, userID string) ([]models.Session, error) {
	matches, err := s.matches.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	return s.sessions.ListForMatches(ctx, ids)
}

func (s *MatchService) FeedbackForUser(ctx context.Context, userID string) ([]models.Feedback, error) {
	return s.feedbacks.ListForUser(ctx, userID)
}

func (s *MatchService) LeaveFeedback(ctx context.Context, in FeedbackInput) (*models.Feedback, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.FromUserID == in.ToUserID {
		return nil, models.NewValidationError("cannot rate yourself")
	}
	if err := s.checkSessionParties(ctx, in); err != nil {
		return nil, err
	}
	f := &models.Feedback{
		ID:         newID(),
		SessionID:  in.SessionID,
		FromUserID: in.FromUserID,
		ToUserID:   in.ToUserID,
		Rating:     in.Rating,
		Comment:    in.Comment,
		CreatedAt:  s.now(),
	}
	if err := s.feedbacks.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// checkSessionParties requires the session to belong to a match between the
// author and the rated user.
func (s *MatchService) checkSessionParties(ctx context.Context, in FeedbackInput) error {
	matches, err := s.matches.ListForUser(ctx, in.FromUserID)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(matches))
	byID := make(map[string]models.Match, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
		byID[m.ID] = m
	}
	sessions, err := s.sessions.ListForMatches(ctx, ids)
	if err != nil {
		return err
	}
	for _, se := range sessions {
		if se.ID != in.SessionID {
			continue
		}
		if m := byID[se.MatchID]; m.Partner(in.FromUserID) != in.ToUserID {
			return models.NewForbiddenError("feedback must rate the session partner")
		}
		return nil
	}
	return models.NewNotFoundError("Session", in.SessionID)
}

func (s *MatchService) partyMatch(ctx context.Context, id, actorID string) (*models.Match, error) {
	m, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.Involves(actorID) {
		return nil, models.NewForbiddenError("not a party to this match")
	}
	return m, nil
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix(n int) string {
	b := make([]byte, n)
	limit := big.NewInt(int64(len(suffixAlphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			b[i] = suffixAlphabet[i%len(suffixAlphabet)]
			continue
		}
		b[i] = suffixAlphabet[idx.Int64()]
	}
	return string(b)
}
