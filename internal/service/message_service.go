package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"skillhive/internal/models"
	"skillhive/internal/repository"
	"skillhive/internal/validation"
)

// MaxMessageLength caps a text message in runes.
const MaxMessageLength = 4000

type MessageService struct {
	messages repository.MessageRepository
	matches  repository.MatchRepository
	users    repository.UserRepository
	typing   repository.TypingRepository
	notes    *NotificationService
}

type SendMessageInput struct {
	MatchID  string             `json:"matchId" validate:"required"`
	SenderID string             `json:"senderId" validate:"required"`
	Text     string             `json:"text"`
	MediaURL string             `json:"mediaUrl" validate:"omitempty,max=2048"`
	Type     models.MessageType `json:"type" validate:"omitempty,oneof=text image"`
}

func NewMessageService(
	messages repository.MessageRepository,
	matches repository.MatchRepository,
	users repository.UserRepository,
	typing repository.TypingRepository,
	notes *NotificationService,
) *MessageService {
	return &MessageService{messages: messages, matches: matches, users: users, typing: typing, notes: notes}
}

// List returns the chat history of a match, oldest first. The reader must be
// one of the parties.
func (s *MessageService) List(ctx context.Context, matchID, readerID string) ([]models.Message, error) {
	if _, err := s.partyMatch(ctx, matchID, readerID); err != nil {
		return nil, err
	}
	return s.messages.ListForMatch(ctx, matchID)
}

// Last returns the most recent message in a match, or nil when there is none.
func (s *MessageService) Last(ctx context.Context, matchID string) (*models.Message, error) {
	msgs, err := s.messages.ListForMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	last := msgs[len(msgs)-1]
	return &last, nil
}

// Send appends a message and alerts the receiver. A receiver who blocked the
// sender refuses the message.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Type == "" {
		in.Type = models.MessageText
	}
	switch in.Type {
	case models.MessageText:
		in.Text = strings.TrimSpace(in.Text)
		if in.Text == "" {
			return nil, models.NewValidationError("message text is required")
		}
		if utf8.RuneCountInString(in.Text) > MaxMessageLength {
			return nil, models.NewValidationError("message text is too long")
		}
	case models.MessageImage:
		if in.MediaURL == "" {
			return nil, models.NewValidationError("image messages need a mediaUrl")
		}
	}

	m, err := s.partyMatch(ctx, in.MatchID, in.SenderID)
	if err != nil {
		return nil, err
	}
	receiverID := m.Partner(in.SenderID)

	receiver, err := s.users.GetByID(ctx, receiverID)
	if err != nil && !models.IsNotFound(err) {
		return nil, err
	}
	if receiver != nil && receiver.HasBlocked(in.SenderID) {
		return nil, models.NewForbiddenError("you cannot message this user")
	}

	msg := &models.Message{
		ID:        newID(),
		MatchID:   in.MatchID,
		SenderID:  in.SenderID,
		Text:      in.Text,
		MediaURL:  in.MediaURL,
		Type:      in.Type,
		Timestamp: nowUTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	preview := "sent you an image"
	if msg.Type == models.MessageText {
		preview = truncateRunes(msg.Text, 60)
	}
	s.notes.Fanout(ctx, receiverID, "New message: "+preview, models.NotifyMessage, msg.MatchID)
	return msg, nil
}

// MarkRead flags every partner message in the match as read by readerID.
func (s *MessageService) MarkRead(ctx context.Context, matchID, readerID string) (int, error) {
	if _, err := s.partyMatch(ctx, matchID, readerID); err != nil {
		return 0, err
	}
	return s.messages.MarkRead(ctx, matchID, readerID)
}

func (s *MessageService) SetTyping(ctx context.Context, matchID, userID string, typing bool) error {
	if _, err := s.partyMatch(ctx, matchID, userID); err != nil {
		return err
	}
	return s.typing.Set(ctx, matchID, userID, typing)
}

func (s *MessageService) IsTyping(ctx context.Context, matchID, userID string) (bool, error) {
	return s.typing.IsTyping(ctx, matchID, userID)
}

func (s *MessageService) partyMatch(ctx context.Context, matchID, userID string) (*models.Match, error) {
	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.Involves(userID) {
		return nil, models.NewForbiddenError("not a party to this match")
	}
	return m, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}
