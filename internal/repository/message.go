package repository

import (
	"context"
	"sort"
	"time"

	"skillhive/internal/models"
	"skillhive/internal/store"
)

type messageRepository struct {
	records *store.Records
}

// NewMessageRepository returns a MessageRepository backed by the record store.
func NewMessageRepository(records *store.Records) MessageRepository {
	return &messageRepository{records: records}
}

func (r *messageRepository) ListForMatch(ctx context.Context, matchID string) ([]models.Message, error) {
	messages, err := store.Load(ctx, r.records, messagesCollection)
	if err != nil {
		return nil, err
	}
	out := make([]models.Message, 0)
	for _, m := range messages {
		if m.MatchID == matchID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	return store.Mutate(ctx, r.records, messagesCollection, func(messages []models.Message) ([]models.Message, bool, error) {
		return append(messages, *msg), true, nil
	})
}

func (r *messageRepository) MarkRead(ctx context.Context, matchID, readerID string) (int, error) {
	var n int
	err := store.Mutate(ctx, r.records, messagesCollection, func(messages []models.Message) ([]models.Message, bool, error) {
		n = 0
		for i := range messages {
			m := &messages[i]
			if m.MatchID == matchID && m.SenderID != readerID && !m.Read {
				m.Read = true
				n++
			}
		}
		return messages, n > 0, nil
	})
	return n, err
}

// TypingTTL is how long a typing flag stays set without being refreshed.
const TypingTTL = 5 * time.Second

type typingFlags map[string]time.Time

var typingDoc = store.Document[typingFlags]{
	Name:  store.Typing,
	Key:   store.KeyTyping,
	Empty: func() typingFlags { return typingFlags{} },
}

type typingRepository struct {
	records *store.Records
	now     func() time.Time
}

// NewTypingRepository returns a TypingRepository backed by the record store.
func NewTypingRepository(records *store.Records) TypingRepository {
	return &typingRepository{records: records, now: time.Now}
}

func typingKey(matchID, userID string) string { return matchID + ":" + userID }

func (r *typingRepository) Set(ctx context.Context, matchID, userID string, typing bool) error {
	now := r.now()
	key := typingKey(matchID, userID)
	return store.MutateDoc(ctx, r.records, typingDoc, matchID, func(flags typingFlags) (typingFlags, bool, error) {
		changed := false
		for k, exp := range flags {
			if !exp.After(now) {
				delete(flags, k)
				changed = true
			}
		}
		if typing {
			flags[key] = now.Add(TypingTTL)
			return flags, true, nil
		}
		if _, ok := flags[key]; ok {
			delete(flags, key)
			changed = true
		}
		return flags, changed, nil
	})
}

func (r *typingRepository) IsTyping(ctx context.Context, matchID, userID string) (bool, error) {
	flags, err := store.LoadDoc(ctx, r.records, typingDoc)
	if err != nil {
		return false, err
	}
	exp, ok := flags[typingKey(matchID, userID)]
	return ok && exp.After(r.now()), nil
}

type whiteboards map[string]models.Whiteboard

var whiteboardDoc = store.Document[whiteboards]{
	Name:  store.Whiteboard,
	Key:   store.KeyWhiteboard,
	Empty: func() whiteboards { return whiteboards{} },
}

type whiteboardRepository struct {
	records *store.Records
}

// NewWhiteboardRepository returns a WhiteboardRepository backed by the record store.
func NewWhiteboardRepository(records *store.Records) WhiteboardRepository {
	return &whiteboardRepository{records: records}
}

func (r *whiteboardRepository) Get(ctx context.Context, boardID string) (*models.Whiteboard, error) {
	boards, err := store.LoadDoc(ctx, r.records, whiteboardDoc)
	if err != nil {
		return nil, err
	}
	b, ok := boards[boardID]
	if !ok {
		return nil, models.NewNotFoundError("Whiteboard", boardID)
	}
	return &b, nil
}

func (r *whiteboardRepository) Save(ctx context.Context, board *models.Whiteboard) error {
	return store.MutateDoc(ctx, r.records, whiteboardDoc, board.ID, func(boards whiteboards) (whiteboards, bool, error) {
		boards[board.ID] = *board
		return boards, true, nil
	})
}
