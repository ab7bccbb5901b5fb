package service

import (
	"context"
	"encoding/json"

	"skillhive/internal/models"
	"skillhive/internal/repository"
)

// MaxWhiteboardItems caps the number of strokes kept on one board.
const MaxWhiteboardItems = 5000

type WhiteboardService struct {
	boards  repository.WhiteboardRepository
	matches repository.MatchRepository
}

func NewWhiteboardService(boards repository.WhiteboardRepository, matches repository.MatchRepository) *WhiteboardService {
	return &WhiteboardService{boards: boards, matches: matches}
}

// Get returns the board, or an empty one when nothing was drawn yet.
func (s *WhiteboardService) Get(ctx context.Context, boardID string) (*models.Whiteboard, error) {
	b, err := s.boards.Get(ctx, boardID)
	if models.IsNotFound(err) {
		return &models.Whiteboard{ID: boardID, Items: []json.RawMessage{}}, nil
	}
	return b, err
}

// Save replaces the items of a match board. Only the two parties may draw.
func (s *WhiteboardService) Save(ctx context.Context, boardID, actorID string, items []json.RawMessage) (*models.Whiteboard, error) {
	m, err := s.matches.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if !m.Involves(actorID) {
		return nil, models.NewForbiddenError("not a party to this match")
	}
	if len(items) > MaxWhiteboardItems {
		return nil, models.NewValidationError("too many whiteboard items")
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	b := &models.Whiteboard{ID: boardID, Items: items, UpdatedAt: nowUTC()}
	if err := s.boards.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}
