package service

import (
	"context"
	"strings"

	"skillhive/internal/models"
	"skillhive/internal/repository"
	"skillhive/internal/validation"
)

// PostReplier drafts an answer for a feed post.
type PostReplier interface {
	PostReply(ctx context.Context, title, content string) string
}

type FeedService struct {
	posts   repository.PostRepository
	replier PostReplier
}

type CreatePostInput struct {
	UserID  string          `json:"userId" validate:"required"`
	Title   string          `json:"title" validate:"notblank,max=200"`
	Content string          `json:"content" validate:"notblank,max=10000"`
	Tags    []string        `json:"tags" validate:"max=10,dive,max=40"`
	Type    models.PostType `json:"type" validate:"required,oneof=question tip"`
}

type CommentInput struct {
	Text string `json:"text" validate:"notblank,max=2000"`
}

func NewFeedService(posts repository.PostRepository, replier PostReplier) *FeedService {
	return &FeedService{posts: posts, replier: replier}
}

// List returns the feed newest first.
func (s *FeedService) List(ctx context.Context) ([]models.Post, error) {
	return s.posts.List(ctx)
}

func (s *FeedService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	p := &models.Post{
		ID:        newID(),
		UserID:    in.UserID,
		Title:     strings.TrimSpace(in.Title),
		Content:   in.Content,
		Tags:      tags,
		Likes:     []string{},
		Comments:  []models.Comment{},
		CreatedAt: nowUTC(),
		Type:      in.Type,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ToggleLike adds userID to the post's likes, or removes it when present.
func (s *FeedService) ToggleLike(ctx context.Context, postID, userID string) (*models.Post, error) {
	return s.posts.Update(ctx, postID, func(p *models.Post) (bool, error) {
		var added bool
		p.Likes, added = models.AppendUnique(p.Likes, userID)
		if !added {
			p.Likes = models.Remove(p.Likes, userID)
		}
		return true, nil
	})
}

func (s *FeedService) AddComment(ctx context.Context, postID, userID string, in CommentInput) (*models.Post, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	c := models.Comment{
		ID:        newID(),
		UserID:    userID,
		Text:      strings.TrimSpace(in.Text),
		CreatedAt: nowUTC(),
	}
	return s.posts.Update(ctx, postID, func(p *models.Post) (bool, error) {
		p.Comments = append(p.Comments, c)
		return true, nil
	})
}

// AIReply drafts an answer to a post. It is not stored.
func (s *FeedService) AIReply(ctx context.Context, postID string) (string, error) {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return "", err
	}
	return s.replier.PostReply(ctx, p.Title, p.Content), nil
}
