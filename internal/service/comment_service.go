package service

import (
	"context"
	"strings"

	"wanderlog/internal/models"
	"wanderlog/internal/repository"
)

const maxCommentLen = 2000

// CommentService appends comments to posts.
type CommentService struct {
	repo repository.CommentRepository
}

func NewCommentService(repo repository.CommentRepository) *CommentService {
	return &CommentService{repo: repo}
}

func (s *CommentService) Add(ctx context.Context, userID, postID uint, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("commentText is required")
	}
	if len(text) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	comment := &models.Comment{PostID: postID, UserID: userID, CommentText: text}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// List returns the post's comments oldest first.
func (s *CommentService) List(ctx context.Context, postID uint) ([]models.CommentView, error) {
	return s.repo.ListByPost(ctx, postID)
}

func (s *CommentService) Count(ctx context.Context, postID uint) (int64, error) {
	return s.repo.CountByPost(ctx, postID)
}
