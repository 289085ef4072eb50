package service

import (
	"context"
	"strings"

	"wanderlog/internal/models"
	"wanderlog/internal/repository"
	"wanderlog/internal/validation"
)

const (
	maxTitleLen   = 300
	maxContentLen = 50000 // 50K characters
	maxCountryLen = 100
)

type PostService struct {
	postRepo repository.PostRepository
	images   *ImageService
}

type CreatePostInput struct {
	UserID      uint
	Title       string
	Content     string
	CountryName string
	DateOfVisit string
	Image       *Upload
}

// UpdatePostInput replaces every editable field. A nil Image keeps the
// current image.
type UpdatePostInput struct {
	UserID      uint
	PostID      uint
	Title       string
	Content     string
	CountryName string
	DateOfVisit string
	Image       *Upload
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(postRepo repository.PostRepository, images *ImageService) *PostService {
	return &PostService{
		postRepo: postRepo,
		images:   images,
	}
}

func validatePostFields(title, content, country, dateOfVisit string) error {
	if title == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 300 characters)")
	}
	if content == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return models.NewValidationError("Content too long (max 50000 characters)")
	}
	if country == "" {
		return models.NewValidationError("countryName is required")
	}
	if len(country) > maxCountryLen {
		return models.NewValidationError("countryName too long (max 100 characters)")
	}
	if err := validation.ValidateDateOfVisit(dateOfVisit); err != nil {
		return models.NewValidationError(err.Error())
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.CountryName = strings.TrimSpace(in.CountryName)
	in.DateOfVisit = strings.TrimSpace(in.DateOfVisit)
	if err := validatePostFields(in.Title, in.Content, in.CountryName, in.DateOfVisit); err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:      in.UserID,
		Title:       in.Title,
		Content:     in.Content,
		CountryName: in.CountryName,
		DateOfVisit: in.DateOfVisit,
	}
	if in.Image != nil {
		ref, err := s.images.Store(ctx, ImageKindPost, in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = ref
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if post.Image != "" {
			s.images.Remove(ctx, post.Image)
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// owned loads postID and checks that userID wrote it.
func (s *PostService) owned(ctx context.Context, userID, postID uint, action string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, models.NewForbiddenError("You can only " + action + " your own posts")
	}
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.CountryName = strings.TrimSpace(in.CountryName)
	in.DateOfVisit = strings.TrimSpace(in.DateOfVisit)
	if err := validatePostFields(in.Title, in.Content, in.CountryName, in.DateOfVisit); err != nil {
		return nil, err
	}

	post, err := s.owned(ctx, in.UserID, in.PostID, "update")
	if err != nil {
		return nil, err
	}
	previousImage := post.Image

	post.Title = in.Title
	post.Content = in.Content
	post.CountryName = in.CountryName
	post.DateOfVisit = in.DateOfVisit
	if in.Image != nil {
		ref, err := s.images.Store(ctx, ImageKindPost, in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = ref
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		if in.Image != nil {
			s.images.Remove(ctx, post.Image)
		}
		return nil, err
	}
	if in.Image != nil && previousImage != "" {
		s.images.Remove(ctx, previousImage)
	}
	return post, nil
}

// DeletePost removes the post with its comments and engagement records, then
// the stored image.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.owned(ctx, in.UserID, in.PostID, "delete")
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		return err
	}
	if post.Image != "" {
		s.images.Remove(ctx, post.Image)
	}
	return nil
}
