package service

import (
	"context"
	"strings"

	"wanderlog/internal/models"
	"wanderlog/internal/repository"
	"wanderlog/internal/validation"
)

const (
	maxAddressLen     = 255
	maxDescriptionLen = 1000
)

type UserService struct {
	userRepo repository.UserRepository
	images   *ImageService
}

// EditProfileInput replaces the editable profile. A nil Picture keeps the
// current profile picture.
type EditProfileInput struct {
	UserID      uint
	Username    string
	Address     string
	Description string
	Picture     *Upload
}

func NewUserService(userRepo repository.UserRepository, images *ImageService) *UserService {
	return &UserService{userRepo: userRepo, images: images}
}

func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListAll returns every user's id and username.
func (s *UserService) ListAll(ctx context.Context) ([]models.UserSummary, error) {
	return s.userRepo.ListSummaries(ctx)
}

func (s *UserService) EditProfile(ctx context.Context, in EditProfileInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return nil, models.NewValidationError("username is required")
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if len(in.Address) > maxAddressLen {
		return nil, models.NewValidationError("Address too long (max 255 characters)")
	}
	if len(in.Description) > maxDescriptionLen {
		return nil, models.NewValidationError("Description too long (max 1000 characters)")
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	previousPicture := user.ProfilePicture

	user.Username = in.Username
	user.Address = in.Address
	user.Description = in.Description
	if in.Picture != nil {
		ref, err := s.images.Store(ctx, ImageKindProfile, in.Picture)
		if err != nil {
			return nil, err
		}
		user.ProfilePicture = ref
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		if in.Picture != nil {
			s.images.Remove(ctx, user.ProfilePicture)
		}
		return nil, err
	}
	if in.Picture != nil && previousPicture != "" {
		s.images.Remove(ctx, previousPicture)
	}
	return user, nil
}
