package service

import (
	"context"

	"wanderlog/internal/models"
	"wanderlog/internal/repository"
)

// FollowService maintains the directed follow graph. Each ordered pair of
// users is independently either following or not following.
type FollowService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
}

func NewFollowService(follows repository.FollowRepository, users repository.UserRepository) *FollowService {
	return &FollowService{follows: follows, users: users}
}

// Follow adds the edge followerID -> followingID.
func (s *FollowService) Follow(ctx context.Context, followerID, followingID uint) error {
	if followerID == followingID {
		return models.NewSelfFollowError()
	}
	return s.follows.Create(ctx, followerID, followingID)
}

// Unfollow removes the edge. Removing an edge that does not exist succeeds.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followingID uint) error {
	_, err := s.follows.Delete(ctx, followerID, followingID)
	return err
}

func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	return s.follows.ListFollowers(ctx, userID)
}

func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	return s.follows.ListFollowing(ctx, userID)
}

// NotFollowing returns every user except userID and the users userID follows,
// computed as a set difference over one read of each set.
func (s *FollowService) NotFollowing(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	followingIDs, err := s.follows.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := s.users.ListSummaries(ctx)
	if err != nil {
		return nil, err
	}

	exclude := make(map[uint]struct{}, len(followingIDs)+1)
	exclude[userID] = struct{}{}
	for _, id := range followingIDs {
		exclude[id] = struct{}{}
	}

	out := make([]models.UserSummary, 0, len(all))
	for _, u := range all {
		if _, skip := exclude[u.ID]; !skip {
			out = append(out, u)
		}
	}
	return out, nil
}

// Counts reports follower and following totals for an existing user.
func (s *FollowService) Counts(ctx context.Context, userID uint) (models.FollowCounts, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return models.FollowCounts{}, err
	}
	return s.follows.Counts(ctx, userID)
}
