package service

import (
	"context"

	"wanderlog/internal/models"
	"wanderlog/internal/observability"
	"wanderlog/internal/repository"
)

// EngagementService runs the per (user, post) like/dislike state machine:
// none -> liked <-> disliked. There is no transition back to none.
type EngagementService struct {
	repo repository.EngagementRepository
}

func NewEngagementService(repo repository.EngagementRepository) *EngagementService {
	return &EngagementService{repo: repo}
}

func (s *EngagementService) Like(ctx context.Context, userID, postID uint) error {
	return s.SetEngagement(ctx, userID, postID, models.PolarityLike)
}

func (s *EngagementService) Dislike(ctx context.Context, userID, postID uint) error {
	return s.SetEngagement(ctx, userID, postID, models.PolarityDislike)
}

// SetEngagement inserts or switches the record. Repeating the stored polarity
// fails with DUPLICATE_ENGAGEMENT.
func (s *EngagementService) SetEngagement(ctx context.Context, userID, postID uint, polarity models.Polarity) error {
	changed, err := s.repo.Set(ctx, userID, postID, polarity)
	if err != nil {
		observability.EngagementEvents.WithLabelValues(polarity.String(), "error").Inc()
		return err
	}
	if !changed {
		observability.EngagementEvents.WithLabelValues(polarity.String(), "duplicate").Inc()
		return models.NewDuplicateEngagementError(bool(polarity))
	}
	observability.EngagementEvents.WithLabelValues(polarity.String(), "applied").Inc()
	return nil
}

// CountsForPost returns like and dislike totals for postID.
func (s *EngagementService) CountsForPost(ctx context.Context, postID uint) (likes, dislikes int64, err error) {
	return s.repo.CountsForPost(ctx, postID)
}
