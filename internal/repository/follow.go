package repository

import (
	"context"

	"wanderlog/internal/models"

	"gorm.io/gorm"
)

// FollowRepository persists directed follow edges.
type FollowRepository interface {
	Create(ctx context.Context, followerID, followingID uint) error
	// Delete removes the edge and reports how many rows went away.
	Delete(ctx context.Context, followerID, followingID uint) (int64, error)
	ListFollowers(ctx context.Context, userID uint) ([]models.UserSummary, error)
	ListFollowing(ctx context.Context, userID uint) ([]models.UserSummary, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	Counts(ctx context.Context, userID uint) (models.FollowCounts, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts the edge. The composite primary key rejects duplicates and
// the table's CHECK rejects self-loops.
func (r *followRepository) Create(ctx context.Context, followerID, followingID uint) error {
	edge := models.Follow{FollowerID: followerID, FollowingID: followingID}
	err := r.db.WithContext(ctx).Create(&edge).Error
	switch {
	case err == nil:
		return nil
	case isUniqueConstraintError(err):
		return models.NewAlreadyFollowingError()
	case isCheckConstraintError(err):
		return models.NewSelfFollowError()
	case isForeignKeyError(err):
		return models.NewNotFoundError("User", followingID)
	default:
		return models.NewInternalError(err)
	}
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	return r.summaries(ctx, "followers.follower_id", "followers.following_id = ?", userID)
}

func (r *followRepository) ListFollowing(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	return r.summaries(ctx, "followers.following_id", "followers.follower_id = ?", userID)
}

func (r *followRepository) summaries(ctx context.Context, joinColumn, where string, userID uint) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	if err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.username").
		Joins("JOIN followers ON users.id = "+joinColumn).
		Where(where, userID).
		Order("users.username ASC").
		Scan(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) Counts(ctx context.Context, userID uint) (models.FollowCounts, error) {
	var counts models.FollowCounts
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Count(&counts.Followers).Error; err != nil {
		return counts, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&counts.Following).Error; err != nil {
		return counts, models.NewInternalError(err)
	}
	return counts, nil
}
