package repository

import (
	"context"
	"errors"

	"wanderlog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementRepository persists like/dislike records. The unique index on
// (user_id, post_id) is what keeps a user to one record per post.
type EngagementRepository interface {
	// Set records polarity for the pair and reports whether anything changed.
	// false means a record with the same polarity already existed.
	Set(ctx context.Context, userID, postID uint, polarity models.Polarity) (bool, error)
	// Get returns the pair's record, or nil when there is none.
	Get(ctx context.Context, userID, postID uint) (*models.Like, error)
	CountsForPost(ctx context.Context, postID uint) (likes, dislikes int64, err error)
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new EngagementRepository.
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

// Set is a single conditional upsert: insert, or switch polarity in place.
// A repeat of the stored polarity matches the conflict but not the update
// guard, so no row is affected.
func (r *engagementRepository) Set(ctx context.Context, userID, postID uint, polarity models.Polarity) (bool, error) {
	like := models.Like{UserID: userID, PostID: postID, IsLike: bool(polarity)}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_like", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "likes.is_like <> excluded.is_like"},
		}},
	}).Create(&like)
	if res.Error != nil {
		if isForeignKeyError(res.Error) {
			return false, models.NewNotFoundError("Post", postID)
		}
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *engagementRepository) Get(ctx context.Context, userID, postID uint) (*models.Like, error) {
	var like models.Like
	err := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).First(&like).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &like, nil
}

// CountsForPost partitions the post's records by polarity in one pass.
func (r *engagementRepository) CountsForPost(ctx context.Context, postID uint) (int64, int64, error) {
	var row struct {
		Likes    int64
		Dislikes int64
	}
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Select("COALESCE(SUM(CASE WHEN is_like THEN 1 ELSE 0 END), 0) AS likes, "+
			"COALESCE(SUM(CASE WHEN is_like THEN 0 ELSE 1 END), 0) AS dislikes").
		Where("post_id = ?", postID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	return row.Likes, row.Dislikes, nil
}
