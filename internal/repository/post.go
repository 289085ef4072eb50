package repository

import (
	"context"
	"errors"

	"wanderlog/internal/models"

	"gorm.io/gorm"
)

const (
	likeCountExpr    = "(SELECT COUNT(*) FROM likes WHERE likes.post_id = blog_posts.id AND likes.is_like = 1)"
	commentCountExpr = "(SELECT COUNT(*) FROM comments WHERE comments.post_id = blog_posts.id)"
)

// PostRepository defines persistence operations for blog posts.
// Every listing is newest first unless its name says otherwise.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	ListAll(ctx context.Context) ([]models.Post, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []uint, page, pageSize int) ([]models.Post, error)
	Recent(ctx context.Context, limit int) ([]models.Post, error)
	// Popular orders by like count, then comment count.
	Popular(ctx context.Context, limit int) ([]models.Post, error)
	// MostCommented orders by comment count.
	MostCommented(ctx context.Context, limit int) ([]models.Post, error)
	// Search matches query as a substring of the country name or title.
	Search(ctx context.Context, query string, page, pageSize int) ([]models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewNotFoundError("User", post.UserID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// Update writes the owner-editable fields of post.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(post).Select("title", "content", "country_name", "date_of_visit", "image", "updated_at").Updates(post)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

func (r *postRepository) ListAll(ctx context.Context) ([]models.Post, error) {
	return r.find(r.newest(ctx))
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint) ([]models.Post, error) {
	return r.find(r.newest(ctx).Where("user_id = ?", userID))
}

func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []uint, page, pageSize int) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	return r.find(r.newest(ctx).
		Where("user_id IN ?", authorIDs).
		Offset(pageOffset(page, pageSize)).
		Limit(pageSize))
}

func (r *postRepository) Recent(ctx context.Context, limit int) ([]models.Post, error) {
	return r.find(r.newest(ctx).Limit(limit))
}

func (r *postRepository) Popular(ctx context.Context, limit int) ([]models.Post, error) {
	return r.find(r.db.WithContext(ctx).
		Order(likeCountExpr + " DESC").
		Order(commentCountExpr + " DESC").
		Order("created_at DESC, id DESC").
		Limit(limit))
}

func (r *postRepository) MostCommented(ctx context.Context, limit int) ([]models.Post, error) {
	return r.find(r.db.WithContext(ctx).
		Order(commentCountExpr + " DESC").
		Order("created_at DESC, id DESC").
		Limit(limit))
}

func (r *postRepository) Search(ctx context.Context, query string, page, pageSize int) ([]models.Post, error) {
	pattern := "%" + escapeLike(query) + "%"
	return r.find(r.newest(ctx).
		Where(`country_name LIKE ? ESCAPE '\' OR title LIKE ? ESCAPE '\'`, pattern, pattern).
		Offset(pageOffset(page, pageSize)).
		Limit(pageSize))
}

func (r *postRepository) newest(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Order("created_at DESC, id DESC")
}

func (r *postRepository) find(q *gorm.DB) ([]models.Post, error) {
	posts := []models.Post{}
	if err := q.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '\\', '%', '_':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
