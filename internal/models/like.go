package models

import "time"

// Polarity is the direction of an engagement record.
type Polarity bool

const (
	// PolarityLike marks a like.
	PolarityLike Polarity = true
	// PolarityDislike marks a dislike.
	PolarityDislike Polarity = false
)

func (p Polarity) String() string {
	if p {
		return "like"
	}
	return "dislike"
}

// Like is the engagement record of one user on one post.
// The combination of UserID and PostID is unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"like_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post;index" json:"post_id"`
	IsLike    bool      `gorm:"not null" json:"is_like"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Like) TableName() string {
	return "likes"
}
