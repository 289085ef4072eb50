package models

import "time"

// Post represents a travel blog post.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"post_id"`
	UserID      uint      `gorm:"not null;index:idx_blog_posts_user_created" json:"user_id"`
	Title       string    `gorm:"not null" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	CountryName string    `gorm:"not null;index" json:"country_name"`
	DateOfVisit string    `gorm:"not null" json:"date_of_visit"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `gorm:"index:idx_blog_posts_user_created" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "blog_posts"
}

// EngagementCounts holds the per-post aggregates attached to feed entries.
type EngagementCounts struct {
	LikeCount    int64 `json:"like_count"`
	DislikeCount int64 `json:"dislike_count"`
	CommentCount int64 `json:"comment_count"`
}

// EnrichedPost is a Post joined with its author identity and engagement counts.
// The embedded Post is a copy; feed assembly never mutates stored posts.
type EnrichedPost struct {
	Post
	Author         string `json:"author"`
	ProfilePicture string `json:"profile_picture"`
	EngagementCounts
}

// PostWithComments is the detail view of a single post.
type PostWithComments struct {
	EnrichedPost
	Comments []CommentView `json:"comments"`
}
