package models

import "time"

// Comment represents a comment on a post. Comments are append-only.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"comment_id"`
	PostID      uint      `gorm:"not null;index" json:"post_id"`
	UserID      uint      `gorm:"not null" json:"user_id"`
	CommentText string    `gorm:"type:text;not null" json:"comment_text"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Comment) TableName() string {
	return "comments"
}

// CommentView is a comment joined with its author's username.
type CommentView struct {
	Comment
	Username string `gorm:"->" json:"username"`
}
