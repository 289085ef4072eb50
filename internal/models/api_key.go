package models

import "time"

// APIKey is a long-lived secret that authorizes sessionless endpoints.
type APIKey struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Key        string    `gorm:"uniqueIndex;not null" json:"key"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	UsageCount int64     `gorm:"not null;default:0" json:"usage_count"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (APIKey) TableName() string {
	return "api_keys"
}

// APIKeyUsageLog is an immutable record of one guarded request.
type APIKeyUsageLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	APIKeyID    uint      `gorm:"not null;index" json:"api_key_id"`
	Endpoint    string    `gorm:"not null" json:"endpoint"`
	RequestTime time.Time `gorm:"not null;autoCreateTime" json:"request_time"`
	Success     bool      `gorm:"not null" json:"success"`
}

// TableName specifies the table name for GORM
func (APIKeyUsageLog) TableName() string {
	return "api_key_usage_logs"
}
