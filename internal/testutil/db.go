// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"wanderlog/internal/database"
	"wanderlog/internal/models"
	"wanderlog/internal/security"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestPassword satisfies the password policy and is the plaintext behind
// every user created by CreateUser.
const TestPassword = "Secret1!"

// NewTestDB opens a private in-memory SQLite database migrated with the
// embedded SQL migrations. It is closed when the test ends.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(":memory:", logger.Discard)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := database.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// CreateUser inserts a user named username with email username@example.com.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: hash,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// CreatePost inserts a post owned by userID.
func CreatePost(t testing.TB, db *gorm.DB, userID uint, title, country string) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:      userID,
		Title:       title,
		Content:     "A long walk through old streets, temples and quiet tea houses.",
		CountryName: country,
		DateOfVisit: "2024-05-01",
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post %q: %v", title, err)
	}
	return post
}
