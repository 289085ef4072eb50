package service

import (
	"context"
	"strings"
	"testing"

	"wanderlog/internal/models"
	"wanderlog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_EditProfile(t *testing.T) {
	t.Parallel()

	current := func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "alice", ProfilePicture: "/uploads/profiles/old.png"}, nil
	}

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(&userRepoStub{getByIDFn: current}, NewImageService(testutil.NewMemoryStore(), 1))
		for _, in := range []EditProfileInput{
			{UserID: 1, Username: " "},
			{UserID: 1, Username: "a"},
			{UserID: 1, Username: "alice", Address: strings.Repeat("x", maxAddressLen+1)},
			{UserID: 1, Username: "alice", Description: strings.Repeat("x", maxDescriptionLen+1)},
		} {
			_, err := svc.EditProfile(context.Background(), in)
			assertCode(t, err, models.CodeValidation)
		}
	})

	t.Run("replaces picture", func(t *testing.T) {
		t.Parallel()
		store := testutil.NewMemoryStore()
		var saved *models.User
		svc := NewUserService(&userRepoStub{
			getByIDFn:       current,
			updateProfileFn: func(_ context.Context, u *models.User) error { saved = u; return nil },
		}, NewImageService(store, 1))

		user, err := svc.EditProfile(context.Background(), EditProfileInput{
			UserID: 1, Username: "alice_travels", Address: "Lisbon", Description: "slow travel",
			Picture: &Upload{Content: testutil.TinyPNG(t, 4, 4)},
		})
		require.NoError(t, err)
		assert.Same(t, saved, user)
		assert.Equal(t, "alice_travels", user.Username)
		assert.True(t, strings.HasPrefix(user.ProfilePicture, "/uploads/profiles/"))
		assert.Equal(t, []string{"/uploads/profiles/old.png"}, store.Deleted)
	})

	t.Run("duplicate username keeps old picture", func(t *testing.T) {
		t.Parallel()
		store := testutil.NewMemoryStore()
		svc := NewUserService(&userRepoStub{
			getByIDFn: current,
			updateProfileFn: func(context.Context, *models.User) error {
				return models.NewConflictError("Username is already taken")
			},
		}, NewImageService(store, 1))

		_, err := svc.EditProfile(context.Background(), EditProfileInput{
			UserID: 1, Username: "bob", Picture: &Upload{Content: testutil.TinyPNG(t, 4, 4)},
		})
		assertCode(t, err, models.CodeConflict)
		require.Len(t, store.Deleted, 1)
		assert.NotEqual(t, "/uploads/profiles/old.png", store.Deleted[0])
		assert.Zero(t, store.Len())
	})
}
