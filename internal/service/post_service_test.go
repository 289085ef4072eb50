package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"wanderlog/internal/models"
	"wanderlog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostService(repo *postRepoStub) (*PostService, *testutil.MemoryStore) {
	store := testutil.NewMemoryStore()
	return NewPostService(repo, NewImageService(store, 5)), store
}

func validCreate() CreatePostInput {
	return CreatePostInput{
		UserID:      1,
		Title:       "Kyoto Days",
		Content:     strings.Repeat("temples ", 8),
		CountryName: "Japan",
		DateOfVisit: "2024-05-01",
	}
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	svc, _ := newPostService(&postRepoStub{})
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreatePostInput)
	}{
		{"empty title", func(in *CreatePostInput) { in.Title = "  " }},
		{"title too long", func(in *CreatePostInput) { in.Title = strings.Repeat("x", 301) }},
		{"missing content", func(in *CreatePostInput) { in.Content = "" }},
		{"content too long", func(in *CreatePostInput) { in.Content = strings.Repeat("x", 50001) }},
		{"missing country", func(in *CreatePostInput) { in.CountryName = "" }},
		{"missing date", func(in *CreatePostInput) { in.DateOfVisit = "" }},
		{"bad date format", func(in *CreatePostInput) { in.DateOfVisit = "05/01/2024" }},
		{"impossible date", func(in *CreatePostInput) { in.DateOfVisit = "2024-02-30" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			in := validCreate()
			tc.mutate(&in)
			_, err := svc.CreatePost(ctx, in)
			assertCode(t, err, models.CodeValidation)
		})
	}
}

func TestPostService_CreatePost_StoresImage(t *testing.T) {
	t.Parallel()

	var saved *models.Post
	svc, store := newPostService(&postRepoStub{createFn: func(_ context.Context, p *models.Post) error {
		saved = p
		return nil
	}})

	in := validCreate()
	in.Image = &Upload{Filename: "kyoto.png", Content: testutil.TinyPNG(t, 4, 4)}
	post, err := svc.CreatePost(context.Background(), in)
	require.NoError(t, err)

	assert.Same(t, saved, post)
	assert.True(t, strings.HasPrefix(post.Image, "/uploads/posts/"))
	assert.Equal(t, 1, store.Len())
}

func TestPostService_CreatePost_RemovesImageWhenInsertFails(t *testing.T) {
	t.Parallel()

	svc, store := newPostService(&postRepoStub{createFn: func(context.Context, *models.Post) error {
		return models.NewNotFoundError("User", 1)
	}})

	in := validCreate()
	in.Image = &Upload{Content: testutil.TinyJPEG(t, 4, 4)}
	_, err := svc.CreatePost(context.Background(), in)
	assertCode(t, err, models.CodeNotFound)
	assert.Equal(t, 0, store.Len())
	assert.Len(t, store.Deleted, 1)
}

func TestPostService_UpdatePost_Ownership(t *testing.T) {
	t.Parallel()

	owned := func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 10, Title: "old", Image: "/uploads/posts/old.png"}, nil
	}

	t.Run("non-owner cannot update", func(t *testing.T) {
		t.Parallel()
		updated := false
		svc, _ := newPostService(&postRepoStub{
			getByIDFn: owned,
			updateFn:  func(context.Context, *models.Post) error { updated = true; return nil },
		})
		in := validCreate()
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
			UserID: 1, PostID: 5, Title: in.Title, Content: in.Content, CountryName: in.CountryName, DateOfVisit: in.DateOfVisit,
		})
		assertCode(t, err, models.CodeForbidden)
		assert.False(t, updated)
	})

	t.Run("owner keeps image when none uploaded", func(t *testing.T) {
		t.Parallel()
		svc, store := newPostService(&postRepoStub{getByIDFn: owned})
		in := validCreate()
		post, err := svc.UpdatePost(context.Background(), UpdatePostInput{
			UserID: 10, PostID: 5, Title: "new", Content: in.Content, CountryName: "Peru", DateOfVisit: in.DateOfVisit,
		})
		require.NoError(t, err)
		assert.Equal(t, "new", post.Title)
		assert.Equal(t, "Peru", post.CountryName)
		assert.Equal(t, "/uploads/posts/old.png", post.Image)
		assert.Empty(t, store.Deleted)
	})

	t.Run("owner replaces image", func(t *testing.T) {
		t.Parallel()
		svc, store := newPostService(&postRepoStub{getByIDFn: owned})
		in := validCreate()
		post, err := svc.UpdatePost(context.Background(), UpdatePostInput{
			UserID: 10, PostID: 5, Title: in.Title, Content: in.Content, CountryName: in.CountryName, DateOfVisit: in.DateOfVisit,
			Image: &Upload{Content: testutil.TinyGIF(t, 3, 3)},
		})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(post.Image, ".gif"))
		assert.Equal(t, []string{"/uploads/posts/old.png"}, store.Deleted)
	})

	t.Run("unknown post", func(t *testing.T) {
		t.Parallel()
		svc, _ := newPostService(&postRepoStub{})
		in := validCreate()
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
			UserID: 10, PostID: 99, Title: in.Title, Content: in.Content, CountryName: in.CountryName, DateOfVisit: in.DateOfVisit,
		})
		assertCode(t, err, models.CodeNotFound)
	})
}

func TestPostService_DeletePost_Ownership(t *testing.T) {
	t.Parallel()

	post := func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 10, Image: "/uploads/posts/a.png"}, nil
	}

	t.Run("owner can delete", func(t *testing.T) {
		t.Parallel()
		var deleted uint
		svc, store := newPostService(&postRepoStub{
			getByIDFn: post,
			deleteFn:  func(_ context.Context, id uint) error { deleted = id; return nil },
		})
		require.NoError(t, svc.DeletePost(context.Background(), DeletePostInput{UserID: 10, PostID: 3}))
		assert.Equal(t, uint(3), deleted)
		assert.Equal(t, []string{"/uploads/posts/a.png"}, store.Deleted)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		t.Parallel()
		svc, store := newPostService(&postRepoStub{getByIDFn: post})
		err := svc.DeletePost(context.Background(), DeletePostInput{UserID: 1, PostID: 3})
		assertCode(t, err, models.CodeForbidden)
		assert.Empty(t, store.Deleted)
	})

	t.Run("storage failure keeps image", func(t *testing.T) {
		t.Parallel()
		svc, store := newPostService(&postRepoStub{
			getByIDFn: post,
			deleteFn:  func(context.Context, uint) error { return models.NewInternalError(errors.New("disk")) },
		})
		err := svc.DeletePost(context.Background(), DeletePostInput{UserID: 10, PostID: 3})
		assertCode(t, err, models.CodeInternal)
		assert.Empty(t, store.Deleted)
	})
}
