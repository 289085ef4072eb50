package server

import (
	"net/http"
	"testing"

	"wanderlog/internal/models"
	"wanderlog/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowFlow(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")
	carol := ts.register(t, "carol")

	resp, body := ts.do(t, alice.authorize(jsonRequest(http.MethodPost, "/api/follow/follow/"+itoa(alice.userID), nil)))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errBody models.ErrorResponse
	decode(t, body, &errBody)
	assert.Equal(t, models.CodeSelfFollow, errBody.Code)

	resp, _ = ts.do(t, alice.authorize(jsonRequest(http.MethodPost, "/api/follow/follow/"+itoa(bob.userID), nil)))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = ts.do(t, alice.authorize(jsonRequest(http.MethodPost, "/api/follow/follow/"+itoa(bob.userID), nil)))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	decode(t, body, &errBody)
	assert.Equal(t, models.CodeAlreadyFollowing, errBody.Code)

	var following, notFollowing, followers []models.UserSummary
	_, body = ts.do(t, alice.authorize(jsonRequest(http.MethodGet, "/api/follow/following", nil)))
	decode(t, body, &following)
	_, body = ts.do(t, alice.authorize(jsonRequest(http.MethodGet, "/api/follow/unfollowing-users", nil)))
	decode(t, body, &notFollowing)
	_, body = ts.do(t, bob.authorize(jsonRequest(http.MethodGet, "/api/follow/followers", nil)))
	decode(t, body, &followers)

	require.Len(t, following, 1)
	assert.Equal(t, bob.userID, following[0].ID)
	require.Len(t, notFollowing, 1)
	assert.Equal(t, carol.userID, notFollowing[0].ID)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)

	var counts models.FollowCounts
	_, body = ts.do(t, alice.authorize(jsonRequest(http.MethodGet, "/api/follow/counts/"+itoa(bob.userID), nil)))
	decode(t, body, &counts)
	assert.Equal(t, models.FollowCounts{Followers: 1, Following: 0}, counts)

	resp, _ = ts.do(t, alice.authorize(jsonRequest(http.MethodPost, "/api/follow/unfollow/"+itoa(bob.userID), nil)))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = ts.do(t, alice.authorize(jsonRequest(http.MethodPost, "/api/follow/follow/"+itoa(bob.userID), nil)))
	assert.Equal(t, http.StatusOK, resp.StatusCode, "follow after unfollow succeeds")
}

func TestFollowingFeed(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")
	carol := ts.register(t, "carol")
	bobPost := testutil.CreatePost(t, ts.db, bob.userID, "Lisbon Trams", "Portugal")
	testutil.CreatePost(t, ts.db, carol.userID, "Quiet Fjords", "Norway")

	feed := func() []models.EnrichedPost {
		resp, body := ts.do(t, alice.authorize(jsonRequest(http.MethodGet, "/api/blogposts/following/blogposts", nil)))
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		var posts []models.EnrichedPost
		decode(t, body, &posts)
		return posts
	}

	assert.Empty(t, feed(), "empty following set yields an empty feed")

	resp, _ := ts.do(t, alice.authorize(jsonRequest(http.MethodPost, "/api/follow/follow/"+itoa(bob.userID), nil)))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	posts := feed()
	require.Len(t, posts, 1)
	assert.Equal(t, bobPost.ID, posts[0].ID)
	assert.Equal(t, "bob", posts[0].Author)

	resp, _ = ts.do(t, alice.authorize(jsonRequest(http.MethodPost, "/api/follow/unfollow/"+itoa(bob.userID), nil)))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := ts.do(t, alice.authorize(jsonRequest(http.MethodGet, "/api/blogposts/following/blogposts", nil)))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestEngagementFlow(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	post := testutil.CreatePost(t, ts.db, alice.userID, "Kyoto Days", "Japan")
	path := itoa(post.ID)

	resp, body := ts.do(t, alice.authorize(jsonRequest(http.MethodPost, "/api/likes/like/"+path, nil)))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = ts.do(t, alice.authorize(jsonRequest(http.MethodPost, "/api/likes/like/"+path, nil)))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var errBody models.ErrorResponse
	decode(t, body, &errBody)
	assert.Equal(t, models.CodeDuplicateEngagement, errBody.Code)
	assert.Equal(t, "You have already liked this post", errBody.Error)

	resp, body = ts.do(t, alice.authorize(jsonRequest(http.MethodPost, "/api/likes/dislike/"+path, nil)))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Likes    int64 `json:"like_count"`
		Dislikes int64 `json:"dislike_count"`
	}
	decode(t, body, &out)
	assert.Equal(t, int64(0), out.Likes)
	assert.Equal(t, int64(1), out.Dislikes)

	var records int64
	require.NoError(t, ts.db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&records).Error)
	assert.Equal(t, int64(1), records)
}

func TestComments(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	post := testutil.CreatePost(t, ts.db, alice.userID, "Kyoto Days", "Japan")
	path := itoa(post.ID)

	resp, _ := ts.do(t, alice.authorize(jsonRequest(http.MethodPost, "/api/comments/add/"+path, fiber.Map{"commentText": "  "})))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	for _, text := range []string{"first", "second"} {
		resp, _ := ts.do(t, alice.authorize(jsonRequest(http.MethodPost, "/api/comments/add/"+path, fiber.Map{"commentText": text})))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := ts.do(t, alice.authorize(jsonRequest(http.MethodGet, "/api/comments/"+path, nil)))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var comments []models.CommentView
	decode(t, body, &comments)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].CommentText)
	assert.Equal(t, "alice", comments[1].Username)

	resp, _ = ts.do(t, jsonRequest(http.MethodGet, "/api/comments/"+path, nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
