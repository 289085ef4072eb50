package server

import (
	"net/http"
	"testing"
	"time"

	"wanderlog/internal/middleware"
	"wanderlog/internal/models"
	"wanderlog/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, jsonRequest(http.MethodPost, "/api/auth/register", fiber.Map{
		"username": "alice",
		"email":    "a@x.com",
		"password": "Secret1!",
	}))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var out map[string]interface{}
	decode(t, body, &out)
	assert.NotEmpty(t, out["accessToken"])
	assert.NotEmpty(t, out["csrfToken"])
	assert.NotEmpty(t, out["apiKey"])
	user := out["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "password")
}

func TestRegister_Rejects(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice")

	tests := []struct {
		name   string
		body   fiber.Map
		status int
	}{
		{"weak password", fiber.Map{"username": "bob", "email": "b@x.com", "password": "short"}, http.StatusBadRequest},
		{"bad email", fiber.Map{"username": "bob", "email": "nope", "password": "Secret1!"}, http.StatusBadRequest},
		{"missing username", fiber.Map{"email": "b@x.com", "password": "Secret1!"}, http.StatusBadRequest},
		{"duplicate username", fiber.Map{"username": "alice", "email": "b@x.com", "password": "Secret1!"}, http.StatusInternalServerError},
		{"duplicate email", fiber.Map{"username": "bob", "email": "alice@example.com", "password": "Secret1!"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := ts.do(t, jsonRequest(http.MethodPost, "/api/auth/register", tt.body))
			assert.Equal(t, tt.status, resp.StatusCode, string(body))
		})
	}
}

func TestLogin_SetsCookies(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice")

	resp, body := ts.do(t, jsonRequest(http.MethodPost, "/api/auth/login", fiber.Map{
		"username": "alice",
		"password": testutil.TestPassword,
	}))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	cookies := map[string]*http.Cookie{}
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c
	}
	jwt := cookies[middleware.SessionCookieName]
	csrf := cookies[middleware.CSRFCookieName]
	require.NotNil(t, jwt)
	require.NotNil(t, csrf)
	assert.True(t, jwt.HttpOnly)
	assert.False(t, csrf.HttpOnly)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), jwt.Expires, time.Minute)
	assert.WithinDuration(t, jwt.Expires, csrf.Expires, time.Second)

	var out struct {
		CSRFToken string      `json:"csrfToken"`
		APIKey    string      `json:"apiKey"`
		User      models.User `json:"user"`
	}
	decode(t, body, &out)
	assert.Equal(t, csrf.Value, out.CSRFToken)
	assert.NotEmpty(t, out.APIKey)
	assert.Equal(t, "alice", out.User.Username)
}

func TestLogin_InvalidCredentialsAreIndistinguishable(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice")

	_, unknownUser := ts.do(t, jsonRequest(http.MethodPost, "/api/auth/login", fiber.Map{
		"username": "nobody", "password": testutil.TestPassword,
	}))
	resp, wrongPassword := ts.do(t, jsonRequest(http.MethodPost, "/api/auth/login", fiber.Map{
		"username": "alice", "password": "Wrong123!",
	}))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, string(unknownUser), string(wrongPassword))
}

func TestLogout_ClearsCookiesWithoutRevokingToken(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")

	resp, _ := ts.do(t, alice.authorize(jsonRequest(http.MethodPost, "/api/auth/logout", nil)))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		assert.Empty(t, c.Value, c.Name)
	}

	// A replayed token stays valid until it expires.
	resp, _ = ts.do(t, alice.authorize(jsonRequest(http.MethodGet, "/api/user/profile", nil)))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestResetPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice")

	resp, _ := ts.do(t, jsonRequest(http.MethodPost, "/api/auth/reset-password", fiber.Map{
		"email": "ghost@example.com", "newPassword": "Another1!",
	}))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ts.do(t, jsonRequest(http.MethodPost, "/api/auth/reset-password", fiber.Map{
		"email": "alice@example.com", "newPassword": "Another1!",
	}))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = ts.do(t, jsonRequest(http.MethodPost, "/api/auth/login", fiber.Map{
		"username": "alice", "password": "Another1!",
	}))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionRequired(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, jsonRequest(http.MethodGet, "/api/user/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := jsonRequest(http.MethodGet, "/api/user/profile", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "garbage"})
	resp, body := ts.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var out models.ErrorResponse
	decode(t, body, &out)
	assert.Equal(t, models.CodeInvalidSession, out.Code)
}

// A valid session with a missing or mismatched x-csrf-token is refused on
// every mutating route, whatever the payload.
func TestCSRFRequiredOnMutations(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")
	post := testutil.CreatePost(t, ts.db, alice.userID, "Kyoto Days", "Japan")

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/follow/follow/" + itoa(bob.userID)},
		{http.MethodPost, "/api/follow/unfollow/" + itoa(bob.userID)},
		{http.MethodPost, "/api/likes/like/" + itoa(post.ID)},
		{http.MethodPost, "/api/likes/dislike/" + itoa(post.ID)},
		{http.MethodPost, "/api/comments/add/" + itoa(post.ID)},
		{http.MethodPost, "/api/blogposts/create"},
		{http.MethodPut, "/api/blogposts/update/" + itoa(post.ID)},
		{http.MethodDelete, "/api/blogposts/delete/" + itoa(post.ID)},
		{http.MethodPut, "/api/user/profile/edit"},
		{http.MethodPost, "/api/apikeys/generate"},
		{http.MethodDelete, "/api/apikeys/delete"},
	}
	headers := []struct {
		name  string
		value string
	}{
		{"absent", ""},
		{"mismatched", bob.csrf},
	}

	for _, r := range routes {
		for _, h := range headers {
			t.Run(r.method+" "+r.path+" "+h.name, func(t *testing.T) {
				req := jsonRequest(r.method, r.path, fiber.Map{"commentText": "valid text"})
				req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: alice.jwt})
				req.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: alice.csrf})
				if h.value != "" {
					req.Header.Set(middleware.CSRFHeaderName, h.value)
				}
				resp, body := ts.do(t, req)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode, string(body))
			})
		}
	}

	var posts int64
	require.NoError(t, ts.db.Model(&models.Post{}).Count(&posts).Error)
	assert.Equal(t, int64(1), posts, "no mutation may get through")
}

func TestCSRFForgedPairRejected(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")

	forged := &session{jwt: alice.jwt, csrf: "forged-token-value"}
	resp, _ := ts.do(t, forged.authorize(jsonRequest(http.MethodPost, "/api/apikeys/generate", nil)))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
