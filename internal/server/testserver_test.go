package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"wanderlog/internal/config"
	"wanderlog/internal/middleware"
	"wanderlog/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	*Server
	app   *fiber.App
	db    *gorm.DB
	store *testutil.MemoryStore
}

func testConfig() *config.Config {
	return &config.Config{
		Env:              "test",
		JWTSecret:        "test-jwt-secret",
		CSRFSecret:       "test-csrf-secret",
		SessionTTLHours:  24,
		CountriesBaseURL: "http://127.0.0.1:0",
		CountriesTimeout: 2,
		ImageMaxUploadMB: 5,
	}
}

// newTestServer wires a Server over in-memory SQLite without Redis.
func newTestServer(t *testing.T, tweak ...func(*config.Config)) *testServer {
	t.Helper()
	cfg := testConfig()
	for _, fn := range tweak {
		fn(cfg)
	}
	db := testutil.NewTestDB(t)
	store := testutil.NewMemoryStore()
	s, err := NewServerWithDeps(cfg, db, nil, store)
	require.NoError(t, err)
	return &testServer{Server: s, app: s.App(), db: db, store: store}
}

// session is the credential set a browser would hold after login.
type session struct {
	jwt    string
	csrf   string
	apiKey string
	userID uint
}

func (ts *testServer) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, body
}

func jsonRequest(method, path string, payload interface{}) *http.Request {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return req
}

// authorize attaches the session cookies and the matching CSRF header.
func (s *session) authorize(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: s.jwt})
	req.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: s.csrf})
	req.Header.Set(middleware.CSRFHeaderName, s.csrf)
	return req
}

func (ts *testServer) register(t *testing.T, username string) *session {
	t.Helper()
	resp, body := ts.do(t, jsonRequest(http.MethodPost, "/api/auth/register", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": testutil.TestPassword,
	}))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var out struct {
		CSRFToken string `json:"csrfToken"`
		APIKey    string `json:"apiKey"`
		User      struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body, &out))

	s := &session{csrf: out.CSRFToken, apiKey: out.APIKey, userID: out.User.ID}
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			s.jwt = c.Value
		}
	}
	require.NotEmpty(t, s.jwt)
	return s
}

func decode(t *testing.T, body []byte, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(body, dest), string(body))
}

// multipartRequest builds a form with fields and an optional file part.
func multipartRequest(t *testing.T, method, path string, fields map[string]string, fileField, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func decodeBody(resp *http.Response, dest interface{}) error {
	defer func() { _ = resp.Body.Close() }()
	return json.NewDecoder(resp.Body).Decode(dest)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
