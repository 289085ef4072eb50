package server

import (
	"net/http"
	"testing"

	"wanderlog/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func TestLiveness(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/health/live", "/api/health"} {
		resp, _ := ts.do(t, jsonRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestReadiness_DegradedWithoutRedis(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, jsonRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out readiness
	decode(t, body, &out)
	assert.Equal(t, "degraded", out.Status)
	assert.Equal(t, "healthy", out.Checks["database"])
	assert.Equal(t, "unavailable", out.Checks["redis"])
}

func TestReadiness_HealthyWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s, err := NewServerWithDeps(testConfig(), testutil.NewTestDB(t), rdb, testutil.NewMemoryStore())
	require.NoError(t, err)
	ts := &testServer{Server: s, app: s.App()}

	resp, body := ts.do(t, jsonRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out readiness
	decode(t, body, &out)
	assert.Equal(t, "healthy", out.Status)
}

func TestReadiness_DatabaseDown(t *testing.T) {
	ts := newTestServer(t)
	sqlDB, err := ts.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	resp, body := ts.do(t, jsonRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	var out readiness
	decode(t, body, &out)
	assert.Equal(t, "unhealthy", out.Status)
}

func TestSecurityHeaders(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.do(t, jsonRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}
