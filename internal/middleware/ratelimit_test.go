package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func TestRateLimiter_DisabledEnvironments(t *testing.T) {
	for _, env := range []string{"", "test", "development", "stress"} {
		t.Run("env="+env, func(t *testing.T) {
			l := NewRateLimiter(nil, env, FailClosed)
			for i := 0; i < 3; i++ {
				ok, err := l.Allow(context.Background(), "login", "ip:1", 1, time.Minute)
				require.NoError(t, err)
				assert.True(t, ok)
			}
		})
	}
}

func TestRateLimiter_AllowCountsWindow(t *testing.T) {
	rdb, mr := newTestRedis(t)
	l := NewRateLimiter(rdb, "production", FailOpen)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "login", "ip:1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "login", "ip:1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, time.Minute, mr.TTL("rl:login:ip:1"))

	mr.FastForward(time.Minute + time.Second)
	ok, err = l.Allow(ctx, "login", "ip:1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "window resets after expiry")
}

func TestRateLimiter_NilClientErrors(t *testing.T) {
	l := NewRateLimiter(nil, "production", FailOpen)
	_, err := l.Allow(context.Background(), "login", "ip:1", 1, time.Minute)
	assert.Error(t, err)
}

func TestRateLimiter_Limit(t *testing.T) {
	rdb, mr := newTestRedis(t)

	newApp := func(l *RateLimiter) *fiber.App {
		app := fiber.New()
		app.Post("/login", l.Limit("login", 1, 5*time.Minute), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusNoContent)
		})
		return app
	}

	app := newApp(NewRateLimiter(rdb, "production", FailOpen))
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "300", resp.Header.Get(fiber.HeaderRetryAfter))

	mr.Close()

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "fail-open lets traffic through")

	closed := newApp(NewRateLimiter(rdb, "production", FailClosed))
	resp, err = closed.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
