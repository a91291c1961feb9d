package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/taskboard/internal/config"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// listServer is a minimal /tasks endpoint: GET lists, POST appends or
// answers 422 for an empty text.
func listServer(mws ...echo.MiddlewareFunc) (*echo.Echo, func() int) {
	var (
		mu    sync.Mutex
		tasks = []string{"a"}
		reads int
	)
	e := echo.New()
	e.GET("/tasks", func(c echo.Context) error {
		mu.Lock()
		defer mu.Unlock()
		reads++
		return c.JSON(http.StatusOK, echo.Map{"tasks": append([]string(nil), tasks...)})
	}, mws...)
	e.POST("/tasks", func(c echo.Context) error {
		var req struct {
			Text string `json:"text"`
		}
		if err := c.Bind(&req); err != nil {
			return err
		}
		if req.Text == "" {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "validation_failed"})
		}
		mu.Lock()
		tasks = append(tasks, req.Text)
		mu.Unlock()
		return c.JSON(http.StatusOK, echo.Map{"message": "Task added successfully"})
	}, mws...)
	return e, func() int {
		mu.Lock()
		defer mu.Unlock()
		return reads
	}
}

func serve(e *echo.Echo, method, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/tasks", nil)
	} else {
		req = httptest.NewRequest(method, "/tasks", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.7")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRedisCache_MissThenHit(t *testing.T) {
	_, rdb := newRedis(t)
	e, reads := listServer(NewRedisCache(config.DefaultCacheConfig(), rdb, nil))

	first := serve(e, http.MethodGet, "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := serve(e, http.MethodGet, "")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, first.Header().Get(echo.HeaderContentType), second.Header().Get(echo.HeaderContentType))
	assert.Equal(t, 1, reads(), "a hit never reaches the handler")
}

func TestRedisCache_SuccessfulPostInvalidates(t *testing.T) {
	mr, rdb := newRedis(t)
	e, reads := listServer(NewRedisCache(config.DefaultCacheConfig(), rdb, nil))

	require.Equal(t, "MISS", serve(e, http.MethodGet, "").Header().Get("X-Cache"))
	require.Equal(t, "HIT", serve(e, http.MethodGet, "").Header().Get("X-Cache"))

	post := serve(e, http.MethodPost, `{"text":"b"}`)
	require.Equal(t, http.StatusOK, post.Code)
	assert.Empty(t, post.Header().Get("X-Cache"), "writes are never cached")

	gen, err := mr.Get("cache:generation")
	require.NoError(t, err)
	assert.Equal(t, "1", gen)

	after := serve(e, http.MethodGet, "")
	assert.Equal(t, "MISS", after.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"tasks":["a","b"]}`, after.Body.String())
	assert.Equal(t, 2, reads())
}

func TestRedisCache_RejectedPostKeepsCache(t *testing.T) {
	mr, rdb := newRedis(t)
	e, reads := listServer(NewRedisCache(config.DefaultCacheConfig(), rdb, nil))

	require.Equal(t, "MISS", serve(e, http.MethodGet, "").Header().Get("X-Cache"))

	post := serve(e, http.MethodPost, `{"text":""}`)
	require.Equal(t, http.StatusUnprocessableEntity, post.Code)
	assert.False(t, mr.Exists("cache:generation"), "a failed write leaves the generation alone")

	again := serve(e, http.MethodGet, "")
	assert.Equal(t, "HIT", again.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"tasks":["a"]}`, again.Body.String())
	assert.Equal(t, 1, reads())
}

func TestRedisCache_ExpiresAfterTTL(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.DefaultCacheConfig()
	cfg.TTL = 5 * time.Second
	e, _ := listServer(NewRedisCache(cfg, rdb, nil))

	require.Equal(t, "MISS", serve(e, http.MethodGet, "").Header().Get("X-Cache"))
	mr.FastForward(6 * time.Second)
	assert.Equal(t, "MISS", serve(e, http.MethodGet, "").Header().Get("X-Cache"))
}

func TestRedisCache_RedisDownBypasses(t *testing.T) {
	mr, rdb := newRedis(t)
	e, reads := listServer(NewRedisCache(config.DefaultCacheConfig(), rdb, nil))
	mr.Close()

	rec := serve(e, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Equal(t, 1, reads())
}

func newBucket(t *testing.T, rdb *redis.Client, capacity int) (*TokenBucket, *time.Time) {
	t.Helper()
	cfg := config.DefaultRateLimitConfig()
	cfg.Capacity = capacity
	b := NewTokenBucket(cfg, rdb, nil)
	require.NotNil(t, b)

	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestTokenBucket_Take(t *testing.T) {
	mr, rdb := newRedis(t)
	b, now := newBucket(t, rdb, 2)
	ctx := context.Background()

	d, err := b.Take(ctx, "rl:test")
	require.NoError(t, err)
	assert.Equal(t, Decision{Allowed: true, Remaining: 1}, d)

	d, err = b.Take(ctx, "rl:test")
	require.NoError(t, err)
	assert.Equal(t, Decision{Allowed: true, Remaining: 0}, d)

	d, err = b.Take(ctx, "rl:test")
	require.NoError(t, err)
	assert.Equal(t, Decision{Allowed: false, Remaining: 0, RetryAfter: time.Second}, d)

	*now = now.Add(400 * time.Millisecond)
	d, err = b.Take(ctx, "rl:test")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 600*time.Millisecond, d.RetryAfter)

	*now = now.Add(600 * time.Millisecond)
	d, err = b.Take(ctx, "rl:test")
	require.NoError(t, err)
	assert.Equal(t, Decision{Allowed: true, Remaining: 0}, d, "one token refilled after one interval")

	assert.True(t, mr.Exists("rl:test"))
	assert.Equal(t, 10*time.Minute, mr.TTL("rl:test"))
}

func TestTokenBucket_RefillCapsAtCapacity(t *testing.T) {
	_, rdb := newRedis(t)
	b, now := newBucket(t, rdb, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := b.Take(ctx, "rl:idle")
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}

	*now = now.Add(time.Hour)
	d, err := b.Take(ctx, "rl:idle")
	require.NoError(t, err)
	assert.Equal(t, Decision{Allowed: true, Remaining: 2}, d)
}

func TestTokenBucket_Middleware(t *testing.T) {
	_, rdb := newRedis(t)
	b, _ := newBucket(t, rdb, 2)

	e := echo.New()
	e.POST("/tasks", okHandler, b.Middleware())

	var codes []int
	for i := 0; i < 4; i++ {
		codes = append(codes, serve(e, http.MethodPost, `{"text":"x"}`).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)

	rec := serve(e, http.MethodPost, `{"text":"x"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	var body struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retry_after"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "too_many_requests", body.Error)
	assert.Equal(t, 1, body.RetryAfter)
}

func TestTokenBucket_SeparateClients(t *testing.T) {
	_, rdb := newRedis(t)
	b, _ := newBucket(t, rdb, 1)

	e := echo.New()
	e.POST("/tasks", okHandler, b.Middleware())

	post := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/tasks", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, post("198.51.100.1"))
	assert.Equal(t, http.StatusOK, post("198.51.100.2"), "each client has its own bucket")
}

func TestTokenBucket_RedisDownFailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	b, _ := newBucket(t, rdb, 1)
	mr.Close()

	c, rec := newContext(http.MethodPost, "/tasks")
	require.NoError(t, b.Middleware()(okHandler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Retry-After"))
}
