package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/taskboard/internal/config"
)

// takeScript refills the bucket for the whole intervals elapsed since the
// last refill, then spends one token if there is one.  It returns
// {allowed, tokens left, ms until the next token}.
var takeScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local stamp = tonumber(redis.call('HGET', KEYS[1], 'stamp'))
if tokens == nil or stamp == nil then
	tokens = capacity
	stamp = now
end

local steps = math.floor(math.max(0, now - stamp) / interval)
if steps > 0 then
	tokens = math.min(capacity, tokens + steps * refill)
	stamp = stamp + steps * interval
end

local allowed = 0
local wait = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	wait = math.max(0, interval - (now - stamp))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'stamp', stamp)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[5]))
return {allowed, tokens, wait}
`)

// Decision is the outcome of taking one token.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// TokenBucket throttles task creation per client.  Buckets live in Redis so
// every request goroutine spends from the same budget.
type TokenBucket struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
	log *zap.Logger
	now func() time.Time
}

// NewTokenBucket returns nil when limiting is disabled or there is no Redis
// client; a nil bucket's Middleware lets every request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log *zap.Logger) *TokenBucket {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TokenBucket{cfg: cfg, rdb: rdb, log: log, now: time.Now}
}

// Take spends one token from the bucket stored under key.
func (b *TokenBucket) Take(ctx context.Context, key string) (Decision, error) {
	res, err := takeScript.Run(ctx, b.rdb, []string{key},
		b.now().UnixMilli(),
		b.cfg.Capacity,
		b.cfg.RefillTokens,
		b.cfg.RefillInterval.Milliseconds(),
		int64(b.cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return Decision{}, err
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script result %v", res)
	}
	return Decision{
		Allowed:    res[0] == 1,
		Remaining:  res[1],
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}

// Middleware answers 429 with Retry-After once a client's bucket is empty.
// Redis failures let the request through.
func (b *TokenBucket) Middleware() echo.MiddlewareFunc {
	if b == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := b.key(c)
			d, err := b.Take(c.Request().Context(), key)
			if err != nil {
				b.log.Warn("ratelimit: redis error, allowing request", zap.String("key", key), zap.Error(err))
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(b.cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
			if d.Allowed {
				return next(c)
			}

			secs := int(math.Ceil(d.RetryAfter.Seconds()))
			h.Set("Retry-After", strconv.Itoa(secs))
			if b.cfg.Debug {
				b.log.Info("ratelimit: blocked", zap.String("key", key), zap.Duration("retry_after", d.RetryAfter))
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "too_many_requests",
				"message":     "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

// key builds the bucket name.  ip shares one bucket per client across every
// limited route, route shares one bucket per route across all clients.
func (b *TokenBucket) key(c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	switch strings.ToLower(b.cfg.KeyStrategy) {
	case "ip":
		return b.cfg.Prefix + ":ip:" + ip
	case "route":
		return b.cfg.Prefix + ":route:" + route
	default: // "ip_route"
		return b.cfg.Prefix + ":ip:" + ip + ":route:" + route
	}
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
