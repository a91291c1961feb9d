package config

// Redis backs the optional rate limiter and the GET /tasks response cache.
// If the server cannot be reached at startup NewRedisClient returns nil and
// both middlewares degrade to pass-through.

import (
	"context"
	"crypto/tls"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes how to reach Redis.  Enabled defaults to false so a
// plain process needs no external services.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TLS      bool   `yaml:"tls"`
	// TLSInsecure skips server certificate verification.  Only meant for
	// self-signed development servers; it has no effect unless TLS is set.
	TLSInsecure bool `yaml:"tls_insecure"`
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{Addr: "localhost:6379"}
}

// applyRedisEnv reads:
//   REDIS_ENABLED – turn Redis-backed middleware on
//   REDIS_ADDR – host:port shorthand
//   REDIS_HOST and REDIS_PORT – take precedence over REDIS_ADDR when both are set
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number
//   REDIS_TLS – enable TLS (certificates are verified)
//   REDIS_TLS_INSECURE – skip certificate verification when TLS is on
func applyRedisEnv(r *RedisConfig) {
	r.Enabled = envBool("REDIS_ENABLED", r.Enabled)
	r.Addr = envStr("REDIS_ADDR", r.Addr)
	if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
		r.Addr = host + ":" + port
	}
	r.Password = envStr("REDIS_PASSWORD", r.Password)
	r.DB = envInt("REDIS_DB", r.DB)
	r.TLS = envBool("REDIS_TLS", r.TLS)
	r.TLSInsecure = envBool("REDIS_TLS_INSECURE", r.TLSInsecure)
}

// NewRedisClient instantiates a Redis client and pings it.  The returned
// client is nil when Redis is disabled or a connection cannot be established.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	if !cfg.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: cfg.tlsConfig(),
	})
	// Ping the server with a short timeout.  Return nil on failure.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}

// tlsConfig returns nil for plain TCP.  Certificate verification stays on
// unless TLSInsecure is set explicitly.
func (r RedisConfig) tlsConfig() *tls.Config {
	if !r.TLS {
		return nil
	}
	return &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: r.TLSInsecure,
	}
}

// String hides the password when the config is logged.
func (r RedisConfig) String() string {
	return "redis://" + r.Addr + "/" + strconv.Itoa(r.DB)
}
