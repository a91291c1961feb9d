package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig configures the token bucket in front of POST /tasks.
type RateLimitConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Capacity       int           `yaml:"capacity"`
	RefillTokens   int           `yaml:"refill_tokens"`
	RefillInterval time.Duration `yaml:"refill_interval"`
	TTL            time.Duration `yaml:"ttl"`
	KeyStrategy    string        `yaml:"key_strategy"` // ip, route or ip_route
	Prefix         string        `yaml:"prefix"`
	Debug          bool          `yaml:"debug"`
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:        true,
		Capacity:       60,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
}

func applyRateLimitEnv(rl *RateLimitConfig) {
	rl.Enabled = envBool("RATE_LIMIT_ENABLED", rl.Enabled)
	rl.Capacity = envInt("RATE_LIMIT_CAPACITY", rl.Capacity)
	rl.RefillTokens = envInt("RATE_LIMIT_REFILL_TOKENS", rl.RefillTokens)
	rl.RefillInterval = envDur("RATE_LIMIT_REFILL_INTERVAL", rl.RefillInterval)
	rl.TTL = envDur("RATE_LIMIT_TTL", rl.TTL)
	rl.KeyStrategy = envStr("RATE_LIMIT_KEY_STRATEGY", rl.KeyStrategy)
	rl.Prefix = envStr("RATE_LIMIT_PREFIX", rl.Prefix)
	rl.Debug = envBool("RATE_LIMIT_DEBUG", rl.Debug)
	if b := envInt("RATE_LIMIT_BURST", -1); b > 0 {
		rl.Capacity = b
	}
	if every := envDur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
		rl.RefillTokens = 1
		rl.RefillInterval = every
	}
}

// normalize clamps values the token bucket script cannot work with.
func (rl *RateLimitConfig) normalize() {
	if rl.Capacity < 1 {
		rl.Capacity = 1
	}
	if rl.RefillTokens < 1 {
		rl.RefillTokens = 1
	}
	if rl.RefillInterval <= 0 {
		rl.RefillInterval = time.Second
	}
	if minTTL := 5 * rl.RefillInterval; rl.TTL < minTTL {
		rl.TTL = minTTL
	}
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return dur
	}
	return d
}
