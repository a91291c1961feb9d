package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is
// disabled.  Methods lists the HTTP methods whose responses are cached;
// a successful request with any other method invalidates every cached
// entry.  KeyStrategy determines which parts of the request contribute to
// the cache key.
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Methods      []string      `yaml:"methods"`
	TTL          time.Duration `yaml:"ttl"`
	KeyStrategy  string        `yaml:"key_strategy"`
	Prefix       string        `yaml:"prefix"`
	MaxBodyBytes int           `yaml:"max_body_bytes"`
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      true,
		Methods:      []string{"GET"},
		TTL:          30 * time.Second,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1048576,
	}
}

func applyCacheEnv(c *CacheConfig) {
	c.Enabled = envBool("CACHE_ENABLED", c.Enabled)
	if m := envStr("CACHE_METHODS", ""); m != "" {
		c.Methods = parseMethods(m)
	}
	c.TTL = envDur("CACHE_TTL", c.TTL)
	c.KeyStrategy = envStr("CACHE_KEY_STRATEGY", c.KeyStrategy)
	c.Prefix = envStr("CACHE_PREFIX", c.Prefix)
	c.MaxBodyBytes = envInt("CACHE_MAX_BODY_BYTES", c.MaxBodyBytes)
}

// MethodSet returns the cached methods upper-cased, as a lookup set.
func (c CacheConfig) MethodSet() map[string]bool {
	m := make(map[string]bool, len(c.Methods))
	for _, p := range c.Methods {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}

func parseMethods(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
