package config

import (
    "strings"
    "time"
)

// CacheConfig controls the response cache middleware.  The cache is off
// when Enabled is false or there is no Redis client.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool // upper-case HTTP methods that may be served from cache
    TTL          time.Duration
    KeyStrategy  string   // route, route_query, method_route or method_route_query
    Prefix       string   // Redis key namespace
    MaxBodyBytes int      // larger responses are passed through uncached
    SkipSuffixes []string // route patterns that must stay live, e.g. a show's seat map
}

// LoadCacheConfig reads CACHE_* variables.  A non-positive TTL falls back
// to 30s.
func LoadCacheConfig() CacheConfig {
    cfg := CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        KeyStrategy:  strings.ToLower(envStr("CACHE_KEY_STRATEGY", "route_query")),
        Prefix:       envStr("CACHE_PREFIX", "cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
        SkipSuffixes: splitList(envStr("CACHE_SKIP_SUFFIXES", "/seats,/bookings")),
    }
    if cfg.TTL <= 0 {
        cfg.TTL = 30 * time.Second
    }
    return cfg
}

// Caches reports whether a request with this method and route pattern may
// be answered from cache.
func (c CacheConfig) Caches(method, route string) bool {
    if !c.Methods[strings.ToUpper(method)] {
        return false
    }
    for _, suffix := range c.SkipSuffixes {
        if strings.HasSuffix(route, suffix) {
            return false
        }
    }
    return true
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range splitList(strings.ToUpper(s)) {
        m[p] = true
    }
    return m
}
