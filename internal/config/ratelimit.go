package config

import (
    "strings"
    "time"
)

// Limiter scopes.  Each scope has its own bucket prefix and defaults.
const (
    ScopeAuth    = "auth"    // signup, login, refresh; keyed by client IP
    ScopeBooking = "booking" // booking writes; keyed by user
)

type RateLimitConfig struct {
    Scope          string
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
}

// LoadRateLimitConfig reads the shared RATE_LIMIT_* settings and then the
// scope overrides, e.g. RATE_LIMIT_AUTH_CAPACITY or
// RATE_LIMIT_BOOKING_KEY_STRATEGY.
func LoadRateLimitConfig(scope string) RateLimitConfig {
    capacity, every, strategy := 20, time.Second, "user"
    if scope == ScopeAuth {
        capacity, every, strategy = 10, 6*time.Second, "ip_route"
    }
    env := "RATE_LIMIT_" + strings.ToUpper(scope) + "_"

    cfg := RateLimitConfig{
        Scope:          scope,
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt(env+"CAPACITY", envInt("RATE_LIMIT_CAPACITY", capacity)),
        RefillTokens:   envInt(env+"REFILL_TOKENS", envInt("RATE_LIMIT_REFILL_TOKENS", 1)),
        RefillInterval: envDur(env+"REFILL_INTERVAL", envDur("RATE_LIMIT_REFILL_INTERVAL", every)),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr(env+"KEY_STRATEGY", strategy),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl") + ":" + scope,
    }
    if cfg.Capacity < 1 { cfg.Capacity = 1 }
    if cfg.RefillTokens < 1 { cfg.RefillTokens = 1 }
    if cfg.RefillInterval <= 0 { cfg.RefillInterval = time.Second }
    // the bucket must outlive a full refill cycle
    if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL { cfg.TTL = minTTL }
    return cfg
}
