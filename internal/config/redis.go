package config

import (
    "context"
    "crypto/tls"
    "net"
    "time"

    "github.com/redis/go-redis/v9"
)

// loadRedisOptions builds client options from REDIS_ADDR, or REDIS_HOST and
// REDIS_PORT together, plus REDIS_PASSWORD, REDIS_DB and REDIS_TLS.
// REDIS_TLS_INSECURE skips certificate checks for self-signed test servers.
func loadRedisOptions() *redis.Options {
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
        addr = net.JoinHostPort(host, port)
    }
    opts := &redis.Options{
        Addr:     addr,
        Password: envStr("REDIS_PASSWORD", ""),
        DB:       envInt("REDIS_DB", 0),
    }
    if envBool("REDIS_TLS", false) {
        opts.TLSConfig = &tls.Config{
            MinVersion:         tls.VersionTLS12,
            InsecureSkipVerify: envBool("REDIS_TLS_INSECURE", false),
        }
    }
    return opts
}

// NewRedisClient connects to Redis and pings it.  It returns nil when
// REDIS_DISABLED is set or the server does not answer within two seconds;
// rate limiting and caching then pass every request through.
func NewRedisClient() *redis.Client {
    if envBool("REDIS_DISABLED", false) {
        return nil
    }
    client := redis.NewClient(loadRedisOptions())
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
