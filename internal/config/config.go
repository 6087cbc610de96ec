package config // package config loads application configuration from environment variables

import (
    "errors"
    "fmt"
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings"
    "time"

    "github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
    Env            string        // application environment (e.g. "dev", "prod")
    Port           string        // HTTP port to listen on
    LogLevel       string        // zap level: debug, info, warn, error
    DBDriver       string        // "mysql" or "sqlite"
    DBUser         string        // database username
    DBPass         string        // database password (optional)
    DBHost         string        // database host address
    DBPort         string        // database port number
    DBName         string        // database name
    DBPath         string        // sqlite database file
    JWTSecret      string        // secret used to sign JWTs
    AccessTTLMin   int           // access token time‑to‑live in minutes
    RefreshTTLDays int           // refresh token time‑to‑live in days
    BcryptCost     int           // bcrypt cost for password hashing
    CORSOrigins    []string      // allowed CORS origins
    SeedData       bool          // populate demo catalogue on an empty database
    AdminEmail     string        // seeded administrator login
    AdminPassword  string        // seeded administrator password
    AMQPURL        string        // RabbitMQ URL; empty disables events
    BookingLogPath string        // audit log written by the booking event consumer
    RequestTimeout time.Duration // per-request context deadline
    TokenPurge     time.Duration // how often expired refresh tokens are deleted; 0 disables
}

// Load reads an optional .env file and then the environment.  Missing
// required variables and malformed numbers are reported together.
func Load() (Config, error) {
    _ = godotenv.Load() // .env is optional; real env vars win

    var errs []error
    must := func(key string) string {
        v, ok := os.LookupEnv(key)
        if !ok || strings.TrimSpace(v) == "" {
            errs = append(errs, fmt.Errorf("missing required env var: %s", key))
        }
        return v
    }
    mustInt := func(key string, def int) int {
        v := os.Getenv(key)
        if v == "" {
            return def
        }
        n, err := strconv.Atoi(v)
        if err != nil {
            errs = append(errs, fmt.Errorf("invalid int for %s: %q", key, v))
        }
        return n
    }

    cfg := Config{
        Env:            envStr("APP_ENV", "dev"),
        Port:           envStr("APP_PORT", "8000"),
        LogLevel:       envStr("LOG_LEVEL", "info"),
        DBDriver:       strings.ToLower(envStr("DB_DRIVER", "mysql")),
        DBUser:         os.Getenv("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"),
        DBHost:         envStr("DB_HOST", "127.0.0.1"),
        DBPort:         envStr("DB_PORT", "3306"),
        DBName:         os.Getenv("DB_NAME"),
        DBPath:         envStr("DB_PATH", "cinema.db"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN", 60),
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS", 7),
        BcryptCost:     mustInt("BCRYPT_COST", 10),
        CORSOrigins:    splitList(envStr("CORS_ORIGINS", "*")),
        SeedData:       envBool("SEED_DATA", false),
        AdminEmail:     envStr("ADMIN_EMAIL", "admin@example.com"),
        AdminPassword:  envStr("ADMIN_PASSWORD", "admin123"),
        AMQPURL:        firstNonEmpty(os.Getenv("AMQP_URL"), os.Getenv("RABBITMQ_URL")),
        BookingLogPath: envStr("BOOKING_LOG_PATH", "logs/booking.log"),
        RequestTimeout: envDur("REQUEST_TIMEOUT", 10*time.Second),
        TokenPurge:     envDur("TOKEN_PURGE_INTERVAL", time.Hour),
    }

    switch cfg.DBDriver {
    case "mysql":
        must("DB_USER")
        must("DB_NAME")
    case "sqlite":
    default:
        errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver))
    }
    if cfg.AccessTTLMin <= 0 {
        errs = append(errs, errors.New("ACCESS_TOKEN_TTL_MIN must be positive"))
    }
    if cfg.RefreshTTLDays <= 0 {
        errs = append(errs, errors.New("REFRESH_TOKEN_TTL_DAYS must be positive"))
    }
    if err := errors.Join(errs...); err != nil {
        return Config{}, err
    }
    return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
    return c.Env == "prod" || c.Env == "production"
}

func splitList(s string) []string {
    var out []string
    for _, p := range strings.Split(s, ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}

func firstNonEmpty(vals ...string) string {
    for _, v := range vals {
        if v != "" {
            return v
        }
    }
    return ""
}
