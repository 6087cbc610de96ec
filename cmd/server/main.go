package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"                    // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo's stock middlewares
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/cinema-booking/internal/auth"
	"github.com/iliyamo/cinema-booking/internal/booking"
	"github.com/iliyamo/cinema-booking/internal/config" // Internal config loader
	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/logger"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/router" // Internal router setup
	"github.com/iliyamo/cinema-booking/internal/seed"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(database.Options{
		Driver: cfg.DBDriver,
		User:   cfg.DBUser,
		Pass:   cfg.DBPass,
		Host:   cfg.DBHost,
		Port:   cfg.DBPort,
		Name:   cfg.DBName,
		Path:   cfg.DBPath,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if cfg.SeedData {
		opts := seed.Options{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword, BcryptCost: cfg.BcryptCost}
		if err := seed.Run(ctx, db, opts, log); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	// Redis backs rate limiting and the response cache; both turn into
	// pass-through middlewares when it is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("Redis unavailable; rate limiting and caching disabled")
	} else {
		defer rdb.Close()
	}
	authLimiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(config.ScopeAuth), rdb, log)
	bookingLimiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(config.ScopeBooking), rdb, log)
	cacheCfg := config.LoadCacheConfig()
	cache := middleware.NewRedisCache(cacheCfg, rdb)

	var pub queue.Publisher = queue.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPub := queue.NewAMQPPublisher(cfg.AMQPURL, log)
		defer amqpPub.Close()
		pub = amqpPub
	} else {
		log.Info("AMQP_URL not set; booking events disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	shows := repository.NewShowRepo(db)
	bookings := repository.NewBookingRepo(db)
	gate := auth.NewGate(cfg.JWTSecret, users)
	svc := booking.NewService(db, shows, bookings, pub, log)

	catalog := handler.NewCatalogHandler(
		repository.NewCinemaRepo(db), repository.NewScreenRepo(db), repository.NewMovieRepo(db), shows, bookings)
	userH := handler.NewUserHandler(users)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(middleware.Metrics())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	router.RegisterRoutes(e) // Register application routes
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), userH, gate, authLimiter)
	router.RegisterPublic(e, catalog, cache)
	router.RegisterAdmin(e, catalog, userH, gate, middleware.InvalidateCache(cacheCfg, rdb))
	router.RegisterBooking(e, handler.NewBookingHandler(svc), gate, bookingLimiter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port // Address string with port
		log.Info("Listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("Shutting down")
		return e.Shutdown(shutdownCtx)
	})
	if cfg.TokenPurge > 0 {
		g.Go(func() error {
			purgeTokens(gctx, tokens, cfg.TokenPurge, log)
			return nil
		})
	}
	if cfg.AMQPURL != "" {
		g.Go(func() error {
			return queue.NewAuditConsumer(cfg.AMQPURL, cfg.BookingLogPath, log.Named("booking-consumer")).Run(gctx)
		})
	}
	return g.Wait()
}

// purgeTokens deletes refresh tokens that expired more than a day ago,
// once per interval until ctx is done.
func purgeTokens(ctx context.Context, tokens *repository.TokenRepo, every time.Duration, log *zap.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := tokens.PurgeExpired(ctx, now.Add(-24*time.Hour))
			if err != nil {
				log.Warn("purge refresh tokens", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Debug("purged refresh tokens", zap.Int64("count", n))
			}
		}
	}
}
