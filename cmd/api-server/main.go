package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"animehub/database"
	"animehub/internal/config"
	"animehub/internal/ingestion/anilist"
	"animehub/internal/microservices/http-api/handler"
	"animehub/internal/microservices/http-api/middleware"
	"animehub/internal/microservices/http-api/repository"
	"animehub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const tokenCleanupInterval = time.Hour

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Setup structured logging
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.OpenGorm(ctx, cfg, logger)
	if err != nil {
		logger.Error("database_unavailable", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	rdb := connectRedis(ctx, cfg, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	// Repositories
	membershipRepo := repository.NewMembershipRepository(db)
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Services
	catalogClient := anilist.NewClient(anilist.Options{
		APIURL:     cfg.AniListAPIURL,
		Timeout:    cfg.AniListTimeout,
		RatePerSec: cfg.AniListRatePerSec,
		Burst:      cfg.AniListBurst,
		Logger:     logger,
	})
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg)
	catalogService := service.NewCatalogService(catalogClient, logger)
	membershipService := service.NewMembershipService(membershipRepo, service.ContextIdentity{}, service.MembershipConfig{
		EnforceRatingRange: cfg.EnforceRatingRange,
		Logger:             logger,
	})

	router := newRouter(cfg, logger, db, rdb, authService, catalogService, membershipService)

	go cleanupRefreshTokens(ctx, refreshTokenRepo, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting_http_server", "addr", httpServer.Addr, "env", cfg.GoEnv)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("received_shutdown_signal")
	case err := <-errChan:
		logger.Error("server_error", "error", err.Error())
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	logger.Info("server_stopped_gracefully")
}

func newRouter(
	cfg *config.Config,
	logger *slog.Logger,
	db *gorm.DB,
	rdb *redis.Client,
	authService service.AuthService,
	catalogService service.CatalogService,
	membershipService service.MembershipService,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))

	checks := map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	handler.NewHealthHandler(checks).RegisterRoutes(r)

	var counter middleware.WindowCounter
	if rdb != nil {
		counter = middleware.NewRedisCounter(rdb)
	}
	limiter := middleware.NewRateLimiter(counter, cfg.RateLimitRequests, cfg.RateLimitWindow, logger)

	api := r.Group("/api")
	api.Use(limiter.Handler())

	handler.NewAuthHandler(authService).RegisterRoutes(api.Group("/auth"))
	handler.NewCatalogHandler(catalogService).RegisterRoutes(api)
	handler.NewListHandler(membershipService, catalogService).RegisterRoutes(
		api,
		middleware.AuthMiddleware(authService),
		middleware.OptionalAuth(authService),
	)

	return r
}

// connectRedis returns nil when redis is unreachable; rate limiting then stays off
func connectRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		// bare host:port
		opts = &redis.Options{Addr: cfg.RedisAddr()}
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis_unavailable_rate_limit_disabled", "addr", cfg.RedisAddr(), "error", err)
		rdb.Close()
		return nil
	}

	logger.Info("redis_connected", "addr", cfg.RedisAddr())
	return rdb
}

func cleanupRefreshTokens(ctx context.Context, repo repository.RefreshTokenRepository, logger *slog.Logger) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := repo.DeleteExpired(ctx, now)
			if err != nil {
				logger.Warn("refresh_token_cleanup_failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info("refresh_tokens_cleaned", "removed", removed)
			}
		}
	}
}
