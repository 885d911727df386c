package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/crypto/bcrypt"

	"restaurant-backend/auth-service/handlers"
	"restaurant-backend/auth-service/services"
	_ "restaurant-backend/docs"
	"restaurant-backend/shared/config"
	"restaurant-backend/shared/database"
	"restaurant-backend/shared/database/repositories"
	"restaurant-backend/shared/logger"
	utils "restaurant-backend/shared/utils/auth"
	"restaurant-backend/shared/utils/cache"
	"restaurant-backend/shared/utils/permission"
	"restaurant-backend/shared/utils/ratelimit"
)

const purgeInterval = time.Hour

func main() {
	cfg := config.LoadConfig()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, "auth")
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer database.Close(db)

	if err := database.Migrate(db, log); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	codec, err := utils.NewCodec(utils.CodecConfig{
		Secret:     cfg.JWT.Secret,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
		Leeway:     cfg.JWT.Leeway,
		IssueSkew:  cfg.JWT.IssueSkew,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid JWT configuration")
	}

	hasher := utils.NewBcryptHasher(bcrypt.DefaultCost)
	users := repositories.NewUserRepository(db)
	durable := repositories.NewRevocationLedger(db)

	var ledger repositories.Ledger = durable
	if cfg.RedisEnabled {
		client, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, revocation checks go to the database")
		} else {
			defer client.Close()
			ledger = cache.NewRevocationCache(client, durable, codec.Lifetime(utils.RefreshToken), log)
			log.Info().Str("addr", cfg.RedisAddr()).Msg("revocation cache enabled")
		}
	}

	go purgeExpired(ctx, durable, codec.Leeway(), log)

	sessions := services.NewSessionService(codec, hasher, users, ledger, log)
	authHandler := handlers.NewAuthHandler(sessions, log)
	userHandler := handlers.NewUserHandler(services.NewUserService(users, hasher, log), log)
	gate := permission.NewGate(codec, users, permission.DefaultPolicy(), log)

	limiter := ratelimit.NewLimiter(ctx, 30*time.Minute)
	generalLimit := ratelimit.Config{
		MaxRequests:   cfg.RateLimitMaxRequests,
		TimeWindow:    time.Duration(cfg.RateLimitTimeWindowSeconds) * time.Second,
		BlockDuration: time.Duration(cfg.RateLimitBlockDurationMinutes) * time.Minute,
	}
	loginLimit := ratelimit.Config{
		MaxRequests:   cfg.LoginRateLimitMaxAttempts,
		TimeWindow:    time.Duration(cfg.LoginRateLimitWindowSeconds) * time.Second,
		BlockDuration: time.Duration(cfg.LoginRateLimitBlockMinutes) * time.Minute,
	}
	registerLimit := ratelimit.Config{
		MaxRequests:   cfg.RegisterRateLimitMaxAttempts,
		TimeWindow:    time.Duration(cfg.RegisterRateLimitWindowHours) * time.Hour,
		BlockDuration: time.Duration(cfg.RegisterRateLimitBlockHours) * time.Hour,
	}

	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestID(), logger.GinLogger(log))

	// Auth endpoints
	router.POST("/auth/login",
		limiter.Middleware("login", loginLimit, "Too many login attempts. Please try again later."),
		authHandler.Login)
	router.POST("/auth/register",
		limiter.Middleware("register", registerLimit, "Too many registration attempts. Please try again later."),
		authHandler.Register)
	router.POST("/auth/token/refresh",
		limiter.Middleware("refresh", generalLimit, "Too many requests. Please try again later."),
		authHandler.Refresh)
	router.POST("/auth/logout", authHandler.Logout)

	// User management
	userRoutes := router.Group("/api/user", gate.Resource("user"))
	{
		userRoutes.GET("", userHandler.ListUsers)
		userRoutes.POST("", userHandler.CreateUser)
		userRoutes.GET("/:id", userHandler.GetUser)
		userRoutes.PUT("/:id", userHandler.UpdateUser)
		userRoutes.DELETE("/:id", userHandler.DeleteUser)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "auth",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := config.PortOf(cfg.AuthServiceURL, "8001")
	serve(ctx, router, port, log)
}

// purgeExpired drops revocation records whose tokens have expired on their own, leeway included.
func purgeExpired(ctx context.Context, ledger *repositories.RevocationLedger, leeway time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := ledger.PurgeExpired(ctx, now, leeway)
			if err != nil {
				log.Warn().Err(err).Msg("failed to purge expired revocations")
				continue
			}
			if n > 0 {
				log.Info().Int64("purged", n).Msg("expired revocations purged")
			}
		}
	}
}

func serve(ctx context.Context, handler http.Handler, port string, log zerolog.Logger) {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", port).Msg("auth service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("auth service stopped")
}
