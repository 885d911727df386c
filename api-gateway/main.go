package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"restaurant-backend/api-gateway/routes"
	_ "restaurant-backend/docs"
	"restaurant-backend/shared/config"
	"restaurant-backend/shared/logger"
	"restaurant-backend/shared/utils/ratelimit"
)

// dishesResources are the /api/<name> collections served by the dishes service.
var dishesResources = []string{
	"desk", "allergens", "ingredient", "category", "dish", "garnish",
	"order", "orderdish", "invoice", "invoicedish",
}

func main() {
	cfg := config.LoadConfig()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, "gateway")
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	proxy, err := routes.NewProxy(routes.Services{
		"auth":   cfg.AuthServiceURL,
		"dishes": cfg.DishesServiceURL,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid service configuration")
	}

	// Initialize global rate limiter
	rateLimiter := ratelimit.NewLimiter(ctx, 5*time.Minute)
	globalRateConfig := ratelimit.Config{
		MaxRequests:   cfg.RateLimitMaxRequests,
		TimeWindow:    time.Duration(cfg.RateLimitTimeWindowSeconds) * time.Second,
		BlockDuration: time.Duration(cfg.RateLimitBlockDurationMinutes) * time.Minute,
	}

	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestID(), logger.GinLogger(log))

	corsConfig := cors.DefaultConfig()
	if cfg.CORSAllowedOrigin == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{cfg.CORSAllowedOrigin}
	}
	corsConfig.AddAllowHeaders("Authorization", logger.RequestIDHeader)
	corsConfig.AddExposeHeaders(logger.RequestIDHeader)
	router.Use(cors.New(corsConfig))

	router.Use(rateLimiter.Middleware("global", globalRateConfig, "Too many requests. Please try again later."))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "gateway"})
	})

	// Auth service: sessions and user management
	router.Any("/auth/*path", proxy.ProxyToService("auth"))
	router.Any("/api/user", proxy.ProxyToService("auth"))
	router.Any("/api/user/*path", proxy.ProxyToService("auth"))

	// Dishes service: menu, desks, orders and invoices
	for _, resource := range dishesResources {
		router.Any("/api/"+resource, proxy.ProxyToService("dishes"))
		router.Any("/api/"+resource+"/*path", proxy.ProxyToService("dishes"))
	}

	// Swagger documentation UI, development only
	router.GET("/swagger/*any", func(c *gin.Context) {
		if gin.Mode() == gin.DebugMode {
			ginSwagger.WrapHandler(swaggerFiles.Handler)(c)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Swagger documentation not available in production"})
	})

	port := config.PortOf(cfg.APIGatewayURL, "8000")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", port).Msg("API gateway starting")
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
	log.Info().Msg("API gateway stopped")
}
