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

	"restaurant-backend/dishes-service/handlers"
	"restaurant-backend/dishes-service/services"
	_ "restaurant-backend/docs"
	"restaurant-backend/shared/clients"
	"restaurant-backend/shared/config"
	"restaurant-backend/shared/database"
	"restaurant-backend/shared/database/models/menu"
	"restaurant-backend/shared/database/models/order"
	"restaurant-backend/shared/database/repositories"
	"restaurant-backend/shared/logger"
	utils "restaurant-backend/shared/utils/auth"
	"restaurant-backend/shared/utils/permission"
)

func main() {
	cfg := config.LoadConfig()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, "dishes")
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
	gate := permission.NewGate(codec, repositories.NewUserRepository(db), permission.DefaultPolicy(), log)

	translator := services.NewTranslationService(clients.NewTranslationClient(cfg.DeepLAPIURL, cfg.DeepLAuthKey), log)
	if cfg.DeepLAuthKey == "" {
		log.Warn().Msg("DEEPL_AUTH_KEY is not set, translated requests will fail")
	}

	desks := repositories.NewGormStore[menu.Desk](db)
	dishes := repositories.NewGormStore[menu.Dish](db, "Ingredients")

	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestID(), logger.GinLogger(log))

	api := router.Group("/api")
	{
		deskRoutes := handlers.NewResourceHandler[menu.Desk]("desk", desks, log).Register(api, gate)
		deskRoutes.GET("/by-number/:number", handlers.DeskByNumber(desks, log))

		handlers.NewResourceHandler[menu.Allergen]("allergens",
			repositories.NewGormStore[menu.Allergen](db), log).Register(api, gate)
		handlers.NewResourceHandler[menu.Ingredient]("ingredient",
			repositories.NewGormStore[menu.Ingredient](db, "Allergens"), log).Register(api, gate)
		handlers.NewResourceHandler[menu.Category]("category",
			repositories.NewGormStore[menu.Category](db), log,
			handlers.WithTranslation[menu.Category](translator, handlers.CategoryFields, nil)).Register(api, gate)
		handlers.NewResourceHandler[menu.Garnish]("garnish",
			repositories.NewGormStore[menu.Garnish](db), log,
			handlers.WithTranslation[menu.Garnish](translator, handlers.GarnishFields, handlers.GarnishFields)).Register(api, gate)

		dishRoutes := handlers.NewResourceHandler[menu.Dish]("dish", dishes, log,
			handlers.WithTranslation[menu.Dish](translator, handlers.DishListFields, handlers.DishRetrieveFields)).Register(api, gate)
		dishRoutes.POST("/:id/ar-model", arModelUpload(ctx, cfg, dishes, log))

		handlers.NewResourceHandler[order.Order]("order",
			repositories.NewGormStore[order.Order](db), log,
			handlers.WithPartialUpdate[order.Order]()).Register(api, gate)
		handlers.NewResourceHandler[order.OrderDish]("orderdish",
			repositories.NewGormStore[order.OrderDish](db), log,
			handlers.WithPartialUpdate[order.OrderDish]()).Register(api, gate)
		handlers.NewResourceHandler[order.Invoice]("invoice",
			repositories.NewGormStore[order.Invoice](db), log,
			handlers.WithPartialUpdate[order.Invoice]()).Register(api, gate)
		handlers.NewResourceHandler[order.InvoiceDish]("invoicedish",
			repositories.NewGormStore[order.InvoiceDish](db), log,
			handlers.WithPartialUpdate[order.InvoiceDish]()).Register(api, gate)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "dishes",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := config.PortOf(cfg.DishesServiceURL, "8002")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", port).Msg("dishes service starting")
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
	log.Info().Msg("dishes service stopped")
}

// arModelUpload connects to MinIO. Without storage the route answers 503 and the rest of the API keeps working.
func arModelUpload(ctx context.Context, cfg *config.Config, dishes repositories.Store[menu.Dish], log zerolog.Logger) gin.HandlerFunc {
	storage, err := services.NewMinIOService(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("MinIO unavailable, AR model uploads disabled")
		return func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage service unavailable"})
		}
	}

	arModels := services.NewARModelService(dishes, storage, cfg.MaxUploadSize, log)
	return handlers.NewARModelHandler(arModels, log).Upload
}
