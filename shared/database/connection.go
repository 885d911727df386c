package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"restaurant-backend/shared/config"
	"restaurant-backend/shared/database/models"
	"restaurant-backend/shared/database/models/auth"
	"restaurant-backend/shared/database/models/menu"
	"restaurant-backend/shared/database/models/order"
)

// getLogLevel returns appropriate log level based on environment
func getLogLevel(cfg *config.Config) logger.LogLevel {
	if cfg.DBHost == "localhost" || cfg.DBHost == "127.0.0.1" {
		return logger.Warn
	}
	return logger.Error
}

// Models lists every table owned by the backend, in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&auth.RevokedToken{},
		&menu.Desk{},
		&menu.Allergen{},
		&menu.Ingredient{},
		&menu.Category{},
		&menu.Dish{},
		&menu.Garnish{},
		&order.Order{},
		&order.OrderDish{},
		&order.Invoice{},
		&order.InvoiceDish{},
	}
}

// Open connects to postgres and configures the connection pool.
func Open(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(getLogLevel(cfg)),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Str("host", cfg.DBHost).Str("database", cfg.DBName).Msg("database connection established")
	return db, nil
}

// Migrate creates or updates every table in Models.
func Migrate(db *gorm.DB, log zerolog.Logger) error {
	migrator := db.Migrator()
	created := 0

	for _, model := range Models() {
		if !migrator.HasTable(model) {
			log.Info().Str("model", fmt.Sprintf("%T", model)).Msg("creating table")
			created++
		}

		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	if created > 0 {
		log.Info().Int("tables_created", created).Msg("database migrations completed")
	} else {
		log.Info().Msg("database schema is up to date")
	}
	return nil
}

// joinTables are the many-to-many tables gorm creates next to Models.
var joinTables = []string{"ingredient_allergens", "dish_ingredients"}

// DropAll drops the join tables and every table in Models.
func DropAll(db *gorm.DB, log zerolog.Logger) error {
	migrator := db.Migrator()
	for _, table := range joinTables {
		if err := migrator.DropTable(table); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
		log.Info().Str("table", table).Msg("table dropped")
	}

	all := Models()
	for i := len(all) - 1; i >= 0; i-- {
		if err := migrator.DropTable(all[i]); err != nil {
			return fmt.Errorf("failed to drop %T: %w", all[i], err)
		}
		log.Info().Str("model", fmt.Sprintf("%T", all[i])).Msg("table dropped")
	}
	return nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
