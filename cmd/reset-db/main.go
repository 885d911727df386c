package main

import (
	flag "github.com/spf13/pflag"

	"restaurant-backend/shared/config"
	"restaurant-backend/shared/database"
	"restaurant-backend/shared/logger"
)

func main() {
	cfg := config.LoadConfig()

	force := flag.BoolP("yes", "y", false, "drop the tables without asking")
	flag.Parse()

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, "reset-db")
	if !*force {
		log.Fatal().Str("database", cfg.DBName).Msg("refusing to drop tables without --yes")
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer database.Close(db)

	if err := database.DropAll(db, log); err != nil {
		log.Fatal().Err(err).Msg("database reset failed")
	}
	log.Info().Msg("database reset completed, run the seed command to recreate tables")
}
