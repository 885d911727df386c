package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"restaurant-backend/shared/config"
	"restaurant-backend/shared/database"
	"restaurant-backend/shared/database/repositories"
	"restaurant-backend/shared/logger"
	utils "restaurant-backend/shared/utils/auth"
)

func main() {
	cfg := config.LoadConfig()

	username := flag.StringP("username", "u", cfg.SuperAdminUsername, "super admin username")
	email := flag.StringP("email", "e", cfg.SuperAdminEmail, "super admin email")
	password := flag.StringP("password", "p", cfg.SuperAdminPassword, "super admin password (random when empty)")
	flag.Parse()

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, "seed")
	log.Info().Msg("starting database seeding")

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer database.Close(db)

	if err := database.Migrate(db, log); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	generated := false
	if *password == "" {
		*password, err = utils.GenerateRandomToken(12)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to generate password")
		}
		generated = true
	}

	created, err := database.SeedSuperAdmin(context.Background(),
		repositories.NewUserRepository(db), utils.NewBcryptHasher(bcrypt.DefaultCost),
		database.SuperAdmin{Username: *username, Email: *email, Password: *password}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create super admin")
	}

	if created && generated {
		fmt.Fprintf(os.Stdout, "super admin %q password: %s\n", *username, *password)
	}
	log.Info().Msg("database seeding completed")
}
