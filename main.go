package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/tmarek/blockpress-backend/api"
	"github.com/tmarek/blockpress-backend/database"
	"github.com/tmarek/blockpress-backend/registry"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Info().Msg("Initializing block registry...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn().Msgf("Error loading .env file: %v", err)
	}

	connStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "blockpress"),
		getEnv("DB_PASSWORD", ""),
		getEnv("DB_NAME", "blockpress"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_SSLMODE", "disable"),
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
	})
	if err != nil {
		log.Fatal().Msgf("Error connecting to database: %v", err)
	}

	// Public resolution traffic dwarfs admin writes, so reads can be
	// pointed at a replica when one is configured.
	if replicaHost := os.Getenv("DB_REPLICA_HOST"); replicaHost != "" {
		replicaStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			replicaHost,
			getEnv("DB_USER", "blockpress"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", "blockpress"),
			getEnv("DB_REPLICA_PORT", "5432"),
			getEnv("DB_SSLMODE", "disable"),
		)
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.Open(replicaStr)},
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			log.Fatal().Msgf("Error registering read replica: %v", err)
		}
		log.Info().Str("replica", replicaHost).Msg("Read replica registered")
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		log.Fatal().Msgf("Error testing database connection: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal().Msgf("Error migrating database: %v", err)
	}

	validator := registry.NewSlugValidator(registry.DefaultSlugConfig())
	currentDB := database.New(db, validator)

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(currentDB, validator)
	if err != nil {
		log.Fatal().Msgf("Error initializing server: %v", err)
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Error().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}

// getEnv returns the value of the environment variable key or a fallback value.
func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
