package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/bookloop/backend/internal/infrastructure/config"
	ledgerinfra "github.com/bookloop/backend/internal/infrastructure/ledger"
	"github.com/bookloop/backend/internal/infrastructure/logger"
	"github.com/bookloop/backend/internal/infrastructure/persistence"
)

// Applies the lending and ledger schema to the configured database.
// Safe to run repeatedly; AutoMigrate only adds what is missing.
func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database, nil)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	if err := persistence.AutoMigrate(db.DB); err != nil {
		log.Fatal("Failed to migrate lending schema", zap.Error(err))
	}
	if err := ledgerinfra.Migrate(db.DB); err != nil {
		log.Fatal("Failed to migrate ledger schema", zap.Error(err))
	}

	log.Info("Migration complete",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)
}
