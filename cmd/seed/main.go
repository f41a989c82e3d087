package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/erp/erpcore/internal/application/crud"
	"github.com/erp/erpcore/internal/application/seed"
	"github.com/erp/erpcore/internal/domain/schema"
	"github.com/erp/erpcore/internal/infrastructure/config"
	"github.com/erp/erpcore/internal/infrastructure/logger"
	"github.com/erp/erpcore/internal/infrastructure/persistence"
)

func main() {
	var (
		randomSeed uint64
		logLevel   string
	)
	flag.Uint64Var(&randomSeed, "seed", 42, "Random seed for generated quantities and amounts")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
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

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	ctx := logger.WithContext(context.Background(), log)
	registry := schema.Default()
	if err := db.AutoMigrate(ctx, registry); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}

	engine := crud.NewEngine(registry, persistence.NewGormEntityStore(db))
	if _, err := seed.New(engine, seed.WithSeed(randomSeed)).Run(ctx); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
}
