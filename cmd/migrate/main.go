package main

import (
	"context"
	"log"

	"github.com/hjemly/hjemly/internal/config"
	"github.com/hjemly/hjemly/internal/logger"
	"github.com/hjemly/hjemly/internal/repository/postgres"
	"github.com/hjemly/hjemly/internal/storage"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	l, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	db, err := storage.NewDB(cfg, l)
	if err != nil {
		l.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(context.Background(), db); err != nil {
		l.Fatalf("failed to apply schema: %v", err)
	}

	l.Infow("schema applied", "database", cfg.Postgres.DBName)
}
