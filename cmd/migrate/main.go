package main

import (
	"context"
	"log"
	"os"
	"time"

	"mission-desk/internal/config"
	"mission-desk/internal/database"
	"mission-desk/internal/logger"

	"go.uber.org/zap"
)

const defaultMigrationsDir = "database/migrations"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	dir := defaultMigrationsDir
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := database.RunMigrations(ctx, db.DB, dir); err != nil {
		l.Fatal("Failed to run migrations", zap.String("dir", dir), zap.Error(err))
	}
	l.Info("Migrations applied", zap.String("dir", dir))
}
