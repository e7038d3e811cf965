package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/interest-protocol/memez-fun/internal/config"
	"github.com/interest-protocol/memez-fun/internal/db"
	"github.com/interest-protocol/memez-fun/internal/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic("config load failed: " + err.Error())
	}
	if err := logger.Initialize(logger.Config{Debug: cfg.Log.Debug, Fields: map[string]string{"service": "migrate"}}); err != nil {
		panic("logger init failed: " + err.Error())
	}
	defer logger.Sync()
	log := logger.Default()

	if err := cfg.RequireDB(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "migrations"
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer pool.Close()

	applied, err := db.Migrate(ctx, pool, dir, log)
	if err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}
	log.Info("migrations complete", zap.Int("applied", len(applied)))
}
