package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/interest-protocol/memez-fun/internal/config"
	"github.com/interest-protocol/memez-fun/internal/db"
	"github.com/interest-protocol/memez-fun/internal/indexer"
	"github.com/interest-protocol/memez-fun/internal/logger"
	"github.com/interest-protocol/memez-fun/internal/store"
	"github.com/interest-protocol/memez-fun/internal/sui"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic("config load failed: " + err.Error())
	}
	if err := logger.Initialize(logger.Config{Debug: cfg.Log.Debug, Fields: map[string]string{"service": "indexer"}}); err != nil {
		panic("logger init failed: " + err.Error())
	}
	defer logger.Sync()
	log := logger.Default()

	if err := cfg.RequireDB(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}
	if err := cfg.RequirePackage(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer pool.Close()

	rpc, err := sui.NewMultiClient(cfg.Sui.RPCEndpoints, cfg.Sui.FailoverThreshold,
		sui.WithLogger(log.Named("sui")),
		sui.WithRetries(cfg.Sui.Retries),
		sui.WithTimeout(time.Duration(cfg.Sui.TimeoutSeconds)*time.Second),
	)
	if err != nil {
		log.Fatal("sui client failed", zap.Error(err))
	}

	ix := &indexer.Indexer{
		Chain:           rpc,
		Store:           store.New(pool),
		Filter:          cfg.EventFilter(),
		PageSize:        cfg.Indexer.PageSize,
		MaxPagesPerTick: cfg.Indexer.MaxPagesPerTick,
		Interval:        time.Duration(cfg.Indexer.IntervalSeconds) * time.Second,
		Log:             log.Named("indexer"),
	}
	if cfg.Indexer.Subscribe {
		ix.WSEndpoint = cfg.WSEndpoint()
	}

	log.Info("indexer started",
		zap.String("network", string(cfg.Network())),
		zap.Strings("rpc", rpc.Endpoints()),
		zap.String("ws", ix.WSEndpoint),
		zap.String("package", cfg.Memez.PackageID))
	if err := ix.Run(ctx); err != nil {
		log.Error("indexer stopped", zap.Error(err))
	}
}
