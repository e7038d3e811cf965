package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/interest-protocol/memez-fun/internal/config"
	"github.com/interest-protocol/memez-fun/internal/db"
	internalhttp "github.com/interest-protocol/memez-fun/internal/http"
	"github.com/interest-protocol/memez-fun/internal/logger"
	"github.com/interest-protocol/memez-fun/internal/store"
	"github.com/interest-protocol/memez-fun/internal/sui"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic("config load failed: " + err.Error())
	}
	if err := logger.Initialize(logger.Config{Debug: cfg.Log.Debug, Fields: map[string]string{"service": "api"}}); err != nil {
		panic("logger init failed: " + err.Error())
	}
	defer logger.Sync()
	log := logger.Default()

	if err := cfg.RequireDB(); err != nil {
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

	h := internalhttp.NewHandler(rpc, store.New(pool), log.Named("http"))
	srv := internalhttp.NewServer(h)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("api listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctxShutdown)
	})
	if err := g.Wait(); err != nil {
		log.Error("server error", zap.Error(err))
	}
}
