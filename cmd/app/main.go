// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendpay-gateway/internal/config"
	devAdapters "vendpay-gateway/internal/infra/adapters/device"
	payAdapters "vendpay-gateway/internal/infra/adapters/payment"
	pg "vendpay-gateway/internal/infra/db/postgres"
	"vendpay-gateway/internal/infra/idgen"
	"vendpay-gateway/internal/infra/logging"
	"vendpay-gateway/internal/infra/metrics"
	red "vendpay-gateway/internal/infra/redis"
	"vendpay-gateway/internal/infra/sched"
	"vendpay-gateway/internal/infra/web"
	"vendpay-gateway/internal/infra/worker"
	"vendpay-gateway/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no sampling)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	// ---- Repositories ----
	txRepo := pg.NewTransactionRepo(pool)
	txManager := pg.NewTxManager(pool)
	channelRepo := pg.NewChannelRepoCacheDecorator(pg.NewChannelRepo(pool), redisClient, cfg.Redis.TTL)

	// ---- Adapters ----
	signer := payAdapters.NewSigner(cfg.PayOS.PlaceholderURL)
	gateway := payAdapters.NewPayOSGateway(cfg.PayOS.APIBase, cfg.PayOS.LinkTTL, signer)
	dispatcher := devAdapters.NewDispatcher(
		cfg.Dispatch.EndpointBase,
		cfg.Dispatch.MaxAttempts,
		devAdapters.FixedBackoff(cfg.Dispatch.RetryDelay),
		logger,
	)

	ids, err := idgen.NewSnowflakeGenerator(cfg.IDGen.Node)
	if err != nil {
		logger.Fatal().Err(err).Msg("id generator")
	}

	// ---- Use cases ----
	billingUC := usecase.NewBillingUseCase(txRepo, channelRepo, gateway, ids, cfg.PayOS.DescPrefix, logger)
	confirmUC := usecase.NewConfirmUseCase(txRepo, channelRepo, txManager, signer, dispatcher, logger)

	// ---- Expiry worker ----
	taskPool := worker.NewPool(cfg.Expiry.Workers, logger)
	taskPool.Start(ctx)
	expiry := sched.NewExpiryWorker(txRepo, taskPool, cfg.Expiry.Interval, cfg.PayOS.LinkTTL, logger)
	go func() { _ = expiry.Run(ctx) }()

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Server.OpsKey, !cfg.Runtime.Dev, cfg.Server.SessionTTL)
	srv := web.NewServer(cfg.Server.Port, billingUC, confirmUC, auth, cfg.Server.OpsKey, ctx, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	taskPool.Stop()
}
