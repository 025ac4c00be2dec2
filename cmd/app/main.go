package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"examvault-membership/internal/config"
	"examvault-membership/internal/infra/api"
	pg "examvault-membership/internal/infra/db/postgres"
	"examvault-membership/internal/infra/logging"
	"examvault-membership/internal/infra/metrics"
	red "examvault-membership/internal/infra/redis"
	"examvault-membership/internal/infra/sched"
	"examvault-membership/internal/infra/web"
	"examvault-membership/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, insecure cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, int32(cfg.Database.PoolSize))
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis (profile cache; optional) ----
	var redisClient red.RedisClient
	if cfg.Redis.URL != "" {
		redisClient, err = red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
	}

	// ---- Repositories ----
	profileRepo := pg.NewProfileRepo(pool)
	if redisClient != nil {
		profileRepo = pg.NewProfileRepoCacheDecorator(profileRepo, redisClient, cfg.Redis.TTL)
	}
	codeRepo := pg.NewInvitationCodeRepo(pool)
	orderRepo := pg.NewOrderRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Use cases ----
	clock := usecase.Clock(time.Now)
	entitlementUC := usecase.NewEntitlementUseCase(profileRepo, clock, logger)
	redemptionUC := usecase.NewRedemptionUseCase(codeRepo, orderRepo, profileRepo, tm, clock, logger)
	orderUC := usecase.NewOrderUseCase(orderRepo, profileRepo, tm, cfg.Pricing, clock, logger)
	codeAdminUC := usecase.NewCodeAdminUseCase(codeRepo, cfg.Codes.Length, logger)

	// ---- Member API ----
	memberSrv := api.NewServer(entitlementUC, redemptionUC, orderUC, logger)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.MemberAPI.Port)
		if err := memberSrv.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("member API server stopped")
		}
	}()

	// ---- Operator console ----
	auth := web.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, cfg.Admin.SessionTTL)
	adminSrv := web.NewServer(codeAdminUC, orderUC, cfg.Admin.APIKey, auth, logger)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Admin.Port)
		if err := adminSrv.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("operator console server stopped")
		}
	}()

	// ---- Pending-order sweeper ----
	sweeper := sched.NewOrderSweeper(cfg.Sweeper.Interval, cfg.Sweeper.PendingMaxAge, orderUC, logger)
	go func() { _ = sweeper.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
}
