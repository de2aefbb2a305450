package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/HysterChat/pinco-clone/internal/adapters/razorpay"
	"github.com/HysterChat/pinco-clone/internal/adapters/repo"
	"github.com/HysterChat/pinco-clone/internal/infra/cache"
	"github.com/HysterChat/pinco-clone/internal/infra/config"
	"github.com/HysterChat/pinco-clone/internal/infra/db"
	applog "github.com/HysterChat/pinco-clone/internal/infra/log"
	"github.com/HysterChat/pinco-clone/internal/infra/metrics"
	billinguc "github.com/HysterChat/pinco-clone/internal/usecase/billing"
)

func main() {
	cfg := config.Load()
	base := applog.NewLogger(cfg.AppEnv)
	logger := applog.Component(base, "scheduler")

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler: нет подключения к БД")
	}
	defer pool.Close()

	store := repo.NewPostgres(pool)
	billing := billinguc.NewService(store, store, store, store,
		razorpay.NewClient(razorpay.Config{KeyID: cfg.Razorpay.KeyID, KeySecret: cfg.Razorpay.KeySecret}),
		cache.NewMemory(), logger)

	metrics.StartServer(ctx, applog.Component(base, "metrics"), cfg.MetricsAddr)

	interval := cfg.Scheduler.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info().Dur("interval", interval).Msg("scheduler: старт")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("scheduler: остановка")
			return
		case <-ticker.C:
			n, err := billing.ExpireSubscriptions(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("scheduler: не удалось обработать истёкшие подписки")
				continue
			}
			logger.Debug().Int64("expired", n).Msg("scheduler: проход завершён")
		}
	}
}
