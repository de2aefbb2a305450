package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/HysterChat/pinco-clone/internal/adapters/history"
	"github.com/HysterChat/pinco-clone/internal/adapters/httpapi"
	"github.com/HysterChat/pinco-clone/internal/adapters/llm"
	"github.com/HysterChat/pinco-clone/internal/adapters/razorpay"
	"github.com/HysterChat/pinco-clone/internal/adapters/repo"
	"github.com/HysterChat/pinco-clone/internal/domain"
	"github.com/HysterChat/pinco-clone/internal/infra/cache"
	"github.com/HysterChat/pinco-clone/internal/infra/config"
	"github.com/HysterChat/pinco-clone/internal/infra/db"
	httpinfra "github.com/HysterChat/pinco-clone/internal/infra/http"
	applog "github.com/HysterChat/pinco-clone/internal/infra/log"
	"github.com/HysterChat/pinco-clone/internal/infra/metrics"
	"github.com/HysterChat/pinco-clone/internal/infra/openai"
	accountuc "github.com/HysterChat/pinco-clone/internal/usecase/account"
	billinguc "github.com/HysterChat/pinco-clone/internal/usecase/billing"
	contentuc "github.com/HysterChat/pinco-clone/internal/usecase/content"
	feedbackuc "github.com/HysterChat/pinco-clone/internal/usecase/feedback"
	interviewuc "github.com/HysterChat/pinco-clone/internal/usecase/interview"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: нет подключения к БД")
	}
	defer pool.Close()

	store := repo.NewPostgres(pool)
	if cfg.PGMigrate {
		if err := store.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("api: миграция схемы не удалась")
		}
	}

	var (
		historyStore domain.ContentHistoryStore = history.NewMemoryStore()
		onceCache    domain.Cache               = cache.NewMemory()
	)
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: нет подключения к Redis")
		}
		defer func() { _ = client.Close() }()
		historyStore = history.NewRedisStore(client, "pinco:history")
		onceCache = cache.NewRedis(client)
	} else {
		logger.Warn().Msg("api: REDIS_ADDR не задан, история контента хранится в памяти")
	}

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: провайдер модели не настроен")
	}

	gateway := razorpay.NewClient(razorpay.Config{
		BaseURL:   cfg.Razorpay.BaseURL,
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
		Timeout:   cfg.Razorpay.Timeout,
	})

	api := httpapi.NewServer(
		httpapi.WithLogger(applog.Component(logger, "api")),
		httpapi.WithAuth([]byte(cfg.Auth.JWTSecret), store),
		httpapi.WithRateLimiter(httpinfra.NewUserRateLimiter(cfg.Limits.GenerationPerMinute, cfg.Limits.GenerationBurst)),
		httpapi.WithAccounts(accountuc.NewService(store, store)),
		httpapi.WithContent(contentuc.NewService(gen, historyStore, applog.Component(logger, "content"))),
		httpapi.WithFeedback(feedbackuc.NewService(gen, store, applog.Component(logger, "feedback"))),
		httpapi.WithInterviews(interviewuc.NewService(gen, store, store, applog.Component(logger, "interview"))),
		httpapi.WithBilling(billinguc.NewService(store, store, store, store, gateway, onceCache, applog.Component(logger, "billing"))),
	)

	srv := httpinfra.NewServer(applog.Component(logger, "http"), cfg.RequestTimeout)
	srv.Router.Mount("/api", api.Router())

	metrics.StartServer(ctx, applog.Component(logger, "metrics"), cfg.MetricsAddr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(":" + strconv.Itoa(cfg.Port))
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("api: остановка")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("api: сервер остановлен с ошибкой")
	}
}

func newGenerator(ctx context.Context, cfg config.AppConfig) (domain.Generator, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		client, err := llm.NewGeminiClient(ctx, cfg.LLM.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		return llm.NewGemini(client.Models, cfg.LLM.GeminiModel, cfg.LLM.Timeout, cfg.LLM.Temperature), nil
	case "openai":
		if cfg.LLM.OpenAIAPIKey == "" {
			return nil, openai.ErrEmptyAPIKey
		}
		client := openai.NewClient(cfg.LLM.OpenAIAPIKey, cfg.LLM.OpenAIBaseURL, cfg.LLM.Timeout)
		return llm.NewOpenAI(client, cfg.LLM.OpenAIModel, cfg.LLM.Timeout, cfg.LLM.Temperature), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLM.Provider)
	}
}
