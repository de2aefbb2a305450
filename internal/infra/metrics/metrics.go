package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	UpstreamRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Длительность запросов к внешним системам",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30, 45, 60, 90, 120},
	}, []string{"component", "operation", "target", "status"})

	UpstreamRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Запросы к внешним системам по статусу",
	}, []string{"component", "operation", "target", "status"})

	LLMGenerationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "llm_generation_duration_seconds",
		Help:      "Длительность одного вызова модели",
		Buckets:   prometheus.DefBuckets,
	}, []string{"model"})

	LLMTokensTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_tokens_total",
		Help:      "Расход токенов модели",
	}, []string{"model", "type"})

	ContentItemsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_items_total",
		Help:      "Выданные элементы контента по источнику",
	}, []string{"category", "source"})

	ContentAttempts = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "content_generation_attempts",
		Help:      "Число попыток генерации на запрос",
		Buckets:   []float64{1, 2, 3},
	}, []string{"category"})

	ContentRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_rejected_total",
		Help:      "Отклонённые кандидаты по причине",
	}, []string{"category", "reason"})

	HistoryFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_history_failures_total",
		Help:      "Ошибки чтения и записи истории контента",
	}, []string{"operation"})

	AnalysisFallbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analysis_fallback_total",
		Help:      "Ответы анализа, собранные без модели",
	}, []string{"kind"})

	EntitlementDeniedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entitlement_denied_total",
		Help:      "Отказы в доступе",
	}, []string{"gate"})

	SubscriptionsActivatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "subscriptions_activated_total",
		Help:      "Активированные подписки",
	})
)

const namespace = "pinco"

// MustRegister регистрирует метрики сервиса.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		UpstreamRequestDuration, UpstreamRequestTotal,
		LLMGenerationDuration, LLMTokensTotal,
		ContentItemsTotal, ContentAttempts, ContentRejectedTotal, HistoryFailuresTotal,
		AnalysisFallbackTotal, EntitlementDeniedTotal, SubscriptionsActivatedTotal,
	)
}

// StartServer отдаёт /metrics на addr и гасит сервер вместе с ctx.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics: остановка с ошибкой")
		}
	})
	go func() {
		defer stop()
		logger.Info().Str("addr", addr).Msg("metrics: сервер запущен")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: сервер остановлен")
		}
	}()
}

func labelOr(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

// requestStatus различает истечение таймаута и прочие ошибки.
func requestStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

// ObserveNetworkRequest учитывает сетевой вызов к внешней системе.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	labels := []string{labelOr(component), labelOr(operation), labelOr(target), requestStatus(err)}
	UpstreamRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	UpstreamRequestTotal.WithLabelValues(labels...).Inc()
}

// ObserveLLMGeneration учитывает длительность генерации и расход токенов.
// Если провайдер не прислал total, он считается как сумма.
func ObserveLLMGeneration(model string, duration time.Duration, promptTokens, completionTokens, totalTokens int) {
	model = labelOr(model)
	LLMGenerationDuration.WithLabelValues(model).Observe(duration.Seconds())
	if totalTokens <= 0 {
		totalTokens = promptTokens + completionTokens
	}
	for kind, n := range map[string]int{"prompt": promptTokens, "completion": completionTokens, "total": totalTokens} {
		if n > 0 {
			LLMTokensTotal.WithLabelValues(model, kind).Add(float64(n))
		}
	}
}

// ObserveContent записывает результат одного запроса контента.
func ObserveContent(category string, attempts, fresh, fallback int) {
	ContentAttempts.WithLabelValues(category).Observe(float64(attempts))
	if fresh > 0 {
		ContentItemsTotal.WithLabelValues(category, "fresh").Add(float64(fresh))
	}
	if fallback > 0 {
		ContentItemsTotal.WithLabelValues(category, "fallback").Add(float64(fallback))
	}
}

// IncRejected увеличивает счётчик отклонённых кандидатов.
func IncRejected(category, reason string) {
	ContentRejectedTotal.WithLabelValues(category, reason).Inc()
}

// IncHistoryFailure увеличивает счётчик ошибок истории.
func IncHistoryFailure(operation string) {
	HistoryFailuresTotal.WithLabelValues(operation).Inc()
}

// IncAnalysisFallback увеличивает счётчик ответов без модели.
func IncAnalysisFallback(kind string) {
	AnalysisFallbackTotal.WithLabelValues(kind).Inc()
}

// IncEntitlementDenied увеличивает счётчик отказов.
func IncEntitlementDenied(gate string) {
	EntitlementDeniedTotal.WithLabelValues(gate).Inc()
}

// IncSubscriptionActivated увеличивает счётчик активаций.
func IncSubscriptionActivated() {
	SubscriptionsActivatedTotal.Inc()
}
