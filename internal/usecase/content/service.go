package content

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/HysterChat/pinco-clone/internal/domain"
	"github.com/HysterChat/pinco-clone/internal/infra/metrics"
)

const maxAttempts = 3

type Result struct {
	Items    []domain.ContentItem
	Level    string
	Fresh    int
	Fallback int
	Attempts []domain.GenerationAttempt
}

// Texts возвращает тексты элементов.
func (r Result) Texts() []string {
	out := make([]string, len(r.Items))
	for i, it := range r.Items {
		out[i] = it.Text
	}
	return out
}

// Service генерирует контент без повторов с добором из запасного списка.
type Service struct {
	gen     domain.Generator
	history domain.ContentHistoryStore
	prompts *PromptBuilder
	log     zerolog.Logger
}

// NewService создаёт сервис контента.
func NewService(gen domain.Generator, history domain.ContentHistoryStore, logger zerolog.Logger) *Service {
	return &Service{gen: gen, history: history, prompts: NewPromptBuilder(), log: logger}
}

// Obtain возвращает ровно Count элементов категории. Отсутствие свежего контента
// не считается ошибкой: недостающее добирается из запасного списка.
func (s *Service) Obtain(ctx context.Context, req domain.GenerationRequest) (Result, error) {
	prof, ok := ProfileFor(req.Category)
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, req.Category)
	}
	if err := domain.ValidateContentDifficulty(req.Difficulty); err != nil {
		return Result{}, err
	}
	target := req.Count
	if target <= 0 {
		target = prof.Count
	}
	logger := s.log.With().Str("category", string(req.Category)).Str("user_id", req.UserID).Logger()

	seen := s.loadHistory(ctx, logger, req)
	historySet := make(map[string]struct{}, len(seen))
	for k := range seen {
		historySet[k] = struct{}{}
	}

	opts := domain.GenerateOptions{
		MaxTokens:   prof.MaxTokens,
		Temperature: prof.Temperature,
		MinChars:    domain.MultiItemMinChars,
	}
	var (
		fresh    []domain.ContentItem
		attempts []domain.GenerationAttempt
	)
	for n := 1; n <= maxAttempts && len(fresh) < target; n++ {
		att := s.attempt(ctx, prof, req, opts, n, seen)
		attempts = append(attempts, att)
		fresh = append(fresh, att.Accepted...)
		if att.Err != nil {
			logger.Warn().Err(att.Err).Int("attempt", n).Msg("генерация не удалась")
			if ctx.Err() != nil {
				break
			}
		}
	}
	if len(fresh) > target {
		fresh = fresh[:target]
	}

	items := fresh
	if len(fresh) < target {
		logger.Warn().
			Err(domain.ErrValidationShortfall).
			Int("fresh", len(fresh)).
			Int("target", target).
			Int("attempts", len(attempts)).
			Msg("недостаточно свежего контента, добираем запасной")
		items = padWithFallback(fresh, target, historySet, Fallback(req.Category))
	}

	res := Result{
		Items:    items,
		Level:    prof.Level,
		Fresh:    len(fresh),
		Fallback: len(items) - len(fresh),
		Attempts: attempts,
	}
	metrics.ObserveContent(string(req.Category), len(attempts), res.Fresh, res.Fallback)

	if err := s.history.Append(context.WithoutCancel(ctx), req.UserID, req.Category, res.Texts(), prof.HistoryCap); err != nil {
		metrics.IncHistoryFailure("append")
		logger.Warn().Err(fmt.Errorf("%w: %v", domain.ErrPersistence, err)).Msg("не удалось сохранить историю")
	}
	return res, nil
}

func (s *Service) loadHistory(ctx context.Context, logger zerolog.Logger, req domain.GenerationRequest) map[string]struct{} {
	items, err := s.history.Recent(ctx, req.UserID, req.Category)
	if err != nil {
		metrics.IncHistoryFailure("read")
		logger.Warn().Err(fmt.Errorf("%w: %v", domain.ErrPersistence, err)).Msg("не удалось прочитать историю")
	}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		seen[it] = struct{}{}
	}
	return seen
}

// attempt выполняет одну попытку. Принятые элементы добавляются в seen.
func (s *Service) attempt(ctx context.Context, prof Profile, req domain.GenerationRequest, opts domain.GenerateOptions, n int, seen map[string]struct{}) domain.GenerationAttempt {
	att := domain.GenerationAttempt{Number: n}
	prompt := s.prompts.Build(prof, PromptParams{Difficulty: req.Difficulty})
	raw, err := s.gen.Generate(ctx, prompt, opts)
	if err != nil {
		att.Err = err
		return att
	}
	att.Raw = raw
	parsed := Parse(prof, raw)
	att.Rejected = parsed.Rejected
	for _, it := range parsed.Accepted {
		if _, dup := seen[it.Text]; dup {
			att.Rejected = append(att.Rejected, domain.Rejection{Text: it.Text, Reason: ReasonDuplicate})
			continue
		}
		seen[it.Text] = struct{}{}
		att.Accepted = append(att.Accepted, it)
	}
	for _, r := range att.Rejected {
		metrics.IncRejected(string(prof.Category), r.Reason)
	}
	return att
}
