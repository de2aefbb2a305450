package interview

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/HysterChat/pinco-clone/internal/domain"
	"github.com/HysterChat/pinco-clone/internal/infra/metrics"
	"github.com/HysterChat/pinco-clone/internal/usecase/content"
)

// Service генерирует вопросы интервью и управляет сохранёнными конфигурациями.
type Service struct {
	gen        domain.Generator
	accounts   domain.AccountRepo
	interviews domain.InterviewRepo
	log        zerolog.Logger
	now        func() time.Time
	rand       func(int) int
}

// NewService создаёт сервис интервью.
func NewService(gen domain.Generator, accounts domain.AccountRepo, interviews domain.InterviewRepo, logger zerolog.Logger) *Service {
	return &Service{
		gen:        gen,
		accounts:   accounts,
		interviews: interviews,
		log:        logger,
		now:        time.Now,
		rand:       rand.IntN,
	}
}

// GenerateQuestions проверяет доступ, списывает бесплатное интервью и генерирует вопросы.
func (s *Service) GenerateQuestions(ctx context.Context, userID string, form domain.InterviewForm) (domain.InterviewQuestions, error) {
	if err := form.Validate(); err != nil {
		return domain.InterviewQuestions{}, err
	}
	acc, err := s.accounts.GetAccount(ctx, userID)
	if err != nil {
		return domain.InterviewQuestions{}, fmt.Errorf("получение учётной записи: %w", err)
	}
	ent := domain.EvaluateEntitlement(acc, s.now())
	if err := ent.RequireGenerate(); err != nil {
		metrics.IncEntitlementDenied("generate_question")
		return domain.InterviewQuestions{}, err
	}

	if !ent.IsPremium {
		taken, claimed, err := s.accounts.ClaimFreeInterview(ctx, userID, domain.FreeInterviewLimit)
		if err != nil {
			return domain.InterviewQuestions{}, fmt.Errorf("учёт бесплатного интервью: %w", err)
		}
		if !claimed {
			// Слот занял параллельный запрос между чтением и списанием.
			metrics.IncEntitlementDenied("generate_question")
			acc.InterviewsTaken = max(acc.InterviewsTaken, domain.FreeInterviewLimit)
			return domain.InterviewQuestions{}, domain.EvaluateEntitlement(acc, s.now()).RequireGenerate()
		}
		s.log.Info().Str("user_id", userID).Int("interviews_taken", taken).Msg("бесплатное интервью учтено")
	}

	total := QuestionCount(form.Duration)
	prompt := QuestionsPrompt(form, total, content.SessionNonce(s.rand, s.now()))
	raw, err := s.gen.Generate(ctx, prompt, domain.GenerateOptions{
		MaxTokens: questionsMaxTokens,
		MinChars:  domain.MultiItemMinChars,
	})
	questions := SplitQuestions(raw)
	if err != nil || len(questions) == 0 {
		metrics.IncAnalysisFallback("questions")
		s.log.Warn().Err(err).Str("user_id", userID).Int("total", total).Msg("вопросы интервью: используем запасной список")
		questions = FallbackQuestions(total)
	}

	return domain.InterviewQuestions{
		InterviewDuration: form.Duration,
		TimePerQuestion:   timePerQuestion,
		TotalQuestions:    len(questions),
		Questions:         questions,
	}, nil
}

// Create сохраняет новую конфигурацию интервью.
func (s *Service) Create(ctx context.Context, userID string, form domain.InterviewForm) (domain.Interview, error) {
	if err := form.Validate(); err != nil {
		return domain.Interview{}, err
	}
	now := s.now().UTC()
	return s.interviews.CreateInterview(ctx, domain.Interview{
		ID:            uuid.NewString(),
		UserID:        userID,
		InterviewForm: form,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

// Get возвращает интервью владельца.
func (s *Service) Get(ctx context.Context, userID, id string) (domain.Interview, error) {
	return s.interviews.GetInterview(ctx, userID, id)
}

// Update заменяет параметры интервью.
func (s *Service) Update(ctx context.Context, userID, id string, form domain.InterviewForm) (domain.Interview, error) {
	if err := form.Validate(); err != nil {
		return domain.Interview{}, err
	}
	iv, err := s.interviews.GetInterview(ctx, userID, id)
	if err != nil {
		return domain.Interview{}, err
	}
	iv.InterviewForm = form
	iv.UpdatedAt = s.now().UTC()
	return s.interviews.UpdateInterview(ctx, iv)
}

// Delete удаляет интервью владельца.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.interviews.DeleteInterview(ctx, userID, id)
}

// List возвращает первую страницу интервью пользователя.
func (s *Service) List(ctx context.Context, userID string) (domain.InterviewPage, error) {
	return s.Search(ctx, domain.InterviewFilter{UserID: userID, PerPage: 100})
}

// Search ищет интервью пользователя по фильтру.
func (s *Service) Search(ctx context.Context, f domain.InterviewFilter) (domain.InterviewPage, error) {
	if f.UserID == "" {
		return domain.InterviewPage{}, errors.New("user id is required")
	}
	f = f.Normalize()
	f.CompanyName = strings.TrimSpace(f.CompanyName)
	items, total, err := s.interviews.SearchInterviews(ctx, f)
	if err != nil {
		return domain.InterviewPage{}, fmt.Errorf("поиск интервью: %w", err)
	}
	if items == nil {
		items = []domain.Interview{}
	}
	return domain.InterviewPage{Status: "success", Total: total, Page: f.Page, PerPage: f.PerPage, Data: items}, nil
}

// FormOptions возвращает допустимые значения полей формы.
func (s *Service) FormOptions() domain.FormOptions {
	return domain.GetFormOptions()
}
