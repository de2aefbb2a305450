package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/HysterChat/pinco-clone/internal/domain"
)

type stubGenerator struct {
	mu     sync.Mutex
	reply  string
	err    error
	calls  int
	prompt string
	opts   domain.GenerateOptions
}

func (s *stubGenerator) Generate(_ context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.prompt = prompt
	s.opts = opts
	return s.reply, s.err
}

type stubAccounts struct {
	mu       sync.Mutex
	acc      domain.Account
	incErr   error
	incCalls int
	// readers задерживает GetAccount, пока все конкурирующие запросы не прочитают счётчик.
	readers *sync.WaitGroup
}

func (s *stubAccounts) EnsureAccount(context.Context, domain.AccountIdentity) (domain.Account, error) {
	return s.acc, nil
}

func (s *stubAccounts) GetAccount(context.Context, string) (domain.Account, error) {
	s.mu.Lock()
	acc := s.acc
	s.mu.Unlock()
	if s.readers != nil {
		s.readers.Done()
		s.readers.Wait()
	}
	return acc, nil
}

func (s *stubAccounts) ClaimFreeInterview(_ context.Context, _ string, limit int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incCalls++
	if s.incErr != nil {
		return 0, false, s.incErr
	}
	if s.acc.InterviewsTaken >= limit {
		return s.acc.InterviewsTaken, false, nil
	}
	s.acc.InterviewsTaken++
	return s.acc.InterviewsTaken, true, nil
}

func (s *stubAccounts) ActivateSubscription(context.Context, string, string, string, time.Time, time.Time) (domain.Account, error) {
	return s.acc, nil
}

func (s *stubAccounts) ExpireSubscriptions(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type memInterviews struct {
	items  map[string]domain.Interview
	filter domain.InterviewFilter
}

func (m *memInterviews) CreateInterview(_ context.Context, iv domain.Interview) (domain.Interview, error) {
	m.items[iv.ID] = iv
	return iv, nil
}

func (m *memInterviews) GetInterview(_ context.Context, userID, id string) (domain.Interview, error) {
	iv, ok := m.items[id]
	if !ok || iv.UserID != userID {
		return domain.Interview{}, domain.ErrNotFound
	}
	return iv, nil
}

func (m *memInterviews) UpdateInterview(_ context.Context, iv domain.Interview) (domain.Interview, error) {
	m.items[iv.ID] = iv
	return iv, nil
}

func (m *memInterviews) DeleteInterview(_ context.Context, userID, id string) error {
	if iv, ok := m.items[id]; !ok || iv.UserID != userID {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memInterviews) SearchInterviews(_ context.Context, f domain.InterviewFilter) ([]domain.Interview, int, error) {
	m.filter = f
	var out []domain.Interview
	for _, iv := range m.items {
		if iv.UserID == f.UserID {
			out = append(out, iv)
		}
	}
	return out, len(out), nil
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(gen domain.Generator, acc *stubAccounts) (*Service, *memInterviews) {
	repo := &memInterviews{items: map[string]domain.Interview{}}
	svc := NewService(gen, acc, repo, zerolog.Nop())
	svc.now = func() time.Time { return testNow }
	svc.rand = func(int) int { return 7 }
	return svc, repo
}

func validForm() domain.InterviewForm {
	return domain.InterviewForm{
		CompanyName:     "Acme",
		InterviewFocus:  []string{"Technical", "Coding"},
		DifficultyLevel: "intermediate",
		Duration:        "20min",
		JobCategory:     "Software Engineering",
		SubJobCategory:  "Backend Developer",
	}
}

func numbered(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "  %d. [Technical] Question number %d?  \n\n", i, i)
	}
	return b.String()
}

func TestGenerateQuestionsFreeUser(t *testing.T) {
	acc := &stubAccounts{acc: domain.Account{UserID: "u1", SubscriptionStatus: domain.SubscriptionFree}}
	gen := &stubGenerator{reply: numbered(20)}
	svc, _ := newTestService(gen, acc)

	res, err := svc.GenerateQuestions(context.Background(), "u1", validForm())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if res.TotalQuestions != 20 || res.Questions[0] != "1. [Technical] Question number 1?" {
		t.Fatalf("неожиданные вопросы: %+v", res)
	}
	if res.InterviewDuration != "20min" || res.TimePerQuestion != timePerQuestion {
		t.Fatalf("неожиданные поля ответа: %+v", res)
	}
	if acc.incCalls != 1 {
		t.Fatalf("бесплатное интервью должно учитываться")
	}
	if gen.opts.MaxTokens != questionsMaxTokens {
		t.Fatalf("ожидали бюджет %d, получили %d", questionsMaxTokens, gen.opts.MaxTokens)
	}
	for _, want := range []string{"exactly 20 questions", "Add 15 [Technical]", "Acme", "[Session ID: 1007-20250601120000]", "Technical, Coding"} {
		if !strings.Contains(gen.prompt, want) {
			t.Fatalf("в промпте нет %q", want)
		}
	}

	_, err = svc.GenerateQuestions(context.Background(), "u1", validForm())
	var denied *domain.DeniedError
	if !errors.As(err, &denied) || !strings.Contains(denied.Reason, "You have used 1 out of 1 free interview") {
		t.Fatalf("второе бесплатное интервью должно быть запрещено, получили %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("после отказа модель не должна вызываться")
	}
}

func TestGenerateQuestionsPremiumNotCounted(t *testing.T) {
	end := testNow.Add(24 * time.Hour)
	acc := &stubAccounts{acc: domain.Account{UserID: "u1", SubscriptionStatus: domain.SubscriptionActive, SubscriptionEnd: &end, InterviewsTaken: 5}}
	svc, _ := newTestService(&stubGenerator{reply: numbered(10)}, acc)
	if _, err := svc.GenerateQuestions(context.Background(), "u1", validForm()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if acc.incCalls != 0 {
		t.Fatalf("премиум-интервью не должно учитываться")
	}
}

func TestGenerateQuestionsExpiredPremium(t *testing.T) {
	end := testNow.Add(-time.Hour)
	acc := &stubAccounts{acc: domain.Account{UserID: "u1", SubscriptionStatus: domain.SubscriptionActive, SubscriptionEnd: &end, InterviewsTaken: 3}}
	svc, _ := newTestService(&stubGenerator{reply: numbered(10)}, acc)
	_, err := svc.GenerateQuestions(context.Background(), "u1", validForm())
	var denied *domain.DeniedError
	if !errors.As(err, &denied) || !strings.Contains(denied.Reason, "expired") {
		t.Fatalf("ожидали отказ по истёкшей подписке, получили %v", err)
	}
}

func TestGenerateQuestionsFallback(t *testing.T) {
	tests := []struct {
		name     string
		gen      *stubGenerator
		duration string
		want     int
	}{
		{name: "модель недоступна", gen: &stubGenerator{err: domain.ErrUpstreamUnavailable}, duration: "10min", want: 10},
		{name: "пустой ответ", gen: &stubGenerator{reply: "\n \n"}, duration: "30min", want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &stubAccounts{acc: domain.Account{UserID: "u1"}}
			svc, _ := newTestService(tt.gen, acc)
			form := validForm()
			form.Duration = tt.duration
			res, err := svc.GenerateQuestions(context.Background(), "u1", form)
			if err != nil {
				t.Fatalf("не ожидали ошибку: %v", err)
			}
			if res.TotalQuestions != tt.want || res.Questions[0] != fallbackQuestions[0] {
				t.Fatalf("ожидали запасные вопросы, получили %+v", res)
			}
		})
	}
	if got := FallbackQuestions(3); len(got) != 3 {
		t.Fatalf("запасной список должен обрезаться, получили %d", len(got))
	}
}

func TestGenerateQuestionsCounterFailureSurfaced(t *testing.T) {
	acc := &stubAccounts{acc: domain.Account{UserID: "u1"}, incErr: domain.ErrPersistence}
	svc, _ := newTestService(&stubGenerator{reply: numbered(10)}, acc)
	if _, err := svc.GenerateQuestions(context.Background(), "u1", validForm()); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("ошибка учёта должна возвращаться, получили %v", err)
	}
}

func TestGenerateQuestionsConcurrentFreeTrial(t *testing.T) {
	const callers = 2
	readers := &sync.WaitGroup{}
	readers.Add(callers)
	acc := &stubAccounts{acc: domain.Account{UserID: "u1", SubscriptionStatus: domain.SubscriptionFree}, readers: readers}
	gen := &stubGenerator{reply: numbered(10)}
	svc, _ := newTestService(gen, acc)

	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.GenerateQuestions(context.Background(), "u1", validForm())
		}()
	}
	wg.Wait()

	var ok, denied int
	for _, err := range errs {
		var d *domain.DeniedError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &d) && strings.Contains(d.Reason, "You have used 1 out of 1 free interview"):
			denied++
		default:
			t.Fatalf("неожиданная ошибка: %v", err)
		}
	}
	if ok != 1 || denied != 1 {
		t.Fatalf("ожидали одно успешное и один отказ, получили %d/%d", ok, denied)
	}
	if acc.acc.InterviewsTaken != 1 {
		t.Fatalf("счётчик не должен превышать лимит, получили %d", acc.acc.InterviewsTaken)
	}
	if gen.calls != 1 {
		t.Fatalf("модель должна вызываться только для занятого слота, вызовов %d", gen.calls)
	}
}

func TestGenerateQuestionsValidatesForm(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{}, &stubAccounts{})
	form := validForm()
	form.SubJobCategory = "Auditor"
	if _, err := svc.GenerateQuestions(context.Background(), "u1", form); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("ожидали ErrInvalidInput, получили %v", err)
	}
}

func TestInterviewCRUD(t *testing.T) {
	svc, repo := newTestService(&stubGenerator{}, &stubAccounts{})
	ctx := context.Background()

	iv, err := svc.Create(ctx, "u1", validForm())
	if err != nil || iv.ID == "" {
		t.Fatalf("создание: %+v, %v", iv, err)
	}
	form := validForm()
	form.Duration = "30min"
	updated, err := svc.Update(ctx, "u1", iv.ID, form)
	if err != nil || updated.Duration != "30min" {
		t.Fatalf("обновление: %+v, %v", updated, err)
	}
	if _, err := svc.Get(ctx, "u2", iv.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("чужое интервью должно быть не найдено, получили %v", err)
	}

	page, err := svc.Search(ctx, domain.InterviewFilter{UserID: "u1", PerPage: 500})
	if err != nil || page.Total != 1 || page.Page != 1 || page.PerPage != 100 {
		t.Fatalf("поиск: %+v, %v", page, err)
	}
	if repo.filter.PerPage != 100 {
		t.Fatalf("фильтр должен нормализоваться")
	}

	if err := svc.Delete(ctx, "u1", iv.ID); err != nil {
		t.Fatalf("удаление: %v", err)
	}
	page, _ = svc.Search(ctx, domain.InterviewFilter{UserID: "u1"})
	if page.Total != 0 || page.Data == nil {
		t.Fatalf("после удаления ожидали пустую страницу: %+v", page)
	}
}
