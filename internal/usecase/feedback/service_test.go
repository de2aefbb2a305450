package feedback

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
	replies []string
	err     error
	calls   int
	opts    []domain.GenerateOptions
}

func (s *stubGenerator) Generate(_ context.Context, _ string, opts domain.GenerateOptions) (string, error) {
	s.calls++
	s.opts = append(s.opts, opts)
	if s.err != nil {
		return "", s.err
	}
	if len(s.replies) == 0 {
		return "", fmt.Errorf("%w: no reply", domain.ErrUpstreamUnavailable)
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

// memFeedback хранит оценки и статистику анкет под одной блокировкой,
// как транзакция в хранилище.
type memFeedback struct {
	mu        sync.Mutex
	records   map[string]domain.FeedbackRecord
	profiles  map[string]domain.Profile
	scores    []domain.ScorePoint
	seq       int
	createErr error
}

func newMemFeedback() *memFeedback {
	return &memFeedback{records: map[string]domain.FeedbackRecord{}, profiles: map[string]domain.Profile{}}
}

func (m *memFeedback) CreateFeedback(_ context.Context, rec domain.FeedbackRecord, outcome domain.InterviewOutcome) (domain.FeedbackRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return domain.FeedbackRecord{}, m.createErr
	}
	m.seq++
	rec.ID = fmt.Sprintf("fb-%d", m.seq)
	m.records[rec.ID] = rec
	p := m.profiles[rec.UserID]
	p.UserID = rec.UserID
	m.profiles[rec.UserID] = p.RecordInterview(outcome.Minutes, outcome.Score)
	return rec, nil
}

func (m *memFeedback) profile(userID string) domain.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles[userID]
}

func (m *memFeedback) GetFeedback(_ context.Context, userID, id string) (domain.FeedbackRecord, error) {
	rec, ok := m.records[id]
	if !ok || rec.UserID != userID {
		return domain.FeedbackRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

func (m *memFeedback) GetFeedbackByInterview(_ context.Context, userID, interviewID string) (domain.FeedbackRecord, error) {
	for _, rec := range m.records {
		if rec.UserID == userID && rec.InterviewID == interviewID {
			return rec, nil
		}
	}
	return domain.FeedbackRecord{}, domain.ErrNotFound
}

func (m *memFeedback) ListFeedback(_ context.Context, userID string) ([]domain.FeedbackRecord, error) {
	var out []domain.FeedbackRecord
	for _, rec := range m.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memFeedback) UpdateFeedback(_ context.Context, rec domain.FeedbackRecord) (domain.FeedbackRecord, error) {
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *memFeedback) FeedbackScores(context.Context, string) ([]domain.ScorePoint, error) {
	return m.scores, nil
}

func newTestService(gen domain.Generator) (*Service, *memFeedback) {
	fb := newMemFeedback()
	return NewService(gen, fb, zerolog.Nop()), fb
}

func twoQuestions() domain.AnalysisRequest {
	return domain.AnalysisRequest{
		JobRole:         "Backend Developer",
		DifficultyLevel: "intermediate",
		InterviewFocus:  []string{"Technical"},
		Responses: []domain.QAPair{
			{Question: "Tell me about yourself", Answer: "I build payment services in Go."},
			{Question: "Describe a failure", Answer: "I shipped a migration without a rollback plan."},
		},
	}
}

func completeAnalysis(questions int) string {
	var b strings.Builder
	b.WriteString("## OVERALL INTERVIEW SCORE: 81/100\n\n### INDIVIDUAL QUESTION ANALYSIS\n\n")
	for i := 1; i <= questions; i++ {
		fmt.Fprintf(&b, "**Question %d: ...**\n- **Score**: 80/100\n**HOW TO ANSWER THIS QUESTION PROPERLY:**\n- **Structure**: situation, task, action, result.\n\n", i)
	}
	b.WriteString("**Current Status**: Interview Ready\n**Estimated Timeline to Interview-Ready**: 1 week\n**Confidence Recommendation**: High\n")
	return b.String()
}

func TestAnalyzeRetriesIncompleteThenSucceeds(t *testing.T) {
	gen := &stubGenerator{replies: []string{completeAnalysis(1), completeAnalysis(2)}}
	svc, _ := newTestService(gen)
	res, err := svc.Analyze(context.Background(), twoQuestions())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if gen.calls != 2 || res.Fallback {
		t.Fatalf("ожидали успех со второй попытки, вызовов %d, fallback %v", gen.calls, res.Fallback)
	}
	if res.Summary.OverallScore != 81 || res.Summary.CurrentStatus != "Interview Ready" {
		t.Fatalf("неожиданная сводка: %+v", res.Summary)
	}
	if res.Metadata.TotalQuestions != 2 || res.Metadata.JobRole != "Backend Developer" {
		t.Fatalf("неожиданные метаданные: %+v", res.Metadata)
	}
	for _, o := range gen.opts {
		if o.MaxTokens != analysisMaxTokens || o.MinChars != domain.MultiItemMinChars {
			t.Fatalf("неожиданные параметры вызова: %+v", o)
		}
	}
}

func TestAnalyzeFallsBack(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGenerator
	}{
		{name: "модель недоступна", gen: &stubGenerator{err: domain.ErrUpstreamUnavailable}},
		{name: "всегда неполный ответ", gen: &stubGenerator{replies: []string{completeAnalysis(1), completeAnalysis(1), completeAnalysis(1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(tt.gen)
			req := twoQuestions()
			res, err := svc.Analyze(context.Background(), req)
			if err != nil {
				t.Fatalf("не ожидали ошибку: %v", err)
			}
			if !res.Fallback || tt.gen.calls != 1+analysisRetries {
				t.Fatalf("ожидали запасной анализ после %d попыток, вызовов %d", 1+analysisRetries, tt.gen.calls)
			}
			if res.Status != "success" || !IsCompleteAnalysis(res.Analysis, len(req.Responses)) {
				t.Fatalf("запасной анализ неполный")
			}
		})
	}
}

func TestAnalyzeRequiresResponses(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{})
	if _, err := svc.Analyze(context.Background(), domain.AnalysisRequest{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("ожидали ErrInvalidInput, получили %v", err)
	}
}

func TestVersant(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{replies: []string{"TOTAL SCORE: 62/80\nAREAS TO IMPROVE:\n1. Stress - flat intonation"}})
	res, err := svc.Versant(context.Background(), domain.VersantRequest{Sentences: []string{"I am ready.", " "}})
	if err != nil || res.TotalScore != 62 {
		t.Fatalf("ожидали 62 балла, получили %+v, %v", res, err)
	}

	down, _ := newTestService(&stubGenerator{err: domain.ErrUpstreamUnavailable})
	res, err = down.Versant(context.Background(), domain.VersantRequest{Sentences: []string{"I am ready."}})
	if err != nil || res.Status != "success" || res.TotalScore != 0 || res.AreasForImprovement != VersantFallbackAdvice {
		t.Fatalf("ожидали заглушку, получили %+v, %v", res, err)
	}

	if _, err := down.Versant(context.Background(), domain.VersantRequest{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("ожидали ErrInvalidInput, получили %v", err)
	}
}

func intPtr(v int) *int { return &v }

func TestSaveResolvesScoreAndUpdatesProfile(t *testing.T) {
	tests := []struct {
		name string
		req  SaveRequest
		want int
	}{
		{name: "overall_score", req: SaveRequest{OverallScore: intPtr(70), Score: intPtr(40)}, want: 70},
		{name: "score при нулевом overall", req: SaveRequest{OverallScore: intPtr(0), Score: intPtr(40)}, want: 40},
		{name: "из сводки", req: SaveRequest{Summary: &domain.AnalysisSummary{OverallScore: 55}}, want: 55},
		{name: "нет оценки", req: SaveRequest{}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.ResolveScore(); got != tt.want {
				t.Fatalf("ожидали %d, получили %d", tt.want, got)
			}
		})
	}

	svc, fb := newTestService(&stubGenerator{})
	ctx := context.Background()
	if _, err := svc.Save(ctx, "u1", SaveRequest{InterviewID: "iv1", OverallScore: intPtr(60), Metadata: domain.AnalysisMetadata{Duration: "30min"}}); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if _, err := svc.Save(ctx, "u1", SaveRequest{InterviewID: "iv2", Score: intPtr(80)}); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	p := fb.profile("u1")
	if p.CompletedInterviews != 2 || p.AverageScore != 70 || p.HoursPracticed != 0.67 {
		t.Fatalf("неожиданная статистика анкеты: %+v", p)
	}
	rec, err := svc.ForInterview(ctx, "u1", "iv1")
	if err != nil || rec.OverallScore != 60 || rec.Summary.CurrentStatus != DefaultStatus {
		t.Fatalf("неожиданная запись: %+v, %v", rec, err)
	}
	if len(fb.records) != 2 {
		t.Fatalf("ожидали 2 записи, получили %d", len(fb.records))
	}

	if _, err := svc.Save(ctx, "u1", SaveRequest{OverallScore: intPtr(140)}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("ожидали ErrInvalidInput, получили %v", err)
	}
}

func TestSaveConcurrentKeepsEveryInterview(t *testing.T) {
	svc, fb := newTestService(&stubGenerator{})
	const n = 20
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := SaveRequest{InterviewID: fmt.Sprintf("iv%d", i), OverallScore: intPtr(50), Metadata: domain.AnalysisMetadata{Duration: "30min"}}
			if _, err := svc.Save(context.Background(), "u1", req); err != nil {
				t.Errorf("не ожидали ошибку: %v", err)
			}
		}()
	}
	wg.Wait()

	p := fb.profile("u1")
	if p.CompletedInterviews != n || len(p.Scores) != n || p.TotalScore != 50*n || p.AverageScore != 50 || p.HoursPracticed != 10 {
		t.Fatalf("параллельные сохранения потеряли статистику: %+v", p)
	}
}

func TestSaveFailureLeavesProfileUntouched(t *testing.T) {
	svc, fb := newTestService(&stubGenerator{})
	fb.createErr = domain.ErrPersistence
	if _, err := svc.Save(context.Background(), "u1", SaveRequest{OverallScore: intPtr(70)}); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("ожидали ErrPersistence, получили %v", err)
	}
	if p := fb.profile("u1"); p.CompletedInterviews != 0 || len(fb.records) != 0 {
		t.Fatalf("неудачное сохранение не должно менять данные: %+v", p)
	}
}

func TestCorrect(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{})
	ctx := context.Background()
	saved, _ := svc.Save(ctx, "u1", SaveRequest{InterviewID: "iv1", OverallScore: intPtr(50)})

	text := "corrected analysis"
	got, err := svc.Correct(ctx, "u1", saved.ID, domain.FeedbackCorrection{Analysis: &text, OverallScore: intPtr(65)})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if got.Analysis != text || got.OverallScore != 65 || got.Summary.OverallScore != 65 {
		t.Fatalf("исправления не применились: %+v", got)
	}
	if _, err := svc.Correct(ctx, "u2", saved.ID, domain.FeedbackCorrection{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("чужая запись должна быть не найдена, получили %v", err)
	}
}

func TestComputeStats(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 1, d, 10, 0, 0, 0, time.UTC) }
	points := []domain.ScorePoint{
		{Score: 40, Date: day(1)},
		{Score: 90, Date: day(2)},
		{Score: 55, Date: day(3)},
		{Score: 61, Date: day(4)},
		{Score: 70, Date: day(5)},
		{Score: 33, Date: day(6)},
	}
	st := ComputeStats(points)
	if st.TotalInterviews != 6 || st.TotalScore != 349 || st.HighestScore != 90 || st.LowestScore != 33 {
		t.Fatalf("неожиданная статистика: %+v", st)
	}
	if st.AverageScore != 58.2 {
		t.Fatalf("ожидали среднее 58.2, получили %v", st.AverageScore)
	}
	if len(st.RecentScores) != 5 || st.RecentScores[0].Score != 33 || st.RecentScores[4].Score != 90 {
		t.Fatalf("последние оценки должны идти от новых к старым: %+v", st.RecentScores)
	}

	empty := ComputeStats(nil)
	if empty.TotalInterviews != 0 || empty.RecentScores == nil {
		t.Fatalf("пустая статистика: %+v", empty)
	}
}
