package feedback

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/HysterChat/pinco-clone/internal/domain"
	"github.com/HysterChat/pinco-clone/internal/infra/metrics"
)

const (
	defaultDurationMinutes = 10
	recentScoresLimit      = 5
)

// Service оценивает интервью и хранит результаты.
type Service struct {
	gen      domain.Generator
	feedback domain.FeedbackRepo
	log      zerolog.Logger
}

// NewService создаёт сервис оценки.
func NewService(gen domain.Generator, feedback domain.FeedbackRepo, logger zerolog.Logger) *Service {
	return &Service{gen: gen, feedback: feedback, log: logger}
}

// Analyze оценивает транскрипт. Неполный ответ модели повторяется до двух раз,
// затем используется анализ по длине ответов.
func (s *Service) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	if len(req.Responses) == 0 {
		return domain.AnalysisResult{}, fmt.Errorf("%w: responses are required", domain.ErrInvalidInput)
	}
	n := len(req.Responses)
	prompt := AnalysisPrompt(req)
	opts := domain.GenerateOptions{MaxTokens: analysisMaxTokens, MinChars: domain.MultiItemMinChars}

	var analysis string
	for attempt := 1; attempt <= 1+analysisRetries; attempt++ {
		text, err := s.gen.Generate(ctx, prompt, opts)
		if err != nil {
			s.log.Warn().Err(err).Int("attempt", attempt).Msg("анализ интервью: модель недоступна")
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if IsCompleteAnalysis(text, n) {
			analysis = text
			break
		}
		s.log.Warn().
			Int("attempt", attempt).
			Int("questions", n).
			Int("question_blocks", strings.Count(text, questionBlock)).
			Int("how_to_answer_blocks", strings.Count(text, howToAnswer)).
			Msg("анализ интервью неполный")
	}

	fallback := analysis == ""
	if fallback {
		metrics.IncAnalysisFallback("interview")
		s.log.Warn().Err(domain.ErrValidationShortfall).Int("questions", n).Msg("используем анализ без модели")
		analysis = FallbackAnalysis(req)
	}
	return domain.AnalysisResult{
		Status:   "success",
		Analysis: analysis,
		Summary:  ExtractSummary(analysis),
		Metadata: domain.AnalysisMetadata{
			JobRole:         req.JobRole,
			DifficultyLevel: req.DifficultyLevel,
			TotalQuestions:  n,
			InterviewFocus:  req.InterviewFocus,
		},
		Fallback: fallback,
	}, nil
}

// SaveRequest приходит от клиента после завершения интервью.
type SaveRequest struct {
	InterviewID  string                  `json:"interview_id"`
	Analysis     string                  `json:"analysis"`
	OverallScore *int                    `json:"overall_score"`
	Score        *int                    `json:"score"`
	Summary      *domain.AnalysisSummary `json:"summary"`
	Metadata     domain.AnalysisMetadata `json:"metadata"`
	Responses    []domain.QAPair         `json:"responses"`
}

// ResolveScore берёт первую ненулевую оценку: overall_score, score, summary.overall_score.
func (r SaveRequest) ResolveScore() int {
	for _, v := range []*int{r.OverallScore, r.Score} {
		if v != nil && *v != 0 {
			return *v
		}
	}
	if r.Summary != nil {
		return r.Summary.OverallScore
	}
	return 0
}

// Save сохраняет оценку; статистика анкеты обновляется тем же вызовом хранилища.
func (s *Service) Save(ctx context.Context, userID string, req SaveRequest) (domain.FeedbackRecord, error) {
	score := req.ResolveScore()
	if score < 0 || score > 100 {
		return domain.FeedbackRecord{}, fmt.Errorf("%w: score must be between 0 and 100", domain.ErrInvalidInput)
	}
	rec := domain.FeedbackRecord{
		UserID:       userID,
		InterviewID:  req.InterviewID,
		OverallScore: score,
		Analysis:     req.Analysis,
		Metadata:     req.Metadata,
		Responses:    req.Responses,
	}
	if req.Summary != nil {
		rec.Summary = *req.Summary
	} else {
		rec.Summary = domain.AnalysisSummary{OverallScore: score, CurrentStatus: DefaultStatus, TimelineToReady: DefaultTimeline, ConfidenceLevel: DefaultConfidence}
	}
	outcome := domain.InterviewOutcome{
		Minutes: domain.ParseDurationMinutes(req.Metadata.Duration, defaultDurationMinutes),
		Score:   score,
	}
	saved, err := s.feedback.CreateFeedback(ctx, rec, outcome)
	if err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("сохранение оценки: %w", err)
	}
	return saved, nil
}

// List возвращает оценки пользователя.
func (s *Service) List(ctx context.Context, userID string) ([]domain.FeedbackRecord, error) {
	return s.feedback.ListFeedback(ctx, userID)
}

// Get возвращает оценку по id.
func (s *Service) Get(ctx context.Context, userID, id string) (domain.FeedbackRecord, error) {
	return s.feedback.GetFeedback(ctx, userID, id)
}

// ForInterview возвращает оценку конкретного интервью.
func (s *Service) ForInterview(ctx context.Context, userID, interviewID string) (domain.FeedbackRecord, error) {
	return s.feedback.GetFeedbackByInterview(ctx, userID, interviewID)
}

// Correct применяет исправления к сохранённой оценке.
func (s *Service) Correct(ctx context.Context, userID, id string, c domain.FeedbackCorrection) (domain.FeedbackRecord, error) {
	rec, err := s.feedback.GetFeedback(ctx, userID, id)
	if err != nil {
		return domain.FeedbackRecord{}, err
	}
	if c.Analysis != nil {
		rec.Analysis = *c.Analysis
	}
	if c.Summary != nil {
		rec.Summary = *c.Summary
		rec.OverallScore = c.Summary.OverallScore
	}
	if c.OverallScore != nil {
		if *c.OverallScore < 0 || *c.OverallScore > 100 {
			return domain.FeedbackRecord{}, fmt.Errorf("%w: score must be between 0 and 100", domain.ErrInvalidInput)
		}
		rec.OverallScore = *c.OverallScore
		rec.Summary.OverallScore = *c.OverallScore
	}
	return s.feedback.UpdateFeedback(ctx, rec)
}

// Stats считает статистику по сохранённым оценкам.
func (s *Service) Stats(ctx context.Context, userID string) (domain.FeedbackStats, error) {
	points, err := s.feedback.FeedbackScores(ctx, userID)
	if err != nil {
		return domain.FeedbackStats{}, fmt.Errorf("получение оценок: %w", err)
	}
	return ComputeStats(points), nil
}

// ComputeStats агрегирует оценки. Последние оценки идут от новых к старым.
func ComputeStats(points []domain.ScorePoint) domain.FeedbackStats {
	stats := domain.FeedbackStats{RecentScores: []domain.ScorePoint{}}
	if len(points) == 0 {
		return stats
	}
	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b domain.ScorePoint) int { return b.Date.Compare(a.Date) })

	stats.HighestScore = sorted[0].Score
	stats.LowestScore = sorted[0].Score
	for _, p := range sorted {
		stats.TotalScore += p.Score
		stats.HighestScore = max(stats.HighestScore, p.Score)
		stats.LowestScore = min(stats.LowestScore, p.Score)
	}
	stats.TotalInterviews = len(sorted)
	stats.AverageScore = math.Round(float64(stats.TotalScore)/float64(len(sorted))*10) / 10
	stats.RecentScores = sorted[:min(recentScoresLimit, len(sorted))]
	return stats
}
