package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// QAPair хранит вопрос интервью и ответ кандидата.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AnalysisRequest — транскрипт интервью для оценки.
type AnalysisRequest struct {
	Responses       []QAPair `json:"responses"`
	JobRole         string   `json:"job_role"`
	InterviewFocus  []string `json:"interview_focus"`
	DifficultyLevel string   `json:"difficulty_level"`
}

// AnalysisSummary содержит поля, извлечённые из текста анализа.
type AnalysisSummary struct {
	OverallScore    int    `json:"overall_score"`
	CurrentStatus   string `json:"current_status"`
	TimelineToReady string `json:"timeline_to_ready"`
	ConfidenceLevel string `json:"confidence_level"`
}

// AnalysisMetadata описывает контекст интервью.
type AnalysisMetadata struct {
	JobRole         string   `json:"job_role"`
	DifficultyLevel string   `json:"difficulty_level"`
	TotalQuestions  int      `json:"total_questions"`
	InterviewFocus  []string `json:"interview_focus"`
	JobCategory     string   `json:"job_category,omitempty"`
	SubJobCategory  string   `json:"sub_job_category,omitempty"`
	Duration        string   `json:"duration,omitempty"`
}

type AnalysisResult struct {
	Status   string           `json:"status"`
	Analysis string           `json:"analysis"`
	Summary  AnalysisSummary  `json:"summary"`
	Metadata AnalysisMetadata `json:"metadata"`
	Fallback bool             `json:"-"`
}

type VersantRequest struct {
	Sentences []string `json:"sentences"`
}

type VersantResult struct {
	Status              string `json:"status"`
	TotalScore          int    `json:"total_score"`
	AreasForImprovement string `json:"areas_for_improvement"`
}

// FeedbackRecord — сохранённый результат оценки интервью.
type FeedbackRecord struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	InterviewID  string           `json:"interview_id"`
	OverallScore int              `json:"overall_score"`
	Analysis     string           `json:"analysis"`
	Summary      AnalysisSummary  `json:"summary"`
	Metadata     AnalysisMetadata `json:"metadata"`
	Responses    []QAPair         `json:"responses"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// FeedbackCorrection описывает разрешённые исправления записи.
type FeedbackCorrection struct {
	Analysis     *string          `json:"analysis"`
	OverallScore *int             `json:"overall_score"`
	Summary      *AnalysisSummary `json:"summary"`
}

type ScorePoint struct {
	Score int       `json:"score"`
	Date  time.Time `json:"date"`
}

type FeedbackStats struct {
	AverageScore    float64      `json:"average_score"`
	TotalScore      int          `json:"total_score"`
	TotalInterviews int          `json:"total_interviews"`
	HighestScore    int          `json:"highest_score"`
	LowestScore     int          `json:"lowest_score"`
	RecentScores    []ScorePoint `json:"recent_scores"`
}

// ParseDurationMinutes разбирает длительность вида "20min". Возвращает def при ошибке.
func ParseDurationMinutes(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "min")))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// InterviewOutcome — вклад одного сохранённого интервью в статистику анкеты.
type InterviewOutcome struct {
	Minutes int
	Score   int
}

// RecordInterview добавляет пройденное интервью в статистику анкеты.
// Хранилище применяет то же правило одной командой вместе с записью оценки.
func (p Profile) RecordInterview(minutes, score int) Profile {
	p.CompletedInterviews++
	p.HoursPracticed = round2(p.HoursPracticed + float64(minutes)/60.0)
	p.Scores = append(append([]int(nil), p.Scores...), score)
	total := 0
	for _, s := range p.Scores {
		total += s
	}
	p.TotalScore = float64(total)
	p.AverageScore = round2(float64(total) / float64(len(p.Scores)))
	return p
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
