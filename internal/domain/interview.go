package domain

import (
	"fmt"
	"slices"
	"time"
)

// Направления интервью.
var InterviewFocusAreas = []string{
	"Technical",
	"Behavioral",
	"System Design",
	"Coding",
	"Algorithms & Data Structures",
	"Communication Skills",
	"Problem Solving",
	"Leadership & Management",
	"Domain Knowledge (e.g., Cloud, Security)",
	"Testing & Debugging",
}

// Уровни сложности. "advance" сохранён в том виде, в каком его отправляет клиент.
var DifficultyLevels = []string{"beginner", "intermediate", "advance"}

// Длительности интервью.
var Durations = []string{"10min", "20min", "30min"}

// JobCategories в порядке отображения.
var JobCategories = []string{
	"Software Engineering",
	"Data Science",
	"Product Management",
	"Quality Assurance",
	"UI/UX Design",
	"Cybersecurity",
	"Customer Service",
	"Finance",
}

// SubJobCategories по категориям.
var SubJobCategories = map[string][]string{
	"Software Engineering": {"Backend Developer", "Frontend Developer", "Fullstack Developer", "Mobile Developer", "DevOps Engineer"},
	"Data Science":         {"Data Analyst", "Data Engineer", "Machine Learning Engineer", "AI Researcher"},
	"Product Management":   {"Technical PM", "Growth PM", "Product Owner"},
	"Quality Assurance":    {"Manual Tester", "Automation Engineer", "Performance Tester"},
	"UI/UX Design":         {"UX Designer", "UI Designer", "Interaction Designer"},
	"Cybersecurity":        {"Security Analyst", "Penetration Tester", "Compliance Specialist"},
	"Customer Service":     {"Support Specialist", "Customer Success Manager"},
	"Finance":              {"Accountant", "Financial Analyst", "Auditor"},
}

// InterviewForm — параметры интервью, которые задаёт пользователь.
type InterviewForm struct {
	CompanyName     string   `json:"company_name"`
	InterviewFocus  []string `json:"interview_focus"`
	DifficultyLevel string   `json:"difficulty_level"`
	Duration        string   `json:"duration"`
	JobCategory     string   `json:"job_category"`
	SubJobCategory  string   `json:"sub_job_category"`
}

// Validate проверяет значения перечислений.
func (f InterviewForm) Validate() error {
	if len(f.InterviewFocus) == 0 {
		return fmt.Errorf("%w: interview_focus is required", ErrInvalidInput)
	}
	for _, focus := range f.InterviewFocus {
		if !slices.Contains(InterviewFocusAreas, focus) {
			return fmt.Errorf("%w: unknown interview_focus %q", ErrInvalidInput, focus)
		}
	}
	if !slices.Contains(DifficultyLevels, f.DifficultyLevel) {
		return fmt.Errorf("%w: unknown difficulty_level %q", ErrInvalidInput, f.DifficultyLevel)
	}
	if !slices.Contains(Durations, f.Duration) {
		return fmt.Errorf("%w: unknown duration %q", ErrInvalidInput, f.Duration)
	}
	subs, ok := SubJobCategories[f.JobCategory]
	if !ok {
		return fmt.Errorf("%w: unknown job_category %q", ErrInvalidInput, f.JobCategory)
	}
	if !slices.Contains(subs, f.SubJobCategory) {
		return fmt.Errorf("%w: sub_job_category %q does not belong to %q", ErrInvalidInput, f.SubJobCategory, f.JobCategory)
	}
	return nil
}

// Interview хранит сохранённую конфигурацию интервью.
type Interview struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	InterviewForm
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InterviewFilter задаёт поиск интервью.
type InterviewFilter struct {
	UserID          string
	JobCategory     string
	SubJobCategory  string
	DifficultyLevel string
	Duration        string
	CompanyName     string
	Page            int
	PerPage         int
}

// MaxInterviewPage ограничивает номер страницы, чтобы смещение не переполнялось.
const MaxInterviewPage = 100000

// Normalize выставляет значения пагинации по умолчанию.
func (f InterviewFilter) Normalize() InterviewFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxInterviewPage {
		f.Page = MaxInterviewPage
	}
	if f.PerPage < 1 {
		f.PerPage = 10
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}
	return f
}

// Offset возвращает смещение для текущей страницы.
func (f InterviewFilter) Offset() int {
	return (f.Page - 1) * f.PerPage
}

type InterviewPage struct {
	Status  string      `json:"status"`
	Total   int         `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
	Data    []Interview `json:"data"`
}

// FormOptions перечисляет значения для выпадающих списков.
type FormOptions struct {
	InterviewFocus   []string            `json:"interview_focus"`
	DifficultyLevels []string            `json:"difficulty_levels"`
	Durations        []string            `json:"durations"`
	JobCategories    []string            `json:"job_categories"`
	SubJobCategories map[string][]string `json:"sub_job_categories"`
}

// GetFormOptions собирает значения перечислений.
func GetFormOptions() FormOptions {
	return FormOptions{
		InterviewFocus:   InterviewFocusAreas,
		DifficultyLevels: DifficultyLevels,
		Durations:        Durations,
		JobCategories:    JobCategories,
		SubJobCategories: SubJobCategories,
	}
}

// InterviewQuestions — сгенерированный набор вопросов.
type InterviewQuestions struct {
	InterviewDuration string   `json:"interview_duration"`
	TimePerQuestion   string   `json:"time_per_question"`
	TotalQuestions    int      `json:"total_questions"`
	Questions         []string `json:"questions"`
}
