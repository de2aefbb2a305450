package domain

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// Category описывает тип генерируемого контента.
type Category string

const (
	CategoryReadingSentence Category = "reading-sentence"
	CategoryRepeatSentence  Category = "repeat-sentence"
	CategoryShortAnswer     Category = "short-answer-question"
	CategoryStory           Category = "story"
	CategorySentenceBuild   Category = "sentence-build"
	CategoryOpenQuestion    Category = "open-question"
)

// Categories перечисляет все категории пайплайна.
var Categories = []Category{
	CategoryReadingSentence,
	CategoryRepeatSentence,
	CategoryShortAnswer,
	CategoryStory,
	CategorySentenceBuild,
	CategoryOpenQuestion,
}

// ContentItem — один элемент контента. Text служит ключом для дедупликации и истории.
type ContentItem struct {
	Text    string   `json:"text"`
	Phrases []string `json:"phrases,omitempty"`
}

// ContentDifficulties — допустимые значения ?difficulty= для раундов контента.
var ContentDifficulties = []string{"beginner", "intermediate", "advanced"}

// ValidateContentDifficulty пропускает пустое значение и уровни из ContentDifficulties.
func ValidateContentDifficulty(d string) error {
	if d == "" || slices.Contains(ContentDifficulties, d) {
		return nil
	}
	return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, d)
}

// GenerationRequest описывает запрос на генерацию контента.
type GenerationRequest struct {
	Category   Category
	Count      int
	Difficulty string
	UserID     string
}

// Rejection хранит отклонённый кандидат и причину.
type Rejection struct {
	Text   string
	Reason string
}

// ParseResult разделяет ответ модели на принятые и отклонённые элементы.
type ParseResult struct {
	Accepted []ContentItem
	Rejected []Rejection
}

// GenerationAttempt фиксирует одну попытку генерации.
type GenerationAttempt struct {
	Number   int
	Raw      string
	Accepted []ContentItem
	Rejected []Rejection
	Err      error
}

// GenerateOptions задаёт бюджет токенов и температуру вызова модели.
// Ответ короче MinChars считается обрезанным.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	MinChars    int
}

// MultiItemMinChars — минимальная длина ответа на запрос нескольких элементов.
const MultiItemMinChars = 50

// Generator выполняет один вызов внешней модели.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// ContentHistoryStore хранит ранее выданные элементы по пользователю и категории.
// Реализации обязаны быть безопасны при конкурентных запросах одного пользователя.
type ContentHistoryStore interface {
	Recent(ctx context.Context, userID string, category Category) ([]string, error)
	Append(ctx context.Context, userID string, category Category, items []string, limit int) error
}

// HistoryTTL — срок, после которого история считается пустой.
const HistoryTTL = 24 * time.Hour
