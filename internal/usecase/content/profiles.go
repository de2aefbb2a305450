package content

import (
	"github.com/HysterChat/pinco-clone/internal/domain"
)

type shape int

const (
	shapeLines shape = iota
	shapeOpenQuestion
	shapeStory
	shapeSentenceBuild
)

// Profile описывает параметры генерации одной категории.
type Profile struct {
	Category    domain.Category
	Count       int
	MinWords    int
	MaxWords    int
	MaxTokens   int
	HistoryCap  int
	Level       string
	Temperature float64
	shape       shape
}

var profiles = map[domain.Category]Profile{
	domain.CategoryReadingSentence: {
		Category: domain.CategoryReadingSentence, Count: 8, MinWords: 10, MaxWords: 18,
		MaxTokens: 500, HistoryCap: 100, Level: "C1-C2", shape: shapeLines,
	},
	domain.CategoryRepeatSentence: {
		Category: domain.CategoryRepeatSentence, Count: 16, MinWords: 15, MaxWords: 25,
		MaxTokens: 1500, HistoryCap: 160, Level: "C1-C2", shape: shapeLines,
	},
	domain.CategoryShortAnswer: {
		Category: domain.CategoryShortAnswer, Count: 24, MinWords: 8, MaxWords: 14,
		MaxTokens: 1000, HistoryCap: 300, Level: "B2-C1", shape: shapeLines,
	},
	domain.CategoryStory: {
		Category: domain.CategoryStory, Count: 3,
		MaxTokens: 1000, HistoryCap: 30, shape: shapeStory,
	},
	domain.CategorySentenceBuild: {
		Category: domain.CategorySentenceBuild, Count: 8,
		MaxTokens: 800, HistoryCap: 80, shape: shapeSentenceBuild,
	},
	domain.CategoryOpenQuestion: {
		Category: domain.CategoryOpenQuestion, Count: 2,
		MaxTokens: 200, HistoryCap: 20, Temperature: 0.7, shape: shapeOpenQuestion,
	},
}

// ProfileFor возвращает профиль категории.
func ProfileFor(c domain.Category) (Profile, bool) {
	p, ok := profiles[c]
	return p, ok
}

func (p Profile) bounded() bool {
	return p.MinWords > 0 && p.MaxWords > 0
}
