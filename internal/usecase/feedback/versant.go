package feedback

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/HysterChat/pinco-clone/internal/domain"
	"github.com/HysterChat/pinco-clone/internal/infra/metrics"
)

const versantMaxTokens = 500

var versantScoreRe = regexp.MustCompile(`TOTAL SCORE:\s*(\d+)\s*/\s*80`)

// VersantFallbackAdvice возвращается, когда модель недоступна.
const VersantFallbackAdvice = `TOTAL SCORE: 0/80

AREAS TO IMPROVE:
1. Automatic scoring is temporarily unavailable - your responses were recorded but could not be evaluated.

PRACTICE SUGGESTIONS:
1. Read a short news article aloud every day and record yourself.
2. Repeat sentences after a native speaker, matching rhythm and stress.
3. Practice answering questions in full sentences within 15 seconds.`

// VersantPrompt собирает промпт оценки всех предложений раунда.
func VersantPrompt(sentences []string) string {
	return fmt.Sprintf(`You are an expert English communication coach. Analyze these sentences and provide scoring and feedback:

%s

Format your response EXACTLY like this:

TOTAL SCORE: [X]/80
(Break down the score into these components)
- Pronunciation & Clarity: [X]/20
- Grammar & Structure: [X]/20
- Vocabulary Usage: [X]/20
- Overall Fluency: [X]/20

AREAS TO IMPROVE:
1. [area name] - [brief explanation why]
2. [area name] - [brief explanation why]

PRACTICE SUGGESTIONS:
1. [specific exercise or practice activity]
2. [specific exercise or practice activity]

Do not include any other analysis or explanations.`, strings.Join(sentences, "\n"))
}

// VersantScore извлекает итоговый балл из 80. Без метки возвращает 0.
func VersantScore(text string) int {
	m := versantScoreRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return min(n, 80)
}

// Versant оценивает раунд Versant одним вызовом модели.
func (s *Service) Versant(ctx context.Context, req domain.VersantRequest) (domain.VersantResult, error) {
	var sentences []string
	for _, sn := range req.Sentences {
		if sn = strings.TrimSpace(sn); sn != "" {
			sentences = append(sentences, sn)
		}
	}
	if len(sentences) == 0 {
		return domain.VersantResult{}, fmt.Errorf("%w: sentences are required", domain.ErrInvalidInput)
	}
	text, err := s.gen.Generate(ctx, VersantPrompt(sentences), domain.GenerateOptions{
		MaxTokens: versantMaxTokens,
		MinChars:  domain.MultiItemMinChars,
	})
	if err != nil {
		metrics.IncAnalysisFallback("versant")
		s.log.Warn().Err(err).Msg("оценка versant недоступна, возвращаем заглушку")
		return domain.VersantResult{Status: "success", TotalScore: 0, AreasForImprovement: VersantFallbackAdvice}, nil
	}
	return domain.VersantResult{Status: "success", TotalScore: VersantScore(text), AreasForImprovement: text}, nil
}
