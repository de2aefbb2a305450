package httpapi

import (
	"net/http"

	"github.com/HysterChat/pinco-clone/internal/domain"
	"github.com/HysterChat/pinco-clone/internal/infra/metrics"
	contentuc "github.com/HysterChat/pinco-clone/internal/usecase/content"
)

type sentencesResponse struct {
	Sentences       []string `json:"sentences"`
	DifficultyLevel string   `json:"difficulty_level,omitempty"`
}

type questionsResponse struct {
	Questions       []string `json:"questions"`
	DifficultyLevel string   `json:"difficulty_level,omitempty"`
}

type storiesResponse struct {
	Stories []string `json:"stories"`
}

type sentenceBuildItem struct {
	Phrases []string `json:"phrases"`
	Correct string   `json:"correct"`
}

type sentenceBuildResponse struct {
	Questions []sentenceBuildItem `json:"questions"`
}

// handleContent отдаёт раунд Versant указанной категории. Доступно только премиуму.
func (s *Server) handleContent(category domain.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acc := s.account(r)
		if err := domain.EvaluateEntitlement(acc, s.now()).RequirePremiumContent(); err != nil {
			metrics.IncEntitlementDenied("premium_content")
			s.writeDomainError(w, r, err)
			return
		}

		res, err := s.content.Obtain(r.Context(), domain.GenerationRequest{
			Category:   category,
			Difficulty: r.URL.Query().Get("difficulty"),
			UserID:     acc.UserID,
		})
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		s.log.Info().
			Str("category", string(category)).
			Str("user_id", acc.UserID).
			Int("fresh", res.Fresh).
			Int("fallback", res.Fallback).
			Msg("раунд выдан")

		writeJSON(w, http.StatusOK, contentResponse(category, res))
	}
}

func contentResponse(category domain.Category, res contentuc.Result) any {
	switch category {
	case domain.CategoryReadingSentence, domain.CategoryRepeatSentence:
		return sentencesResponse{Sentences: res.Texts(), DifficultyLevel: res.Level}
	case domain.CategoryShortAnswer:
		return questionsResponse{Questions: res.Texts(), DifficultyLevel: res.Level}
	case domain.CategoryStory:
		return storiesResponse{Stories: res.Texts()}
	case domain.CategorySentenceBuild:
		items := make([]sentenceBuildItem, len(res.Items))
		for i, it := range res.Items {
			items[i] = sentenceBuildItem{Phrases: it.Phrases, Correct: it.Text}
		}
		return sentenceBuildResponse{Questions: items}
	default:
		return questionsResponse{Questions: res.Texts()}
	}
}
