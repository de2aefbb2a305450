package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/HysterChat/pinco-clone/internal/domain"
	feedbackuc "github.com/HysterChat/pinco-clone/internal/usecase/feedback"
)

type feedbackResponse struct {
	Status string                `json:"status"`
	Data   domain.FeedbackRecord `json:"data"`
	Stats  *domain.FeedbackStats `json:"stats,omitempty"`
}

type feedbackListResponse struct {
	Status string                  `json:"status"`
	Data   []domain.FeedbackRecord `json:"data"`
}

type statsResponse struct {
	Status string               `json:"status"`
	Data   domain.FeedbackStats `json:"data"`
}

func (s *Server) handleAnalyzeInterview(w http.ResponseWriter, r *http.Request) {
	var req domain.AnalysisRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.feedback.Analyze(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleVersantFeedback(w http.ResponseWriter, r *http.Request) {
	var req domain.VersantRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.feedback.Versant(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleSaveFeedback сохраняет оценку и возвращает обновлённую статистику.
func (s *Server) handleSaveFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackuc.SaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userID := s.account(r).UserID
	rec, err := s.feedback.Save(r.Context(), userID, req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	resp := feedbackResponse{Status: "success", Data: rec}
	if stats, err := s.feedback.Stats(r.Context(), userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("статистика после сохранения недоступна")
	} else {
		resp.Stats = &stats
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	items, err := s.feedback.List(r.Context(), s.account(r).UserID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.FeedbackRecord{}
	}
	writeJSON(w, http.StatusOK, feedbackListResponse{Status: "success", Data: items})
}

func (s *Server) handleFeedbackStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.feedback.Stats(r.Context(), s.account(r).UserID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Status: "success", Data: stats})
}

func (s *Server) handleGetFeedback(w http.ResponseWriter, r *http.Request) {
	rec, err := s.feedback.Get(r.Context(), s.account(r).UserID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feedbackResponse{Status: "success", Data: rec})
}

func (s *Server) handleCorrectFeedback(w http.ResponseWriter, r *http.Request) {
	var c domain.FeedbackCorrection
	if !decodeJSON(w, r, &c) {
		return
	}
	rec, err := s.feedback.Correct(r.Context(), s.account(r).UserID, chi.URLParam(r, "id"), c)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feedbackResponse{Status: "success", Data: rec})
}

func (s *Server) handleInterviewFeedback(w http.ResponseWriter, r *http.Request) {
	rec, err := s.feedback.ForInterview(r.Context(), s.account(r).UserID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feedbackResponse{Status: "success", Data: rec})
}
