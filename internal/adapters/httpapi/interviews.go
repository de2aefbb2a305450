package httpapi

import (
	"net/http"
	"strconv"

	chi "github.com/go-chi/chi/v5"

	"github.com/HysterChat/pinco-clone/internal/domain"
)

type interviewResponse struct {
	Status string           `json:"status"`
	Data   domain.Interview `json:"data"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleGenerateQuestion(w http.ResponseWriter, r *http.Request) {
	var form domain.InterviewForm
	if !decodeJSON(w, r, &form) {
		return
	}
	res, err := s.interviews.GenerateQuestions(r.Context(), s.account(r).UserID, form)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleFormOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.interviews.FormOptions())
}

func (s *Server) handleCreateInterview(w http.ResponseWriter, r *http.Request) {
	var form domain.InterviewForm
	if !decodeJSON(w, r, &form) {
		return
	}
	iv, err := s.interviews.Create(r.Context(), s.account(r).UserID, form)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, interviewResponse{Status: "success", Data: iv})
}

func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	page, err := s.interviews.List(r.Context(), s.account(r).UserID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleSearchInterviews фильтрует интервью по параметрам запроса.
// Некорректные page и per_page заменяются значениями по умолчанию.
func (s *Server) handleSearchInterviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	res, err := s.interviews.Search(r.Context(), domain.InterviewFilter{
		UserID:          s.account(r).UserID,
		JobCategory:     q.Get("job_category"),
		SubJobCategory:  q.Get("sub_job_category"),
		DifficultyLevel: q.Get("difficulty_level"),
		Duration:        q.Get("duration"),
		CompanyName:     q.Get("company_name"),
		Page:            page,
		PerPage:         perPage,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	iv, err := s.interviews.Get(r.Context(), s.account(r).UserID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, interviewResponse{Status: "success", Data: iv})
}

func (s *Server) handleUpdateInterview(w http.ResponseWriter, r *http.Request) {
	var form domain.InterviewForm
	if !decodeJSON(w, r, &form) {
		return
	}
	iv, err := s.interviews.Update(r.Context(), s.account(r).UserID, chi.URLParam(r, "id"), form)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, interviewResponse{Status: "success", Data: iv})
}

func (s *Server) handleDeleteInterview(w http.ResponseWriter, r *http.Request) {
	if err := s.interviews.Delete(r.Context(), s.account(r).UserID, chi.URLParam(r, "id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "success", Message: "Interview deleted"})
}
