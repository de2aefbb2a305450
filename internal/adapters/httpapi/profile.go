package httpapi

import (
	"net/http"

	"github.com/HysterChat/pinco-clone/internal/domain"
)

type scoresResponse struct {
	Scores []int `json:"scores"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	acc, err := s.accounts.Me(r.Context(), s.account(r).UserID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.accounts.Profile(r.Context(), s.account(r).UserID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd domain.ProfileUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}
	p, err := s.accounts.UpdateProfile(r.Context(), s.account(r).UserID, upd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.accounts.Scores(r.Context(), s.account(r).UserID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scoresResponse{Scores: scores})
}
