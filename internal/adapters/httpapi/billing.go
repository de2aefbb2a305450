package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/HysterChat/pinco-clone/internal/domain"
	billinguc "github.com/HysterChat/pinco-clone/internal/usecase/billing"
)

type plansResponse struct {
	Plans map[string]domain.SubscriptionPlan `json:"plans"`
}

type createSubscriptionRequest struct {
	CouponCode string `json:"coupon_code"`
}

type couponResponse struct {
	Status string        `json:"status"`
	Data   domain.Coupon `json:"data"`
}

type couponListResponse struct {
	Status string          `json:"status"`
	Data   []domain.Coupon `json:"data"`
}

func (s *Server) handleSubscriptionPlans(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, plansResponse{Plans: s.billing.Plans()})
}

func (s *Server) handleSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.billing.Status(r.Context(), s.account(r).UserID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleCreateSubscription принимает купон из тела или из параметра coupon_code.
// Пустое тело допустимо.
func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if req.CouponCode == "" {
		req.CouponCode = r.URL.Query().Get("coupon_code")
	}
	checkout, err := s.billing.CreateSubscription(r.Context(), s.account(r).UserID, req.CouponCode)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, checkout)
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req billinguc.PaymentVerification
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.billing.VerifyPayment(r.Context(), s.account(r).UserID, req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCreateCoupon(w http.ResponseWriter, r *http.Request) {
	var in billinguc.NewCoupon
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := s.billing.CreateCoupon(r.Context(), s.account(r), in)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, couponResponse{Status: "success", Data: c})
}

func (s *Server) handleUpdateCoupon(w http.ResponseWriter, r *http.Request) {
	var patch domain.CouponPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	c, err := s.billing.UpdateCoupon(r.Context(), s.account(r), chi.URLParam(r, "code"), patch)
	if err != nil {
		s.writeCouponError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, couponResponse{Status: "success", Data: c})
}

func (s *Server) handleDeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := s.billing.DeleteCoupon(r.Context(), s.account(r), chi.URLParam(r, "code")); err != nil {
		s.writeCouponError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "success", Message: "Coupon deleted"})
}

func (s *Server) handleListCoupons(w http.ResponseWriter, r *http.Request) {
	items, err := s.billing.ListCoupons(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, couponListResponse{Status: "success", Data: items})
}

func (s *Server) handleGetCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := s.billing.GetCoupon(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.writeCouponError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, couponResponse{Status: "success", Data: c})
}

func (s *Server) writeCouponError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "Coupon not found")
		return
	}
	s.writeDomainError(w, r, err)
}
