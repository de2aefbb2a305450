package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/HysterChat/pinco-clone/internal/domain"
	infrahttp "github.com/HysterChat/pinco-clone/internal/infra/http"
	accountuc "github.com/HysterChat/pinco-clone/internal/usecase/account"
	billinguc "github.com/HysterChat/pinco-clone/internal/usecase/billing"
	contentuc "github.com/HysterChat/pinco-clone/internal/usecase/content"
	feedbackuc "github.com/HysterChat/pinco-clone/internal/usecase/feedback"
	interviewuc "github.com/HysterChat/pinco-clone/internal/usecase/interview"
)

const maxBodyBytes = 1 << 20

// Server обслуживает HTTP API под префиксом /api.
type Server struct {
	accounts   *accountuc.Service
	content    *contentuc.Service
	feedback   *feedbackuc.Service
	interviews *interviewuc.Service
	billing    *billinguc.Service

	jwtSecret []byte
	ensurer   infrahttp.AccountEnsurer
	limiter   *infrahttp.UserRateLimiter

	log zerolog.Logger
	now func() time.Time
}

// Option настраивает Server.
type Option func(*Server)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithAuth включает проверку токенов. ensurer создаёт учётную запись при первом запросе.
func WithAuth(secret []byte, ensurer infrahttp.AccountEnsurer) Option {
	return func(s *Server) {
		s.jwtSecret = secret
		s.ensurer = ensurer
	}
}

// WithRateLimiter ограничивает маршруты, которые вызывают модель.
func WithRateLimiter(l *infrahttp.UserRateLimiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

func WithAccounts(svc *accountuc.Service) Option {
	return func(s *Server) {
		s.accounts = svc
	}
}

func WithContent(svc *contentuc.Service) Option {
	return func(s *Server) {
		s.content = svc
	}
}

func WithFeedback(svc *feedbackuc.Service) Option {
	return func(s *Server) {
		s.feedback = svc
	}
}

func WithInterviews(svc *interviewuc.Service) Option {
	return func(s *Server) {
		s.interviews = svc
	}
}

func WithBilling(svc *billinguc.Service) Option {
	return func(s *Server) {
		s.billing = svc
	}
}

// NewServer создаёт API.
func NewServer(opts ...Option) *Server {
	srv := &Server{log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Router возвращает обработчик, который монтируется на /api.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	if s.interviews != nil {
		r.Get("/form-options", s.handleFormOptions)
	}
	if s.billing != nil {
		r.Get("/payments/subscription-plans", s.handleSubscriptionPlans)
		r.Get("/coupons", s.handleListCoupons)
		r.Get("/coupons/{code}", s.handleGetCoupon)
	}

	r.Group(func(r chi.Router) {
		r.Use(infrahttp.JWTAuthMiddleware(s.jwtSecret, s.ensurer, s.log))

		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(s.limiter.Middleware)
			}
			if s.content != nil {
				r.Get("/reading-test", s.handleContent(domain.CategoryReadingSentence))
				r.Get("/repeat-sentence", s.handleContent(domain.CategoryRepeatSentence))
				r.Get("/short-answer", s.handleContent(domain.CategoryShortAnswer))
				r.Get("/story-teller", s.handleContent(domain.CategoryStory))
				r.Get("/sentence-build", s.handleContent(domain.CategorySentenceBuild))
				r.Get("/open-questions", s.handleContent(domain.CategoryOpenQuestion))
			}
			if s.feedback != nil {
				r.Post("/analyze-interview", s.handleAnalyzeInterview)
				r.Post("/versant-feedback", s.handleVersantFeedback)
			}
			if s.interviews != nil {
				r.Post("/generate-question", s.handleGenerateQuestion)
			}
		})

		if s.feedback != nil {
			r.Post("/interview-feedback", s.handleSaveFeedback)
			r.Get("/interview-feedback", s.handleListFeedback)
			r.Get("/interview-feedback/stats", s.handleFeedbackStats)
			r.Get("/interview-feedback/{id}", s.handleGetFeedback)
			r.Put("/interview-feedback/{id}", s.handleCorrectFeedback)
			r.Get("/interviews/{id}/feedback", s.handleInterviewFeedback)
		}
		if s.interviews != nil {
			r.Post("/interview-forms", s.handleCreateInterview)
			r.Get("/interview-forms", s.handleListInterviews)
			r.Get("/interview-forms/search", s.handleSearchInterviews)
			r.Get("/interview-forms/{id}", s.handleGetInterview)
			r.Put("/interview-forms/{id}", s.handleUpdateInterview)
			r.Delete("/interview-forms/{id}", s.handleDeleteInterview)
		}
		if s.accounts != nil {
			r.Get("/users/me", s.handleMe)
			r.Get("/profile/me", s.handleGetProfile)
			r.Put("/profile/me", s.handleUpdateProfile)
			r.Get("/profile/scores", s.handleScores)
		}
		if s.billing != nil {
			r.Get("/payments/subscription-status", s.handleSubscriptionStatus)
			r.Post("/payments/create-subscription", s.handleCreateSubscription)
			r.Post("/payments/verify-payment", s.handleVerifyPayment)
			r.Post("/coupons", s.handleCreateCoupon)
			r.Put("/coupons/{code}", s.handleUpdateCoupon)
			r.Delete("/coupons/{code}", s.handleDeleteCoupon)
		}
	})

	return r
}

func (s *Server) account(r *http.Request) domain.Account {
	acc, _ := infrahttp.AccountFromContext(r.Context())
	return acc
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return false
	}
	return true
}

// writeDomainError переводит доменную ошибку в HTTP-ответ.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		denied *domain.DeniedError
		coupon *domain.CouponError
	)
	switch {
	case errors.As(err, &denied):
		writeError(w, http.StatusForbidden, "entitlement_denied", denied.Reason)
	case errors.As(err, &coupon):
		writeError(w, http.StatusBadRequest, "invalid_coupon", coupon.Reason)
	case errors.Is(err, domain.ErrAlreadySubscribed):
		writeError(w, http.StatusBadRequest, "already_subscribed", "User already has an active subscription")
	case errors.Is(err, domain.ErrInvalidSignature):
		writeError(w, http.StatusBadRequest, "invalid_signature", "Invalid payment signature")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "Admin privileges required")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", "already exists")
	default:
		s.log.Error().Err(err).
			Str("path", r.URL.Path).
			Str("request_id", infrahttp.RequestID(r)).
			Msg("ошибка обработки запроса")
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}
