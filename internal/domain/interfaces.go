package domain

import (
	"context"
	"time"
)

// AccountRepo управляет учётными записями и подпиской.
type AccountRepo interface {
	EnsureAccount(ctx context.Context, id AccountIdentity) (Account, error)
	GetAccount(ctx context.Context, userID string) (Account, error)
	// ClaimFreeInterview атомарно занимает бесплатное интервью; claimed=false, если лимит исчерпан.
	ClaimFreeInterview(ctx context.Context, userID string, limit int) (taken int, claimed bool, err error)
	ActivateSubscription(ctx context.Context, userID, orderID, paymentID string, paidAt, endsAt time.Time) (Account, error)
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)
}

// ProfileRepo управляет анкетами.
type ProfileRepo interface {
	GetOrCreateProfile(ctx context.Context, userID string) (Profile, error)
	// SaveProfile сохраняет редактируемые поля; статистику интервью не трогает.
	SaveProfile(ctx context.Context, p Profile) (Profile, error)
}

// InterviewRepo управляет конфигурациями интервью.
type InterviewRepo interface {
	CreateInterview(ctx context.Context, iv Interview) (Interview, error)
	GetInterview(ctx context.Context, userID, id string) (Interview, error)
	UpdateInterview(ctx context.Context, iv Interview) (Interview, error)
	DeleteInterview(ctx context.Context, userID, id string) error
	SearchInterviews(ctx context.Context, f InterviewFilter) ([]Interview, int, error)
}

// FeedbackRepo хранит результаты оценки интервью.
type FeedbackRepo interface {
	// CreateFeedback сохраняет оценку и учитывает outcome в статистике анкеты атомарно.
	CreateFeedback(ctx context.Context, rec FeedbackRecord, outcome InterviewOutcome) (FeedbackRecord, error)
	GetFeedback(ctx context.Context, userID, id string) (FeedbackRecord, error)
	GetFeedbackByInterview(ctx context.Context, userID, interviewID string) (FeedbackRecord, error)
	ListFeedback(ctx context.Context, userID string) ([]FeedbackRecord, error)
	UpdateFeedback(ctx context.Context, rec FeedbackRecord) (FeedbackRecord, error)
	FeedbackScores(ctx context.Context, userID string) ([]ScorePoint, error)
}

// CouponRepo управляет купонами.
type CouponRepo interface {
	CreateCoupon(ctx context.Context, c Coupon) (Coupon, error)
	GetCoupon(ctx context.Context, code string) (Coupon, error)
	ListActiveCoupons(ctx context.Context) ([]Coupon, error)
	UpdateCoupon(ctx context.Context, c Coupon) (Coupon, error)
	DeleteCoupon(ctx context.Context, code string) error
}

// OrderRepo хранит заказы на оплату подписки.
type OrderRepo interface {
	CreateOrder(ctx context.Context, o PaymentOrder) (PaymentOrder, error)
	GetOrder(ctx context.Context, orderID string) (PaymentOrder, error)
	MarkOrderPaid(ctx context.Context, orderID, paymentID string, paidAt time.Time) error
}

// PaymentGateway — внешний платёжный провайдер.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (GatewayOrder, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) error
	KeyID() string
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	Once(ctx context.Context, key string, ttl time.Duration, fn func() error) error
}
