package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/HysterChat/pinco-clone/internal/domain"
	"github.com/HysterChat/pinco-clone/internal/infra/metrics"
)

const verifiedTTL = 7 * 24 * time.Hour

// Service оформляет подписки и управляет купонами.
type Service struct {
	accounts domain.AccountRepo
	profiles domain.ProfileRepo
	coupons  domain.CouponRepo
	orders   domain.OrderRepo
	gateway  domain.PaymentGateway
	cache    domain.Cache
	log      zerolog.Logger
	now      func() time.Time
}

// NewService создаёт сервис подписок.
func NewService(accounts domain.AccountRepo, profiles domain.ProfileRepo, coupons domain.CouponRepo, orders domain.OrderRepo,
	gateway domain.PaymentGateway, cache domain.Cache, logger zerolog.Logger) *Service {
	return &Service{
		accounts: accounts,
		profiles: profiles,
		coupons:  coupons,
		orders:   orders,
		gateway:  gateway,
		cache:    cache,
		log:      logger,
		now:      time.Now,
	}
}

// SubscriptionStatus — состояние подписки и лимитов пользователя.
type SubscriptionStatus struct {
	IsPremium               bool       `json:"is_premium"`
	SubscriptionStatus      string     `json:"subscription_status"`
	SubscriptionEndDate     *time.Time `json:"subscription_end_date"`
	InterviewsTaken         int        `json:"interviews_taken"`
	CompletedInterviews     int        `json:"completed_interviews"`
	CanTakeInterview        bool       `json:"can_take_interview"`
	CanAccessVersant        bool       `json:"can_access_versant"`
	RemainingFreeInterviews *int       `json:"remaining_free_interviews"`
	Plan                    string     `json:"plan"`
}

// Plans возвращает тарифы.
func (s *Service) Plans() map[string]domain.SubscriptionPlan {
	return domain.Plans()
}

// Status вычисляет состояние подписки.
func (s *Service) Status(ctx context.Context, userID string) (SubscriptionStatus, error) {
	acc, err := s.accounts.GetAccount(ctx, userID)
	if err != nil {
		return SubscriptionStatus{}, fmt.Errorf("получение учётной записи: %w", err)
	}
	profile, err := s.profiles.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return SubscriptionStatus{}, fmt.Errorf("получение анкеты: %w", err)
	}
	ent := domain.EvaluateEntitlement(acc, s.now())
	status := acc.SubscriptionStatus
	if status == "" {
		status = domain.SubscriptionFree
	}
	return SubscriptionStatus{
		IsPremium:               ent.IsPremium,
		SubscriptionStatus:      status,
		SubscriptionEndDate:     acc.SubscriptionEnd,
		InterviewsTaken:         acc.InterviewsTaken,
		CompletedInterviews:     profile.CompletedInterviews,
		CanTakeInterview:        ent.CanGenerate,
		CanAccessVersant:        ent.CanAccessPremiumContent,
		RemainingFreeInterviews: ent.RemainingFree,
		Plan:                    ent.Plan(),
	}, nil
}

// Checkout — заказ, который клиент оплачивает через виджет провайдера.
type Checkout struct {
	OrderID          string                  `json:"order_id"`
	Amount           int64                   `json:"amount"`
	Currency         string                  `json:"currency"`
	KeyID            string                  `json:"key_id"`
	Plan             domain.SubscriptionPlan `json:"plan"`
	CouponApplied    *string                 `json:"coupon_applied"`
	DiscountedAmount int64                   `json:"discounted_amount"`
}

// CreateSubscription создаёт заказ на премиум-подписку с учётом купона.
func (s *Service) CreateSubscription(ctx context.Context, userID, couponCode string) (Checkout, error) {
	acc, err := s.accounts.GetAccount(ctx, userID)
	if err != nil {
		return Checkout{}, fmt.Errorf("получение учётной записи: %w", err)
	}
	now := s.now()
	if domain.EvaluateEntitlement(acc, now).IsPremium {
		return Checkout{}, domain.ErrAlreadySubscribed
	}

	plan := domain.PlanByID(domain.PlanPremium)
	amount := plan.Amount
	var applied *string
	if code := domain.NormalizeCouponCode(couponCode); code != "" {
		coupon, err := s.coupons.GetCoupon(ctx, code)
		if errors.Is(err, domain.ErrNotFound) {
			return Checkout{}, &domain.CouponError{Reason: "Invalid or inactive coupon"}
		}
		if err != nil {
			return Checkout{}, fmt.Errorf("получение купона: %w", err)
		}
		if amount, err = domain.ApplyCoupon(coupon, amount, now); err != nil {
			return Checkout{}, err
		}
		applied = &code
	}

	notes := map[string]string{"user_id": userID, "plan": domain.PlanPremium, "coupon": ""}
	if applied != nil {
		notes["coupon"] = *applied
	}
	order, err := s.gateway.CreateOrder(ctx, domain.GatewayOrderRequest{
		Amount:  domain.Money{Amount: amount, Currency: plan.Currency},
		Receipt: "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24],
		Notes:   notes,
	})
	if err != nil {
		return Checkout{}, fmt.Errorf("создание заказа у провайдера: %w", err)
	}
	currency := order.Currency
	if currency == "" {
		currency = plan.Currency
	}
	stored := domain.PaymentOrder{
		OrderID:   order.ID,
		UserID:    userID,
		Amount:    domain.Money{Amount: order.Amount, Currency: currency},
		Status:    domain.OrderStatusCreated,
		CreatedAt: now.UTC(),
	}
	if applied != nil {
		stored.CouponCode = *applied
	}
	if _, err := s.orders.CreateOrder(ctx, stored); err != nil {
		return Checkout{}, fmt.Errorf("сохранение заказа: %w", err)
	}
	s.log.Info().Str("user_id", userID).Str("order_id", order.ID).Int64("amount", order.Amount).Msg("создан заказ на подписку")

	return Checkout{
		OrderID:          order.ID,
		Amount:           order.Amount,
		Currency:         currency,
		KeyID:            s.gateway.KeyID(),
		Plan:             plan,
		CouponApplied:    applied,
		DiscountedAmount: amount,
	}, nil
}

// PaymentVerification — данные, которые клиент получает от виджета после оплаты.
type PaymentVerification struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type VerificationResult struct {
	Status              string     `json:"status"`
	Message             string     `json:"message"`
	SubscriptionEndDate *time.Time `json:"subscription_end_date"`
}

// VerifyPayment проверяет подпись и активирует подписку. Повторное подтверждение
// того же платежа подписку не продлевает.
func (s *Service) VerifyPayment(ctx context.Context, userID string, v PaymentVerification) (VerificationResult, error) {
	if v.OrderID == "" || v.PaymentID == "" || v.Signature == "" {
		return VerificationResult{}, fmt.Errorf("%w: order id, payment id and signature are required", domain.ErrInvalidInput)
	}
	if err := s.gateway.VerifyPaymentSignature(v.OrderID, v.PaymentID, v.Signature); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Str("order_id", v.OrderID).Msg("подпись платежа не прошла проверку")
		return VerificationResult{}, err
	}
	order, err := s.orders.GetOrder(ctx, v.OrderID)
	if err != nil {
		return VerificationResult{}, fmt.Errorf("получение заказа: %w", err)
	}
	if order.UserID != userID {
		return VerificationResult{}, fmt.Errorf("заказ %s: %w", v.OrderID, domain.ErrNotFound)
	}

	var activated domain.Account
	if order.Status != domain.OrderStatusPaid {
		err = s.cache.Once(ctx, "payment:verified:"+v.PaymentID, verifiedTTL, func() error {
			paidAt := s.now().UTC()
			acc, err := s.accounts.ActivateSubscription(ctx, userID, v.OrderID, v.PaymentID, paidAt, domain.SubscriptionPeriodEnd(paidAt))
			if err != nil {
				return fmt.Errorf("активация подписки: %w", err)
			}
			if err := s.orders.MarkOrderPaid(ctx, v.OrderID, v.PaymentID, paidAt); err != nil {
				return fmt.Errorf("отметка оплаты заказа: %w", err)
			}
			activated = acc
			metrics.IncSubscriptionActivated()
			s.log.Info().Str("user_id", userID).Str("payment_id", v.PaymentID).Msg("подписка активирована")
			return nil
		})
		if err != nil {
			return VerificationResult{}, err
		}
	}
	if activated.UserID == "" {
		if activated, err = s.accounts.GetAccount(ctx, userID); err != nil {
			return VerificationResult{}, fmt.Errorf("получение учётной записи: %w", err)
		}
	}
	return VerificationResult{
		Status:              "success",
		Message:             "Payment verified and subscription activated",
		SubscriptionEndDate: activated.SubscriptionEnd,
	}, nil
}

// NewCoupon содержит данные для создания купона.
type NewCoupon struct {
	Code            string     `json:"code"`
	DiscountAmount  *int64     `json:"discount_amount"`
	DiscountPercent *float64   `json:"discount_percent"`
	ValidFrom       *time.Time `json:"valid_from"`
	ValidTo         *time.Time `json:"valid_to"`
	Active          *bool      `json:"active"`
}

func requireAdmin(actor domain.Account) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: Admin privileges required", domain.ErrForbidden)
	}
	return nil
}

func validateCoupon(c domain.Coupon) error {
	if c.Code == "" {
		return fmt.Errorf("%w: coupon code is required", domain.ErrInvalidInput)
	}
	if c.DiscountAmount < 0 {
		return fmt.Errorf("%w: discount_amount must not be negative", domain.ErrInvalidInput)
	}
	if c.DiscountPercent != nil && (*c.DiscountPercent < 0 || *c.DiscountPercent > 100) {
		return fmt.Errorf("%w: discount_percent must be between 0 and 100", domain.ErrInvalidInput)
	}
	return nil
}

// CreateCoupon создаёт купон. Только для администраторов.
func (s *Service) CreateCoupon(ctx context.Context, actor domain.Account, in NewCoupon) (domain.Coupon, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.Coupon{}, err
	}
	now := s.now().UTC()
	c := domain.Coupon{
		Code:            domain.NormalizeCouponCode(in.Code),
		DiscountPercent: in.DiscountPercent,
		ValidFrom:       in.ValidFrom,
		ValidTo:         in.ValidTo,
		Active:          in.Active == nil || *in.Active,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.DiscountAmount != nil {
		c.DiscountAmount = *in.DiscountAmount
	}
	if err := validateCoupon(c); err != nil {
		return domain.Coupon{}, err
	}
	return s.coupons.CreateCoupon(ctx, c)
}

// UpdateCoupon применяет изменения к купону. Только для администраторов.
func (s *Service) UpdateCoupon(ctx context.Context, actor domain.Account, code string, patch domain.CouponPatch) (domain.Coupon, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.Coupon{}, err
	}
	c, err := s.coupons.GetCoupon(ctx, domain.NormalizeCouponCode(code))
	if err != nil {
		return domain.Coupon{}, err
	}
	c = patch.Apply(c)
	c.UpdatedAt = s.now().UTC()
	if err := validateCoupon(c); err != nil {
		return domain.Coupon{}, err
	}
	return s.coupons.UpdateCoupon(ctx, c)
}

// DeleteCoupon удаляет купон. Только для администраторов.
func (s *Service) DeleteCoupon(ctx context.Context, actor domain.Account, code string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.coupons.DeleteCoupon(ctx, domain.NormalizeCouponCode(code))
}

// ListCoupons возвращает активные купоны.
func (s *Service) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	list, err := s.coupons.ListActiveCoupons(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Coupon{}
	}
	return list, nil
}

// GetCoupon возвращает купон по коду.
func (s *Service) GetCoupon(ctx context.Context, code string) (domain.Coupon, error) {
	return s.coupons.GetCoupon(ctx, domain.NormalizeCouponCode(code))
}

// ExpireSubscriptions переводит истёкшие подписки в expired.
func (s *Service) ExpireSubscriptions(ctx context.Context) (int64, error) {
	n, err := s.accounts.ExpireSubscriptions(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("истечение подписок: %w", err)
	}
	if n > 0 {
		s.log.Info().Int64("expired", n).Msg("подписки переведены в expired")
	}
	return n, nil
}
