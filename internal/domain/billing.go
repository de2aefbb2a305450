package domain

import (
	"strings"
	"time"
)

const (
	PlanFree    = "free"
	PlanPremium = "premium"

	// CurrencyINR — валюта тарифов, суммы указываются в пайсах.
	CurrencyINR = "INR"
)

const (
	OrderStatusCreated = "created"
	OrderStatusPaid    = "paid"
)

// Money описывает сумму в минимальных единицах валюты.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// SubscriptionPlan описывает тариф.
type SubscriptionPlan struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Amount      int64    `json:"amount"`
	Currency    string   `json:"currency"`
	Interval    string   `json:"interval,omitempty"`
	Features    []string `json:"features"`
}

var plans = map[string]SubscriptionPlan{
	PlanFree: {
		ID:          "plan_free",
		Name:        "Free Plan",
		Description: "Limited access with 1 free interview",
		Amount:      0,
		Currency:    CurrencyINR,
		Features: []string{
			"1 free interview",
			"Basic feedback",
			"No access to Versant rounds",
			"Email support",
		},
	},
	PlanPremium: {
		ID:          "plan_premium",
		Name:        "Premium Plan",
		Description: "Unlimited interviews and Versant rounds access for 1 year",
		Amount:      400000,
		Currency:    CurrencyINR,
		Interval:    "year",
		Features: []string{
			"Unlimited interviews",
			"Full access to Versant rounds",
			"Detailed feedback and analytics",
			"Priority support",
		},
	},
}

// PlanByID возвращает тариф по коду. Неизвестный код даёт бесплатный тариф.
func PlanByID(id string) SubscriptionPlan {
	if plan, ok := plans[strings.ToLower(id)]; ok {
		return plan
	}
	return plans[PlanFree]
}

// Plans возвращает все тарифы.
func Plans() map[string]SubscriptionPlan {
	out := make(map[string]SubscriptionPlan, len(plans))
	for k, v := range plans {
		out[k] = v
	}
	return out
}

// SubscriptionPeriodEnd возвращает дату окончания годовой подписки.
func SubscriptionPeriodEnd(from time.Time) time.Time {
	return from.AddDate(1, 0, 0)
}

// Coupon описывает скидочный купон.
type Coupon struct {
	Code            string     `json:"code"`
	DiscountAmount  int64      `json:"discount_amount"`
	DiscountPercent *float64   `json:"discount_percent"`
	ValidFrom       *time.Time `json:"valid_from"`
	ValidTo         *time.Time `json:"valid_to"`
	Active          bool       `json:"active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CouponPatch содержит изменяемые поля купона.
type CouponPatch struct {
	DiscountAmount  *int64     `json:"discount_amount"`
	DiscountPercent *float64   `json:"discount_percent"`
	ValidFrom       *time.Time `json:"valid_from"`
	ValidTo         *time.Time `json:"valid_to"`
	Active          *bool      `json:"active"`
}

// Apply переносит заданные поля в купон.
func (p CouponPatch) Apply(c Coupon) Coupon {
	if p.DiscountAmount != nil {
		c.DiscountAmount = *p.DiscountAmount
	}
	if p.DiscountPercent != nil {
		c.DiscountPercent = p.DiscountPercent
	}
	if p.ValidFrom != nil {
		c.ValidFrom = p.ValidFrom
	}
	if p.ValidTo != nil {
		c.ValidTo = p.ValidTo
	}
	if p.Active != nil {
		c.Active = *p.Active
	}
	return c
}

// NormalizeCouponCode приводит код купона к каноническому виду.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ApplyCoupon проверяет купон и возвращает итоговую сумму.
func ApplyCoupon(c Coupon, amount int64, now time.Time) (int64, error) {
	if !c.Active {
		return 0, &CouponError{Reason: "Invalid or inactive coupon"}
	}
	if c.ValidFrom != nil && c.ValidFrom.After(now) {
		return 0, &CouponError{Reason: "Coupon not yet active"}
	}
	if c.ValidTo != nil && c.ValidTo.Before(now) {
		return 0, &CouponError{Reason: "Coupon expired"}
	}
	if c.DiscountPercent != nil && *c.DiscountPercent > 0 {
		return int64(float64(amount) * (1 - *c.DiscountPercent/100)), nil
	}
	discounted := amount - c.DiscountAmount
	if discounted < 0 {
		discounted = 0
	}
	return discounted, nil
}

// PaymentOrder — заказ у платёжного провайдера.
type PaymentOrder struct {
	OrderID    string     `json:"order_id"`
	UserID     string     `json:"user_id"`
	Amount     Money      `json:"amount"`
	CouponCode string     `json:"coupon_code,omitempty"`
	Status     string     `json:"status"`
	PaymentID  string     `json:"payment_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
}

// GatewayOrderRequest описывает создание заказа у провайдера.
type GatewayOrderRequest struct {
	Amount  Money
	Receipt string
	Notes   map[string]string
}

type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
	Status   string
}
