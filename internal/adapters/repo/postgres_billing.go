package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/HysterChat/pinco-clone/internal/domain"
	"github.com/HysterChat/pinco-clone/internal/infra/metrics"
)

const couponColumns = `code, discount_amount, discount_percent, valid_from, valid_to, active, created_at, updated_at`

func scanCoupon(row rowScanner) (domain.Coupon, error) {
	var (
		c                  domain.Coupon
		percent            sql.NullFloat64
		validFrom, validTo sql.NullTime
	)
	if err := row.Scan(&c.Code, &c.DiscountAmount, &percent, &validFrom, &validTo, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Coupon{}, err
	}
	if percent.Valid {
		v := percent.Float64
		c.DiscountPercent = &v
	}
	if validFrom.Valid {
		ts := validFrom.Time
		c.ValidFrom = &ts
	}
	if validTo.Valid {
		ts := validTo.Time
		c.ValidTo = &ts
	}
	return c, nil
}

// CreateCoupon сохраняет купон. Повтор кода даёт ErrConflict.
func (p *Postgres) CreateCoupon(ctx context.Context, c domain.Coupon) (domain.Coupon, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	saved, err := scanCoupon(p.pool.QueryRow(ctx, `
INSERT INTO coupons (code, discount_amount, discount_percent, valid_from, valid_to, active)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+couponColumns, c.Code, c.DiscountAmount, c.DiscountPercent, c.ValidFrom, c.ValidTo, c.Active))
	metrics.ObserveNetworkRequest("postgres", "coupons_insert", "coupons", start, err)
	return saved, wrapErr("create coupon", err)
}

// GetCoupon возвращает купон по коду.
func (p *Postgres) GetCoupon(ctx context.Context, code string) (domain.Coupon, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	c, err := scanCoupon(p.pool.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE code=$1`, code))
	metrics.ObserveNetworkRequest("postgres", "coupons_get", "coupons", start, err)
	return c, wrapErr("get coupon", err)
}

// ListActiveCoupons возвращает активные купоны.
func (p *Postgres) ListActiveCoupons(ctx context.Context) ([]domain.Coupon, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT `+couponColumns+` FROM coupons WHERE active ORDER BY created_at DESC`)
	metrics.ObserveNetworkRequest("postgres", "coupons_list", "coupons", start, err)
	if err != nil {
		return nil, wrapErr("list coupons", err)
	}
	defer rows.Close()

	out := []domain.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, wrapErr("scan coupon", err)
		}
		out = append(out, c)
	}
	return out, wrapErr("list coupons", rows.Err())
}

// UpdateCoupon сохраняет изменённый купон.
func (p *Postgres) UpdateCoupon(ctx context.Context, c domain.Coupon) (domain.Coupon, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	saved, err := scanCoupon(p.pool.QueryRow(ctx, `
UPDATE coupons SET
    discount_amount = $2,
    discount_percent = $3,
    valid_from = $4,
    valid_to = $5,
    active = $6,
    updated_at = now()
WHERE code=$1
RETURNING `+couponColumns, c.Code, c.DiscountAmount, c.DiscountPercent, c.ValidFrom, c.ValidTo, c.Active))
	metrics.ObserveNetworkRequest("postgres", "coupons_update", "coupons", start, err)
	return saved, wrapErr("update coupon", err)
}

// DeleteCoupon удаляет купон.
func (p *Postgres) DeleteCoupon(ctx context.Context, code string) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `DELETE FROM coupons WHERE code=$1`, code)
	metrics.ObserveNetworkRequest("postgres", "coupons_delete", "coupons", start, err)
	if err != nil {
		return wrapErr("delete coupon", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete coupon: %w", domain.ErrNotFound)
	}
	return nil
}

const orderColumns = `order_id, user_id, amount, currency, coupon_code, status, payment_id, created_at, paid_at`

func scanOrder(row rowScanner) (domain.PaymentOrder, error) {
	var (
		o                     domain.PaymentOrder
		couponCode, paymentID sql.NullString
		paidAt                sql.NullTime
	)
	if err := row.Scan(&o.OrderID, &o.UserID, &o.Amount.Amount, &o.Amount.Currency, &couponCode, &o.Status, &paymentID, &o.CreatedAt, &paidAt); err != nil {
		return domain.PaymentOrder{}, err
	}
	o.CouponCode = couponCode.String
	o.PaymentID = paymentID.String
	if paidAt.Valid {
		ts := paidAt.Time
		o.PaidAt = &ts
	}
	return o, nil
}

// CreateOrder сохраняет заказ, созданный у провайдера.
func (p *Postgres) CreateOrder(ctx context.Context, o domain.PaymentOrder) (domain.PaymentOrder, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	currency := o.Amount.Currency
	if currency == "" {
		currency = domain.CurrencyINR
	}
	status := o.Status
	if status == "" {
		status = domain.OrderStatusCreated
	}
	start := time.Now()
	saved, err := scanOrder(p.pool.QueryRow(ctx, `
INSERT INTO payment_orders (order_id, user_id, amount, currency, coupon_code, status)
VALUES ($1, $2, $3, $4, NULLIF($5,''), $6)
RETURNING `+orderColumns, o.OrderID, o.UserID, o.Amount.Amount, currency, o.CouponCode, status))
	metrics.ObserveNetworkRequest("postgres", "orders_insert", "payment_orders", start, err)
	return saved, wrapErr("create order", err)
}

// GetOrder возвращает заказ.
func (p *Postgres) GetOrder(ctx context.Context, orderID string) (domain.PaymentOrder, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	o, err := scanOrder(p.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM payment_orders WHERE order_id=$1`, orderID))
	metrics.ObserveNetworkRequest("postgres", "orders_get", "payment_orders", start, err)
	return o, wrapErr("get order", err)
}

// MarkOrderPaid отмечает заказ оплаченным.
func (p *Postgres) MarkOrderPaid(ctx context.Context, orderID, paymentID string, paidAt time.Time) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
UPDATE payment_orders SET status = 'paid', payment_id = $2, paid_at = $3
WHERE order_id=$1
`, orderID, paymentID, paidAt)
	metrics.ObserveNetworkRequest("postgres", "orders_mark_paid", "payment_orders", start, err)
	if err != nil {
		return wrapErr("mark order paid", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark order paid: %w", domain.ErrNotFound)
	}
	return nil
}
