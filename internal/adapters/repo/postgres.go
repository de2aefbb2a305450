package repo

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HysterChat/pinco-clone/internal/domain"
	"github.com/HysterChat/pinco-clone/internal/infra/metrics"
)

//go:embed schema.sql
var schemaSQL string

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.AccountRepo   = (*Postgres)(nil)
	_ domain.ProfileRepo   = (*Postgres)(nil)
	_ domain.InterviewRepo = (*Postgres)(nil)
	_ domain.FeedbackRepo  = (*Postgres)(nil)
	_ domain.CouponRepo    = (*Postgres)(nil)
	_ domain.OrderRepo     = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtxWithParent(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// Migrate создаёт недостающие таблицы.
func (p *Postgres) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	start := time.Now()
	_, err := p.pool.Exec(ctx, schemaSQL)
	metrics.ObserveNetworkRequest("postgres", "migrate", "schema", start, err)
	if err != nil {
		return fmt.Errorf("применение схемы: %w", err)
	}
	return nil
}

// wrapErr сводит ошибки pgx к доменным.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

const accountColumns = `user_id, email, full_name, account_type, subscription_status, subscription_end_date,
interviews_taken, razorpay_order_id, razorpay_payment_id, last_payment_date, created_at, updated_at`

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		acc                domain.Account
		email, fullName    sql.NullString
		orderID, paymentID sql.NullString
		accountType        string
		subscriptionEnd    sql.NullTime
		lastPayment        sql.NullTime
	)
	err := row.Scan(&acc.UserID, &email, &fullName, &accountType, &acc.SubscriptionStatus, &subscriptionEnd,
		&acc.InterviewsTaken, &orderID, &paymentID, &lastPayment, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return domain.Account{}, err
	}
	acc.AccountType = domain.AccountType(accountType)
	acc.Email = email.String
	acc.FullName = fullName.String
	acc.RazorpayOrderID = orderID.String
	acc.RazorpayPaymentID = paymentID.String
	if subscriptionEnd.Valid {
		ts := subscriptionEnd.Time
		acc.SubscriptionEnd = &ts
	}
	if lastPayment.Valid {
		ts := lastPayment.Time
		acc.LastPaymentAt = &ts
	}
	return acc, nil
}

// EnsureAccount создаёт учётную запись или обновляет имя и почту.
func (p *Postgres) EnsureAccount(ctx context.Context, id domain.AccountIdentity) (domain.Account, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	acc, err := scanAccount(p.pool.QueryRow(ctx, `
INSERT INTO accounts (user_id, email, full_name)
VALUES ($1, NULLIF($2,''), NULLIF($3,''))
ON CONFLICT (user_id) DO UPDATE SET
    email = COALESCE(EXCLUDED.email, accounts.email),
    full_name = COALESCE(EXCLUDED.full_name, accounts.full_name),
    updated_at = CASE
        WHEN accounts.email IS DISTINCT FROM COALESCE(EXCLUDED.email, accounts.email)
          OR accounts.full_name IS DISTINCT FROM COALESCE(EXCLUDED.full_name, accounts.full_name)
        THEN now() ELSE accounts.updated_at END
RETURNING `+accountColumns, id.UserID, id.Email, id.FullName))
	metrics.ObserveNetworkRequest("postgres", "accounts_upsert", "accounts", start, err)
	return acc, wrapErr("ensure account", err)
}

// GetAccount возвращает учётную запись.
func (p *Postgres) GetAccount(ctx context.Context, userID string) (domain.Account, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	acc, err := scanAccount(p.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id=$1`, userID))
	metrics.ObserveNetworkRequest("postgres", "accounts_get", "accounts", start, err)
	return acc, wrapErr("get account", err)
}

// ClaimFreeInterview занимает бесплатное интервью, пока счётчик меньше limit.
// При исчерпанном лимите возвращает claimed=false без ошибки.
func (p *Postgres) ClaimFreeInterview(ctx context.Context, userID string, limit int) (int, bool, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var taken int
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
UPDATE accounts SET interviews_taken = interviews_taken + 1, updated_at = now()
WHERE user_id=$1 AND interviews_taken < $2
RETURNING interviews_taken
`, userID, limit).Scan(&taken)
	metrics.ObserveNetworkRequest("postgres", "accounts_claim_free_interview", "accounts", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrapErr("claim free interview", err)
	}
	return taken, true, nil
}

// ActivateSubscription включает премиум. Администратор остаётся администратором.
func (p *Postgres) ActivateSubscription(ctx context.Context, userID, orderID, paymentID string, paidAt, endsAt time.Time) (domain.Account, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	acc, err := scanAccount(p.pool.QueryRow(ctx, `
UPDATE accounts SET
    subscription_status = 'active',
    subscription_end_date = $4,
    razorpay_order_id = $2,
    razorpay_payment_id = $3,
    last_payment_date = $5,
    account_type = CASE WHEN account_type = 'admin' THEN 'admin' ELSE 'premium' END,
    updated_at = now()
WHERE user_id=$1
RETURNING `+accountColumns, userID, orderID, paymentID, endsAt, paidAt))
	metrics.ObserveNetworkRequest("postgres", "accounts_activate_subscription", "accounts", start, err)
	return acc, wrapErr("activate subscription", err)
}

// ExpireSubscriptions переводит истёкшие подписки в expired.
func (p *Postgres) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
UPDATE accounts SET
    subscription_status = 'expired',
    account_type = CASE WHEN account_type = 'premium' THEN 'free_user' ELSE account_type END,
    updated_at = now()
WHERE subscription_status = 'active' AND subscription_end_date <= $1
`, now)
	metrics.ObserveNetworkRequest("postgres", "accounts_expire_subscriptions", "accounts", start, err)
	if err != nil {
		return 0, wrapErr("expire subscriptions", err)
	}
	return tag.RowsAffected(), nil
}

const profileColumns = `user_id, profile_photo, full_name, email, phone, location, role, experience_level,
course_name, college_name, branch_name, roll_number, year_of_passing, profile_completed,
completed_interviews, hours_practiced, average_score, total_score, scores, created_at, updated_at`

func scanProfile(row rowScanner) (domain.Profile, error) {
	var pr domain.Profile
	err := row.Scan(&pr.UserID, &pr.ProfilePhoto, &pr.FullName, &pr.Email, &pr.Phone, &pr.Location, &pr.Role,
		&pr.ExperienceLevel, &pr.CourseName, &pr.CollegeName, &pr.BranchName, &pr.RollNumber, &pr.YearOfPassing,
		&pr.ProfileCompleted, &pr.CompletedInterviews, &pr.HoursPracticed, &pr.AverageScore, &pr.TotalScore,
		&pr.Scores, &pr.CreatedAt, &pr.UpdatedAt)
	return pr, err
}

// GetOrCreateProfile возвращает анкету, создавая пустую при первом обращении.
func (p *Postgres) GetOrCreateProfile(ctx context.Context, userID string) (domain.Profile, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	pr, err := scanProfile(p.pool.QueryRow(ctx, `
INSERT INTO profiles (user_id) VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET user_id = profiles.user_id
RETURNING `+profileColumns, userID))
	metrics.ObserveNetworkRequest("postgres", "profiles_get_or_create", "profiles", start, err)
	return pr, wrapErr("get profile", err)
}

// SaveProfile сохраняет редактируемые поля анкеты. Статистика интервью
// меняется только через CreateFeedback.
func (p *Postgres) SaveProfile(ctx context.Context, pr domain.Profile) (domain.Profile, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	saved, err := scanProfile(p.pool.QueryRow(ctx, `
INSERT INTO profiles (user_id, profile_photo, full_name, email, phone, location, role, experience_level,
    course_name, college_name, branch_name, roll_number, year_of_passing, profile_completed)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (user_id) DO UPDATE SET
    profile_photo = EXCLUDED.profile_photo,
    full_name = EXCLUDED.full_name,
    email = EXCLUDED.email,
    phone = EXCLUDED.phone,
    location = EXCLUDED.location,
    role = EXCLUDED.role,
    experience_level = EXCLUDED.experience_level,
    course_name = EXCLUDED.course_name,
    college_name = EXCLUDED.college_name,
    branch_name = EXCLUDED.branch_name,
    roll_number = EXCLUDED.roll_number,
    year_of_passing = EXCLUDED.year_of_passing,
    profile_completed = EXCLUDED.profile_completed,
    updated_at = now()
RETURNING `+profileColumns,
		pr.UserID, pr.ProfilePhoto, pr.FullName, pr.Email, pr.Phone, pr.Location, pr.Role, pr.ExperienceLevel,
		pr.CourseName, pr.CollegeName, pr.BranchName, pr.RollNumber, pr.YearOfPassing, pr.ProfileCompleted))
	metrics.ObserveNetworkRequest("postgres", "profiles_upsert", "profiles", start, err)
	return saved, wrapErr("save profile", err)
}
