package repo

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/HysterChat/pinco-clone/internal/domain"
	"github.com/HysterChat/pinco-clone/internal/infra/db"
)

func TestInterviewWhere(t *testing.T) {
	where, args := interviewWhere(domain.InterviewFilter{UserID: "u1", JobCategory: "Finance", CompanyName: "acme"})
	want := "user_id = $1 AND job_category = $2 AND company_name ILIKE '%' || $3 || '%'"
	if where != want {
		t.Fatalf("неожиданное условие:\n%s\n%s", where, want)
	}
	if len(args) != 3 || args[2] != "acme" {
		t.Fatalf("неожиданные аргументы: %v", args)
	}
}

func TestWrapErr(t *testing.T) {
	if wrapErr("op", nil) != nil {
		t.Fatalf("nil должен оставаться nil")
	}
	if err := wrapErr("op", errors.New("boom")); !errors.Is(err, domain.ErrPersistence) || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("ожидали ErrPersistence, получили %v", err)
	}
}

func newTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN не задан")
	}
	pool, err := db.Connect(context.Background(), dsn)
	if err != nil {
		t.Fatalf("подключение к postgres: %v", err)
	}
	t.Cleanup(pool.Close)
	pg := NewPostgres(pool)
	if err := pg.Migrate(context.Background()); err != nil {
		t.Fatalf("миграция: %v", err)
	}
	return pg
}

func TestPostgresAccountLifecycle(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()
	userID := "test-" + uuid.NewString()

	acc, err := pg.EnsureAccount(ctx, domain.AccountIdentity{UserID: userID, Email: "a@example.com"})
	if err != nil || acc.AccountType != domain.AccountTypeFree || acc.SubscriptionStatus != domain.SubscriptionFree {
		t.Fatalf("создание учётной записи: %+v, %v", acc, err)
	}
	if n, claimed, err := pg.ClaimFreeInterview(ctx, userID, domain.FreeInterviewLimit); err != nil || !claimed || n != 1 {
		t.Fatalf("счётчик интервью: %d, %t, %v", n, claimed, err)
	}
	if n, claimed, err := pg.ClaimFreeInterview(ctx, userID, domain.FreeInterviewLimit); err != nil || claimed {
		t.Fatalf("лимит бесплатных интервью должен соблюдаться: %d, %t, %v", n, claimed, err)
	}

	paid := time.Now().UTC().Add(-2 * time.Hour)
	acc, err = pg.ActivateSubscription(ctx, userID, "order_x", "pay_x", paid, paid.Add(time.Hour))
	if err != nil || acc.AccountType != domain.AccountTypePremium || acc.SubscriptionEnd == nil {
		t.Fatalf("активация: %+v, %v", acc, err)
	}
	if _, err := pg.ExpireSubscriptions(ctx, time.Now().UTC()); err != nil {
		t.Fatalf("истечение: %v", err)
	}
	acc, err = pg.GetAccount(ctx, userID)
	if err != nil || acc.SubscriptionStatus != domain.SubscriptionExpired || acc.AccountType != domain.AccountTypeFree {
		t.Fatalf("после истечения: %+v, %v", acc, err)
	}

	if _, err := pg.GetAccount(ctx, "missing-"+uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("ожидали ErrNotFound, получили %v", err)
	}
}

func TestPostgresFeedbackAndProfile(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()
	userID := "test-" + uuid.NewString()
	if _, err := pg.EnsureAccount(ctx, domain.AccountIdentity{UserID: userID}); err != nil {
		t.Fatalf("создание учётной записи: %v", err)
	}

	p, err := pg.GetOrCreateProfile(ctx, userID)
	if err != nil || p.UserID != userID {
		t.Fatalf("анкета: %+v, %v", p, err)
	}
	stale := p

	rec, err := pg.CreateFeedback(ctx, domain.FeedbackRecord{
		UserID:       userID,
		InterviewID:  "iv1",
		OverallScore: 70,
		Summary:      domain.AnalysisSummary{OverallScore: 70, CurrentStatus: "Ready"},
		Responses:    []domain.QAPair{{Question: "q", Answer: "a"}},
	}, domain.InterviewOutcome{Minutes: 20, Score: 70})
	if err != nil || rec.ID == "" || rec.Summary.CurrentStatus != "Ready" || len(rec.Responses) != 1 {
		t.Fatalf("сохранение оценки: %+v, %v", rec, err)
	}
	if _, err := pg.CreateFeedback(ctx, domain.FeedbackRecord{UserID: userID, InterviewID: "iv2", OverallScore: 81},
		domain.InterviewOutcome{Minutes: 10, Score: 81}); err != nil {
		t.Fatalf("вторая оценка: %v", err)
	}
	want := domain.Profile{}.RecordInterview(20, 70).RecordInterview(10, 81)

	// Редактирование анкеты по устаревшей копии не должно затирать статистику.
	stale.FullName = "Jane"
	p, err = pg.SaveProfile(ctx, stale)
	if err != nil || p.FullName != "Jane" {
		t.Fatalf("сохранение анкеты: %+v, %v", p, err)
	}
	if p.CompletedInterviews != want.CompletedInterviews || p.AverageScore != want.AverageScore ||
		p.TotalScore != want.TotalScore || p.HoursPracticed != want.HoursPracticed || len(p.Scores) != 2 {
		t.Fatalf("статистика анкеты: получили %+v, ожидали %+v", p, want)
	}
	got, err := pg.GetFeedbackByInterview(ctx, userID, "iv1")
	if err != nil || got.ID != rec.ID {
		t.Fatalf("оценка по интервью: %+v, %v", got, err)
	}
	if _, err := pg.GetFeedback(ctx, "other", rec.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("чужая оценка должна быть не найдена, получили %v", err)
	}
	scores, err := pg.FeedbackScores(ctx, userID)
	if err != nil || len(scores) != 2 {
		t.Fatalf("оценки: %+v, %v", scores, err)
	}
}

func TestPostgresCouponConflict(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()
	code := "T" + strings.ToUpper(uuid.NewString()[:8])
	if _, err := pg.CreateCoupon(ctx, domain.Coupon{Code: code, DiscountAmount: 100, Active: true}); err != nil {
		t.Fatalf("создание купона: %v", err)
	}
	t.Cleanup(func() { _ = pg.DeleteCoupon(context.Background(), code) })
	if _, err := pg.CreateCoupon(ctx, domain.Coupon{Code: code, Active: true}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("ожидали ErrConflict, получили %v", err)
	}
}
