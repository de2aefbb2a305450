package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/HysterChat/pinco-clone/internal/domain"
	"github.com/HysterChat/pinco-clone/internal/infra/metrics"
)

const interviewColumns = `id::text, user_id, company_name, interview_focus, difficulty_level, duration,
job_category, sub_job_category, created_at, updated_at`

func scanInterview(row rowScanner) (domain.Interview, error) {
	var iv domain.Interview
	err := row.Scan(&iv.ID, &iv.UserID, &iv.CompanyName, &iv.InterviewFocus, &iv.DifficultyLevel, &iv.Duration,
		&iv.JobCategory, &iv.SubJobCategory, &iv.CreatedAt, &iv.UpdatedAt)
	return iv, err
}

// CreateInterview сохраняет конфигурацию интервью.
func (p *Postgres) CreateInterview(ctx context.Context, iv domain.Interview) (domain.Interview, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	saved, err := scanInterview(p.pool.QueryRow(ctx, `
INSERT INTO interviews (id, user_id, company_name, interview_focus, difficulty_level, duration, job_category, sub_job_category)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+interviewColumns,
		iv.ID, iv.UserID, iv.CompanyName, iv.InterviewFocus, iv.DifficultyLevel, iv.Duration, iv.JobCategory, iv.SubJobCategory))
	metrics.ObserveNetworkRequest("postgres", "interviews_insert", "interviews", start, err)
	return saved, wrapErr("create interview", err)
}

// GetInterview возвращает интервью владельца.
func (p *Postgres) GetInterview(ctx context.Context, userID, id string) (domain.Interview, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	iv, err := scanInterview(p.pool.QueryRow(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE id::text=$1 AND user_id=$2`, id, userID))
	metrics.ObserveNetworkRequest("postgres", "interviews_get", "interviews", start, err)
	return iv, wrapErr("get interview", err)
}

// UpdateInterview сохраняет изменённые параметры.
func (p *Postgres) UpdateInterview(ctx context.Context, iv domain.Interview) (domain.Interview, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	saved, err := scanInterview(p.pool.QueryRow(ctx, `
UPDATE interviews SET
    company_name = $3,
    interview_focus = $4,
    difficulty_level = $5,
    duration = $6,
    job_category = $7,
    sub_job_category = $8,
    updated_at = now()
WHERE id::text=$1 AND user_id=$2
RETURNING `+interviewColumns,
		iv.ID, iv.UserID, iv.CompanyName, iv.InterviewFocus, iv.DifficultyLevel, iv.Duration, iv.JobCategory, iv.SubJobCategory))
	metrics.ObserveNetworkRequest("postgres", "interviews_update", "interviews", start, err)
	return saved, wrapErr("update interview", err)
}

// DeleteInterview удаляет интервью владельца.
func (p *Postgres) DeleteInterview(ctx context.Context, userID, id string) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `DELETE FROM interviews WHERE id::text=$1 AND user_id=$2`, id, userID)
	metrics.ObserveNetworkRequest("postgres", "interviews_delete", "interviews", start, err)
	if err != nil {
		return wrapErr("delete interview", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete interview: %w", domain.ErrNotFound)
	}
	return nil
}

// interviewWhere собирает условие поиска и аргументы.
func interviewWhere(f domain.InterviewFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{f.UserID}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.JobCategory != "" {
		add("job_category = $%d", f.JobCategory)
	}
	if f.SubJobCategory != "" {
		add("sub_job_category = $%d", f.SubJobCategory)
	}
	if f.DifficultyLevel != "" {
		add("difficulty_level = $%d", f.DifficultyLevel)
	}
	if f.Duration != "" {
		add("duration = $%d", f.Duration)
	}
	if f.CompanyName != "" {
		add("company_name ILIKE '%%' || $%d || '%%'", f.CompanyName)
	}
	return strings.Join(conds, " AND "), args
}

// SearchInterviews ищет интервью владельца с пагинацией.
func (p *Postgres) SearchInterviews(ctx context.Context, f domain.InterviewFilter) ([]domain.Interview, int, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	f = f.Normalize()
	where, args := interviewWhere(f)

	var total int
	start := time.Now()
	err := p.pool.QueryRow(ctx, `SELECT count(*) FROM interviews WHERE `+where, args...).Scan(&total)
	metrics.ObserveNetworkRequest("postgres", "interviews_count", "interviews", start, err)
	if err != nil {
		return nil, 0, wrapErr("count interviews", err)
	}

	pageArgs := append(append([]any(nil), args...), f.PerPage, f.Offset())
	query := fmt.Sprintf(`SELECT %s FROM interviews WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		interviewColumns, where, len(args)+1, len(args)+2)
	start = time.Now()
	rows, err := p.pool.Query(ctx, query, pageArgs...)
	metrics.ObserveNetworkRequest("postgres", "interviews_search", "interviews", start, err)
	if err != nil {
		return nil, 0, wrapErr("search interviews", err)
	}
	defer rows.Close()

	var out []domain.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, 0, wrapErr("scan interview", err)
		}
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapErr("search interviews", err)
	}
	return out, total, nil
}
