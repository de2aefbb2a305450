package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HysterChat/pinco-clone/internal/domain"
	"github.com/HysterChat/pinco-clone/internal/infra/metrics"
)

const feedbackColumns = `id::text, user_id, interview_id, overall_score, analysis, summary, metadata, responses, created_at, updated_at`

func scanFeedback(row rowScanner) (domain.FeedbackRecord, error) {
	var (
		rec                          domain.FeedbackRecord
		summary, metadata, responses []byte
	)
	err := row.Scan(&rec.ID, &rec.UserID, &rec.InterviewID, &rec.OverallScore, &rec.Analysis,
		&summary, &metadata, &responses, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return domain.FeedbackRecord{}, err
	}
	if err := json.Unmarshal(summary, &rec.Summary); err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("decode summary: %w", err)
	}
	if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("decode metadata: %w", err)
	}
	if err := json.Unmarshal(responses, &rec.Responses); err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("decode responses: %w", err)
	}
	return rec, nil
}

func encodeFeedback(rec domain.FeedbackRecord) (summary, metadata, responses []byte, err error) {
	if summary, err = json.Marshal(rec.Summary); err != nil {
		return nil, nil, nil, err
	}
	if metadata, err = json.Marshal(rec.Metadata); err != nil {
		return nil, nil, nil, err
	}
	qa := rec.Responses
	if qa == nil {
		qa = []domain.QAPair{}
	}
	if responses, err = json.Marshal(qa); err != nil {
		return nil, nil, nil, err
	}
	return summary, metadata, responses, nil
}

// CreateFeedback сохраняет оценку и обновляет статистику анкеты в одной транзакции.
func (p *Postgres) CreateFeedback(ctx context.Context, rec domain.FeedbackRecord, outcome domain.InterviewOutcome) (domain.FeedbackRecord, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	summary, metadata, responses, err := encodeFeedback(rec)
	if err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("encode feedback: %w", err)
	}

	start := time.Now()
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	metrics.ObserveNetworkRequest("postgres", "begin_tx", "interview_feedback", start, err)
	if err != nil {
		return domain.FeedbackRecord{}, wrapErr("create feedback", err)
	}
	defer tx.Rollback(ctx)

	start = time.Now()
	saved, err := scanFeedback(tx.QueryRow(ctx, `
INSERT INTO interview_feedback (id, user_id, interview_id, overall_score, analysis, summary, metadata, responses)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+feedbackColumns,
		rec.ID, rec.UserID, rec.InterviewID, rec.OverallScore, rec.Analysis, summary, metadata, responses))
	metrics.ObserveNetworkRequest("postgres", "feedback_insert", "interview_feedback", start, err)
	if err != nil {
		return domain.FeedbackRecord{}, wrapErr("create feedback", err)
	}

	start = time.Now()
	_, err = tx.Exec(ctx, `
INSERT INTO profiles (user_id, completed_interviews, hours_practiced, average_score, total_score, scores)
VALUES ($1, 1, round(($2::integer / 60.0)::numeric, 2), $3::integer, $3::integer, ARRAY[$3::integer])
ON CONFLICT (user_id) DO UPDATE SET
    completed_interviews = profiles.completed_interviews + 1,
    hours_practiced = round((profiles.hours_practiced + $2::integer / 60.0)::numeric, 2),
    total_score = profiles.total_score + $3::integer,
    average_score = round(((profiles.total_score + $3::integer) / (cardinality(profiles.scores) + 1))::numeric, 2),
    scores = profiles.scores || $3::integer,
    updated_at = now()
`, rec.UserID, outcome.Minutes, outcome.Score)
	metrics.ObserveNetworkRequest("postgres", "profiles_record_interview", "profiles", start, err)
	if err != nil {
		return domain.FeedbackRecord{}, wrapErr("record interview", err)
	}

	start = time.Now()
	err = tx.Commit(ctx)
	metrics.ObserveNetworkRequest("postgres", "commit", "interview_feedback", start, err)
	if err != nil {
		return domain.FeedbackRecord{}, wrapErr("create feedback", err)
	}
	return saved, nil
}

// GetFeedback возвращает оценку владельца.
func (p *Postgres) GetFeedback(ctx context.Context, userID, id string) (domain.FeedbackRecord, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rec, err := scanFeedback(p.pool.QueryRow(ctx, `SELECT `+feedbackColumns+` FROM interview_feedback WHERE id::text=$1 AND user_id=$2`, id, userID))
	metrics.ObserveNetworkRequest("postgres", "feedback_get", "interview_feedback", start, err)
	return rec, wrapErr("get feedback", err)
}

// GetFeedbackByInterview возвращает последнюю оценку интервью.
func (p *Postgres) GetFeedbackByInterview(ctx context.Context, userID, interviewID string) (domain.FeedbackRecord, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rec, err := scanFeedback(p.pool.QueryRow(ctx, `
SELECT `+feedbackColumns+` FROM interview_feedback
WHERE user_id=$1 AND interview_id=$2
ORDER BY created_at DESC LIMIT 1
`, userID, interviewID))
	metrics.ObserveNetworkRequest("postgres", "feedback_get_by_interview", "interview_feedback", start, err)
	return rec, wrapErr("get feedback by interview", err)
}

// ListFeedback возвращает оценки пользователя от новых к старым.
func (p *Postgres) ListFeedback(ctx context.Context, userID string) ([]domain.FeedbackRecord, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT `+feedbackColumns+` FROM interview_feedback WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	metrics.ObserveNetworkRequest("postgres", "feedback_list", "interview_feedback", start, err)
	if err != nil {
		return nil, wrapErr("list feedback", err)
	}
	defer rows.Close()

	out := []domain.FeedbackRecord{}
	for rows.Next() {
		rec, err := scanFeedback(rows)
		if err != nil {
			return nil, wrapErr("scan feedback", err)
		}
		out = append(out, rec)
	}
	return out, wrapErr("list feedback", rows.Err())
}

// UpdateFeedback сохраняет исправленную оценку.
func (p *Postgres) UpdateFeedback(ctx context.Context, rec domain.FeedbackRecord) (domain.FeedbackRecord, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	summary, metadata, responses, err := encodeFeedback(rec)
	if err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("encode feedback: %w", err)
	}
	start := time.Now()
	saved, err := scanFeedback(p.pool.QueryRow(ctx, `
UPDATE interview_feedback SET
    overall_score = $3,
    analysis = $4,
    summary = $5,
    metadata = $6,
    responses = $7,
    updated_at = now()
WHERE id::text=$1 AND user_id=$2
RETURNING `+feedbackColumns,
		rec.ID, rec.UserID, rec.OverallScore, rec.Analysis, summary, metadata, responses))
	metrics.ObserveNetworkRequest("postgres", "feedback_update", "interview_feedback", start, err)
	return saved, wrapErr("update feedback", err)
}

// FeedbackScores возвращает оценки с датами.
func (p *Postgres) FeedbackScores(ctx context.Context, userID string) ([]domain.ScorePoint, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT overall_score, created_at FROM interview_feedback WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	metrics.ObserveNetworkRequest("postgres", "feedback_scores", "interview_feedback", start, err)
	if err != nil {
		return nil, wrapErr("feedback scores", err)
	}
	defer rows.Close()

	var out []domain.ScorePoint
	for rows.Next() {
		var sp domain.ScorePoint
		if err := rows.Scan(&sp.Score, &sp.Date); err != nil {
			return nil, wrapErr("scan score", err)
		}
		out = append(out, sp)
	}
	return out, wrapErr("feedback scores", rows.Err())
}
