package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/postforge/internal/models"
)

type SessionRepository interface {
	CreateRunning(ctx context.Context, userID int64) (int64, bool, error)
	GetByID(ctx context.Context, id int64) (*models.GenerationSession, bool, error)
	GetRunning(ctx context.Context, userID int64) (*models.GenerationSession, bool, error)
	SetTotal(ctx context.Context, id int64, total int) error
	RecordPost(ctx context.Context, id int64, failed bool, tokens int64, imagesGenerated, imagesFailed int, cost float64) error
	Finish(ctx context.Context, id int64, runStatus string) error
}

type sessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

const sessionColumns = `id, user_id, run_status, total_posts, processed_posts, failed_posts,
	tokens_used, images_generated, images_failed, estimated_cost, started_at, finished_at`

func scanSession(row interface{ Scan(...any) error }) (*models.GenerationSession, error) {
	var s models.GenerationSession
	err := row.Scan(&s.ID, &s.UserID, &s.RunStatus, &s.TotalPosts, &s.ProcessedPosts, &s.FailedPosts,
		&s.TokensUsed, &s.ImagesGenerated, &s.ImagesFailed, &s.EstimatedCost, &s.StartedAt, &s.FinishedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateRunning inserts a running session only when the user has none. The
// conditional insert is backed by the partial unique index on (user_id) WHERE
// run_status = 'running', so the single-active-run invariant holds under
// concurrent requests, not just concurrent in-process calls.
func (r *sessionRepository) CreateRunning(ctx context.Context, userID int64) (int64, bool, error) {
	query := `
		INSERT INTO generation_sessions (user_id, run_status)
		SELECT $1, $2
		WHERE NOT EXISTS (
			SELECT 1 FROM generation_sessions WHERE user_id = $1 AND run_status = $2
		)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, userID, models.RunStatusRunning).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		slog.Info(err.Error())
		return 0, false, err
	}
	return id, true, nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id int64) (*models.GenerationSession, bool, error) {
	query := `SELECT ` + sessionColumns + ` FROM generation_sessions WHERE id = $1`
	session, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return session, true, nil
}

func (r *sessionRepository) GetRunning(ctx context.Context, userID int64) (*models.GenerationSession, bool, error) {
	query := `SELECT ` + sessionColumns + ` FROM generation_sessions WHERE user_id = $1 AND run_status = $2`
	session, err := scanSession(r.db.QueryRowContext(ctx, query, userID, models.RunStatusRunning))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return session, true, nil
}

func (r *sessionRepository) SetTotal(ctx context.Context, id int64, total int) error {
	query := `UPDATE generation_sessions SET total_posts = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, total, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// RecordPost commits one post's outcome to the session counters. Counters are
// incremented in place so a status poll always sees the latest committed state.
func (r *sessionRepository) RecordPost(ctx context.Context, id int64, failed bool, tokens int64, imagesGenerated, imagesFailed int, cost float64) error {
	processed, failedInc := 1, 0
	if failed {
		processed, failedInc = 0, 1
	}

	query := `
		UPDATE generation_sessions
		SET processed_posts = processed_posts + $1,
			failed_posts = failed_posts + $2,
			tokens_used = tokens_used + $3,
			images_generated = images_generated + $4,
			images_failed = images_failed + $5,
			estimated_cost = estimated_cost + $6
		WHERE id = $7
	`
	_, err := r.db.ExecContext(ctx, query, processed, failedInc, tokens, imagesGenerated, imagesFailed, cost, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *sessionRepository) Finish(ctx context.Context, id int64, runStatus string) error {
	query := `
		UPDATE generation_sessions
		SET run_status = $1,
			finished_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, runStatus, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
