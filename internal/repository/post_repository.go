package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/postforge/internal/models"
)

type PostRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Post, bool, error)
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Post, error)
	ListByStatus(ctx context.Context, userID int64, status string) ([]*models.Post, error)
	ListBySessionID(ctx context.Context, sessionID int64) ([]*models.Post, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.Post, error)
	ClaimQueued(ctx context.Context, userID, sessionID int64, limit int) ([]*models.Post, error)
	ReleaseClaim(ctx context.Context, postID int64) error
	UpdateGenerated(ctx context.Context, post *models.Post) error
	UpdateStatus(ctx context.Context, status string, postID int64) error
	UpdateScheduled(ctx context.Context, postID int64, scheduledAt time.Time) error
	UpdateSelection(ctx context.Context, postID int64, variant, image int) error
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, post_id, user_id, status, instruction, post_type, template, purpose, sample, keywords,
	variant_1, variant_2, variant_3, image_prompt_1, image_prompt_2, image_prompt_3,
	image_url_1, image_url_2, image_url_3, selected_variant, selected_image,
	session_id, scheduled_at, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var post models.Post
	err := row.Scan(&post.ID, &post.PostID, &post.UserID, &post.Status,
		&post.Instruction, &post.PostType, &post.Template, &post.Purpose, &post.Sample, &post.Keywords,
		&post.Variant1, &post.Variant2, &post.Variant3,
		&post.ImagePrompt1, &post.ImagePrompt2, &post.ImagePrompt3,
		&post.ImageURL1, &post.ImageURL2, &post.ImageURL3,
		&post.SelectedVariant, &post.SelectedImage,
		&post.SessionID, &post.ScheduledAt, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (post_id, user_id, status, instruction, post_type, template, purpose, sample, keywords)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, post.PostID, post.UserID, post.Status,
			post.Instruction, post.PostType, post.Template, post.Purpose, post.Sample, post.Keywords).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, post.PostID, post.UserID, post.Status,
			post.Instruction, post.PostType, post.Template, post.Purpose, post.Sample, post.Keywords).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, bool, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return post, true, nil
}

func (r *postRepository) listQuery(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 ORDER BY id`
	return r.listQuery(ctx, query, userID)
}

func (r *postRepository) ListByStatus(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 AND status = $2 ORDER BY id`
	return r.listQuery(ctx, query, userID, status)
}

func (r *postRepository) ListBySessionID(ctx context.Context, sessionID int64) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE session_id = $1 ORDER BY id`
	return r.listQuery(ctx, query, sessionID)
}

func (r *postRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = $1 AND scheduled_at <= $2 ORDER BY id`
	return r.listQuery(ctx, query, models.PostStatusScheduled, now)
}

// ClaimQueued atomically assigns up to limit queued posts to a session. The
// inner SELECT ... FOR UPDATE SKIP LOCKED keeps two concurrent claims from
// ever taking the same row; claimed posts keep status Queue but carry the
// session id, so a later claim attempt sees nothing claimable.
func (r *postRepository) ClaimQueued(ctx context.Context, userID, sessionID int64, limit int) ([]*models.Post, error) {
	query := `
		UPDATE posts
		SET session_id = $2, updated_at = $3
		WHERE id IN (
			SELECT id FROM posts
			WHERE user_id = $1 AND status = $4 AND session_id IS NULL
			ORDER BY id
			LIMIT $5
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + postColumns

	rows, err := r.db.QueryContext(ctx, query, userID, sessionID, time.Now(), models.PostStatusQueue, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// ReleaseClaim reverts a failed post to Untouched and clears its claim so it
// can be re-queued manually.
func (r *postRepository) ReleaseClaim(ctx context.Context, postID int64) error {
	query := `
		UPDATE posts
		SET status = $1,
			session_id = NULL,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusUntouched, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) UpdateGenerated(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET status = $1,
			variant_1 = $2, variant_2 = $3, variant_3 = $4,
			image_prompt_1 = $5, image_prompt_2 = $6, image_prompt_3 = $7,
			image_url_1 = $8, image_url_2 = $9, image_url_3 = $10,
			updated_at = $11
		WHERE id = $12
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusGenerated,
		post.Variant1, post.Variant2, post.Variant3,
		post.ImagePrompt1, post.ImagePrompt2, post.ImagePrompt3,
		post.ImageURL1, post.ImageURL2, post.ImageURL3,
		time.Now(), post.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) UpdateStatus(ctx context.Context, status string, postID int64) error {
	query := `
		UPDATE posts
		SET status = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) UpdateScheduled(ctx context.Context, postID int64, scheduledAt time.Time) error {
	query := `
		UPDATE posts
		SET status = $1,
			scheduled_at = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusScheduled, scheduledAt, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) UpdateSelection(ctx context.Context, postID int64, variant, image int) error {
	query := `
		UPDATE posts
		SET selected_variant = $1,
			selected_image = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, variant, image, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	query := "SELECT 1 FROM posts WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}
