package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/postforge/internal/models"
)

type SettingsRepository interface {
	Create(ctx context.Context, settings *models.Settings) (int64, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error)
	UpdateSettings(ctx context.Context, s *models.Settings, userID int64) error
}

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Create(ctx context.Context, settings *models.Settings) (int64, error) {
	query := `
		INSERT INTO settings (user_id, llm_api_key, image_api_key, image_provider, aspect_ratio, image_style)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, settings.UserID, settings.LLMAPIKey, settings.ImageAPIKey,
		settings.ImageProvider, settings.AspectRatio, settings.ImageStyle).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *settingsRepository) GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error) {
	query := `SELECT id, user_id, llm_api_key, image_api_key, image_provider, aspect_ratio, image_style, created_at, updated_at
		FROM settings WHERE user_id = $1`
	row := r.db.QueryRowContext(ctx, query, userID)

	var settings models.Settings
	err := row.Scan(&settings.ID, &settings.UserID, &settings.LLMAPIKey, &settings.ImageAPIKey,
		&settings.ImageProvider, &settings.AspectRatio, &settings.ImageStyle, &settings.CreatedAt, &settings.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	return &settings, true, nil
}

func (r *settingsRepository) UpdateSettings(ctx context.Context, s *models.Settings, userID int64) error {
	query := `
		UPDATE settings
		SET llm_api_key = $1,
			image_api_key = $2,
			image_provider = $3,
			aspect_ratio = $4,
			image_style = $5,
			updated_at = $6
		WHERE user_id = $7
	`
	_, err := r.db.ExecContext(ctx, query, s.LLMAPIKey, s.ImageAPIKey, s.ImageProvider,
		s.AspectRatio, s.ImageStyle, time.Now(), userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
