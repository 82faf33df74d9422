package service

import (
	"context"
	"errors"
	"log/slog"

	cfg "github.com/maheshrc27/postforge/configs"
	"github.com/maheshrc27/postforge/internal/models"
	"github.com/maheshrc27/postforge/internal/repository"
	"github.com/maheshrc27/postforge/internal/transfer"
	"github.com/maheshrc27/postforge/pkg/utils"
)

type SettingsService interface {
	GetSettingsInfo(ctx context.Context, userID int64) (*models.Settings, error)
	UpdateSettings(ctx context.Context, userID int64, su *transfer.SettingsUpdate) error
	ProvidersConfigured(ctx context.Context, userID int64) (*transfer.ProvidersConfigured, error)
}

type settingsService struct {
	cfg cfg.Config
	sr  repository.SettingsRepository
}

func NewSettingsService(cfg cfg.Config, sr repository.SettingsRepository) SettingsService {
	return &settingsService{
		cfg: cfg,
		sr:  sr,
	}
}

func (s *settingsService) GetSettingsInfo(ctx context.Context, userID int64) (*models.Settings, error) {
	settings, isExist, err := s.sr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !isExist {
		err = errors.New("settings for given user don't exist")
		slog.Info(err.Error())
		return nil, err
	}

	// Stored keys are ciphertext and never leave the server.
	settings.LLMAPIKey = ""
	settings.ImageAPIKey = ""

	return settings, nil
}

// UpdateSettings stores the user's provider configuration. API keys are
// encrypted before they hit the database; an update that leaves a key field
// empty keeps the stored ciphertext, so changing the aspect ratio never wipes
// credentials.
func (s *settingsService) UpdateSettings(ctx context.Context, userID int64, su *transfer.SettingsUpdate) error {
	existing, isExist, err := s.sr.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	llmKey := su.LLMAPIKey
	imageKey := su.ImageAPIKey

	if llmKey != "" {
		llmKey, err = utils.Encrypt([]byte(llmKey), []byte(s.cfg.SecretKey))
		if err != nil {
			return err
		}
	} else if isExist {
		llmKey = existing.LLMAPIKey
	}
	if imageKey != "" {
		imageKey, err = utils.Encrypt([]byte(imageKey), []byte(s.cfg.SecretKey))
		if err != nil {
			return err
		}
	} else if isExist {
		imageKey = existing.ImageAPIKey
	}

	settings := models.Settings{
		UserID:        userID,
		LLMAPIKey:     llmKey,
		ImageAPIKey:   imageKey,
		ImageProvider: su.ImageProvider,
		AspectRatio:   su.AspectRatio,
		ImageStyle:    su.ImageStyle,
	}

	if !isExist {
		_, err = s.sr.Create(ctx, &settings)
		return err
	}

	return s.sr.UpdateSettings(ctx, &settings, userID)
}

// ProvidersConfigured is what the dashboard polls before it exposes the
// generate action. A provider counts as configured when either the user or
// the environment supplies its key.
func (s *settingsService) ProvidersConfigured(ctx context.Context, userID int64) (*transfer.ProvidersConfigured, error) {
	llmKey := s.cfg.LLM.APIKey
	imageKey := s.cfg.ImageGen.APIKey

	settings, isExist, err := s.sr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if isExist {
		if settings.LLMAPIKey != "" {
			llmKey = settings.LLMAPIKey
		}
		if settings.ImageAPIKey != "" {
			imageKey = settings.ImageAPIKey
		}
	}

	pc := &transfer.ProvidersConfigured{
		LLM:   llmKey != "",
		Image: imageKey != "",
	}
	pc.Configured = pc.LLM && pc.Image
	return pc, nil
}
