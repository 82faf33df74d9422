package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	cfg "github.com/maheshrc27/postforge/configs"
	"github.com/maheshrc27/postforge/internal/models"
	"github.com/maheshrc27/postforge/internal/transfer"
)

// ImageOptions only shape the outbound request; every field is optional.
type ImageOptions struct {
	AspectRatio    string
	Model          string
	OutputFormat   string
	NegativePrompt string
	Style          string
}

type ImageGenerator interface {
	Generate(ctx context.Context, prompt, apiKey string, opts ImageOptions) ([]byte, error)
}

type imageService struct {
	config cfg.Config
	client *http.Client
}

func NewImageService(config cfg.Config) ImageGenerator {
	return &imageService{
		config: config,
		client: &http.Client{
			Timeout: config.Generation.CallTimeout,
		},
	}
}

func (s *imageService) Generate(ctx context.Context, prompt, apiKey string, opts ImageOptions) ([]byte, error) {
	model := opts.Model
	if model == "" {
		model = s.config.ImageGen.Model
	}

	request := transfer.ImageRequest{
		Prompt:         prompt,
		NegativePrompt: opts.NegativePrompt,
		Model:          model,
		AspectRatio:    opts.AspectRatio,
		OutputFormat:   opts.OutputFormat,
		Style:          opts.Style,
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.ImageGen.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %v", models.ErrProvider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrProvider, err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Info(fmt.Sprintf("image provider returned status %d", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", models.ErrProvider, resp.StatusCode)
	}

	var imageResp transfer.ImageResponse
	if err := json.Unmarshal(respBody, &imageResp); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrProvider, err)
	}
	if imageResp.Error != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrProvider, imageResp.Error.Message)
	}
	if imageResp.Image == "" {
		return nil, fmt.Errorf("%w: empty image payload", models.ErrProvider)
	}

	imageBytes, err := base64.StdEncoding.DecodeString(imageResp.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrProvider, err)
	}

	return imageBytes, nil
}
