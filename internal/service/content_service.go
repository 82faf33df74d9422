package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	cfg "github.com/maheshrc27/postforge/configs"
	"github.com/maheshrc27/postforge/internal/models"
	"github.com/maheshrc27/postforge/internal/transfer"
)

// ContentGenerator turns one post's metadata into three text variants and
// three matching image prompts. It never retries; retry policy belongs to the
// caller.
type ContentGenerator interface {
	Generate(ctx context.Context, post *models.Post, apiKey string) (*transfer.PostContent, int64, error)
}

type contentService struct {
	config cfg.Config
	client *http.Client
}

func NewContentService(config cfg.Config) ContentGenerator {
	return &contentService{
		config: config,
		client: &http.Client{
			Timeout: config.Generation.CallTimeout,
		},
	}
}

func (s *contentService) Generate(ctx context.Context, post *models.Post, apiKey string) (*transfer.PostContent, int64, error) {
	prompt := buildContentPrompt(post)

	request := transfer.GeminiRequest{
		Contents: []transfer.Content{
			{Parts: []transfer.Part{{Text: prompt}}},
		},
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, 0, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimSuffix(s.config.LLM.APIURL, "/"), s.config.LLM.Model, apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, fmt.Errorf("%w: %v", models.ErrProvider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", models.ErrProvider, err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Info(fmt.Sprintf("llm returned status %d", resp.StatusCode))
		return nil, 0, fmt.Errorf("%w: status %d", models.ErrProvider, resp.StatusCode)
	}

	var geminiResp transfer.GeminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", models.ErrProvider, err)
	}
	if geminiResp.Error != nil {
		return nil, 0, fmt.Errorf("%w: %s", models.ErrProvider, geminiResp.Error.Message)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return nil, 0, fmt.Errorf("%w: empty response", models.ErrMalformedOutput)
	}

	text := geminiResp.Candidates[0].Content.Parts[0].Text
	content, err := parsePostContent(text)
	if err != nil {
		return nil, 0, err
	}

	tokens := estimateTokens(prompt) + estimateTokens(text)
	return content, tokens, nil
}

func buildContentPrompt(post *models.Post) string {
	var b strings.Builder

	b.WriteString("You write social media content. Produce exactly 3 alternative post texts and 3 matching image prompts for the post described below.\n\n")
	b.WriteString("Instruction: " + post.Instruction + "\n")
	if post.PostType != "" {
		b.WriteString("Post type: " + post.PostType + "\n")
	}
	if post.Template != "" {
		b.WriteString("Template: " + post.Template + "\n")
	}
	if post.Purpose != "" {
		b.WriteString("Purpose: " + post.Purpose + "\n")
	}
	if post.Sample != "" {
		b.WriteString("Sample post for tone: " + post.Sample + "\n")
	}
	if post.Keywords != "" {
		b.WriteString("Keywords: " + post.Keywords + "\n")
	}
	b.WriteString("\nReply ONLY with valid JSON of the form ")
	b.WriteString(`{"variants": ["...", "...", "..."], "image_prompts": ["...", "...", "..."]}`)
	b.WriteString(". No prose, no markdown.")

	return b.String()
}

// parsePostContent enforces the generator contract: exactly three variants and
// three image prompts, all non-empty. Anything else is malformed output.
func parsePostContent(text string) (*transfer.PostContent, error) {
	cleaned := stripCodeFence(text)

	var content transfer.PostContent
	if err := json.Unmarshal([]byte(cleaned), &content); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedOutput, err)
	}

	if len(content.Variants) != 3 || len(content.ImagePrompts) != 3 {
		return nil, fmt.Errorf("%w: got %d variants and %d image prompts",
			models.ErrMalformedOutput, len(content.Variants), len(content.ImagePrompts))
	}
	for i := 0; i < 3; i++ {
		if strings.TrimSpace(content.Variants[i]) == "" || strings.TrimSpace(content.ImagePrompts[i]) == "" {
			return nil, fmt.Errorf("%w: empty slot %d", models.ErrMalformedOutput, i+1)
		}
	}

	return &content, nil
}

// Models often wrap JSON in a markdown fence despite instructions.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// Rough approximation, ~4 characters per token.
func estimateTokens(text string) int64 {
	return int64(len(text) / 4)
}
