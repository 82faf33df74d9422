package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	cfg "github.com/maheshrc27/postforge/configs"
	"github.com/maheshrc27/postforge/internal/models"
	"github.com/maheshrc27/postforge/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContentService(apiURL string) ContentGenerator {
	return NewContentService(cfg.Config{
		LLM: cfg.LLM{
			APIURL: apiURL,
			Model:  "gemini-1.5-flash",
		},
		Generation: cfg.Generation{CallTimeout: 2 * time.Second},
	})
}

func geminiReply(text string) transfer.GeminiResponse {
	return transfer.GeminiResponse{
		Candidates: []transfer.Candidate{
			{Content: transfer.Content{Parts: []transfer.Part{{Text: text}}}},
		},
	}
}

func TestContentGenerate(t *testing.T) {
	payload := `{"variants": ["first", "second", "third"], "image_prompts": ["sunset", "skyline", "forest"]}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req transfer.GeminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "launch the new app")

		json.NewEncoder(w).Encode(geminiReply(payload))
	}))
	defer server.Close()

	s := newContentService(server.URL)
	post := &models.Post{PostID: "abc123", Instruction: "launch the new app"}

	content, tokens, err := s.Generate(context.Background(), post, "test-key")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, content.Variants)
	assert.Equal(t, []string{"sunset", "skyline", "forest"}, content.ImagePrompts)
	assert.Greater(t, tokens, int64(0))
}

func TestContentGenerateFencedJSON(t *testing.T) {
	payload := "```json\n{\"variants\": [\"a\", \"b\", \"c\"], \"image_prompts\": [\"x\", \"y\", \"z\"]}\n```"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiReply(payload))
	}))
	defer server.Close()

	s := newContentService(server.URL)
	content, _, err := s.Generate(context.Background(), &models.Post{Instruction: "hi"}, "k")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, content.Variants)
}

func TestContentGenerateMalformedOutput(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "here are three great posts for you"},
		{"wrong count", `{"variants": ["a", "b"], "image_prompts": ["x", "y", "z"]}`},
		{"empty slot", `{"variants": ["a", "", "c"], "image_prompts": ["x", "y", "z"]}`},
		{"missing prompts", `{"variants": ["a", "b", "c"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(geminiReply(tt.text))
			}))
			defer server.Close()

			s := newContentService(server.URL)
			_, _, err := s.Generate(context.Background(), &models.Post{Instruction: "hi"}, "k")
			assert.ErrorIs(t, err, models.ErrMalformedOutput)
		})
	}
}

func TestContentGenerateProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := newContentService(server.URL)
	_, _, err := s.Generate(context.Background(), &models.Post{Instruction: "hi"}, "k")
	assert.ErrorIs(t, err, models.ErrProvider)
}

func TestContentGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(transfer.GeminiResponse{
			Error: &transfer.GeminiError{Code: 429, Message: "quota exceeded"},
		})
	}))
	defer server.Close()

	s := newContentService(server.URL)
	_, _, err := s.Generate(context.Background(), &models.Post{Instruction: "hi"}, "k")
	assert.ErrorIs(t, err, models.ErrProvider)
	assert.Contains(t, err.Error(), "quota exceeded")
}
