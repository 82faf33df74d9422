package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	cfg "github.com/maheshrc27/postforge/configs"
	"github.com/maheshrc27/postforge/internal/models"
	"github.com/maheshrc27/postforge/internal/repository"
	"github.com/maheshrc27/postforge/internal/transfer"
	"github.com/maheshrc27/postforge/pkg/utils"
	"golang.org/x/time/rate"
)

// Per-unit cost estimates used for the session's aggregate cost counter.
const (
	costPerThousandTokens = 0.00025
	costPerImage          = 0.04
)

// WorkflowService drives the generation pipeline: it claims queued posts into
// a session, runs content generation, image generation and upload per post,
// and advances each post's status. One session per user may run at a time.
type WorkflowService interface {
	StartRun(ctx context.Context, userID int64, batchSize int) (int64, error)
	ProcessSession(ctx context.Context, sessionID int64) error
	GetStatus(ctx context.Context, userID int64) (*transfer.GenerationStatus, error)
	GetSession(ctx context.Context, sessionID int64) (*models.GenerationSession, error)
}

// Enqueuer hands a started session to the background worker.
type Enqueuer interface {
	EnqueueGeneration(sessionID int64) error
}

type workflowService struct {
	config   cfg.Config
	pr       repository.PostRepository
	sr       repository.SessionRepository
	str      repository.SettingsRepository
	content  ContentGenerator
	image    ImageGenerator
	uploader Uploader
	enqueuer Enqueuer

	mu       sync.Mutex
	limiters map[int64]*rate.Limiter
}

func NewWorkflowService(
	config cfg.Config,
	pr repository.PostRepository,
	sr repository.SessionRepository,
	str repository.SettingsRepository,
	content ContentGenerator,
	image ImageGenerator,
	uploader Uploader,
	enqueuer Enqueuer) WorkflowService {
	return &workflowService{
		config:   config,
		pr:       pr,
		sr:       sr,
		str:      str,
		content:  content,
		image:    image,
		uploader: uploader,
		enqueuer: enqueuer,
		limiters: make(map[int64]*rate.Limiter),
	}
}

// StartRun creates a running session for the user, claims up to batchSize
// queued posts for it, and hands the session to the background worker. The
// session insert is conditional on no other running session, so a second call
// while one is in flight gets ErrAlreadyRunning. Any failure after the claim
// aborts the run: the session finishes as failed and every claimed post is
// released, so a later run can pick them up again.
func (s *workflowService) StartRun(ctx context.Context, userID int64, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = s.config.Generation.DefaultBatchSize
	}

	sessionID, created, err := s.sr.CreateRunning(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !created {
		return 0, models.ErrAlreadyRunning
	}

	posts, err := s.pr.ClaimQueued(ctx, userID, sessionID, batchSize)
	if err != nil {
		if ferr := s.sr.Finish(ctx, sessionID, models.RunStatusFailed); ferr != nil {
			slog.Error(ferr.Error())
		}
		return 0, err
	}

	if err := s.sr.SetTotal(ctx, sessionID, len(posts)); err != nil {
		s.abortRun(ctx, sessionID, posts)
		return 0, err
	}

	// An empty batch is a valid run that finishes immediately and never
	// reaches the worker.
	if len(posts) == 0 {
		if err := s.sr.Finish(ctx, sessionID, models.RunStatusCompleted); err != nil {
			return 0, err
		}
		return sessionID, nil
	}

	if err := s.enqueuer.EnqueueGeneration(sessionID); err != nil {
		slog.Error(fmt.Sprintf("enqueue failed for session %d: %v", sessionID, err))
		s.abortRun(ctx, sessionID, posts)
		return 0, err
	}

	return sessionID, nil
}

// abortRun releases every claimed post back to Untouched, records each as
// failed, and finishes the session as failed. Nothing may stay claimed by a
// session that will never run.
func (s *workflowService) abortRun(ctx context.Context, sessionID int64, posts []*models.Post) {
	for _, post := range posts {
		if err := s.pr.ReleaseClaim(ctx, post.ID); err != nil {
			slog.Error(err.Error())
		}
		if err := s.sr.RecordPost(ctx, sessionID, true, 0, 0, 0, 0); err != nil {
			slog.Error(err.Error())
		}
	}
	if err := s.sr.Finish(ctx, sessionID, models.RunStatusFailed); err != nil {
		slog.Error(err.Error())
	}
}

// ProcessSession works through the session's claimed posts in claim order,
// one post at a time. A single post's failure is isolated: the post reverts
// to Untouched and the loop moves on.
func (s *workflowService) ProcessSession(ctx context.Context, sessionID int64) error {
	session, exists, err := s.sr.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: session %d", models.ErrNotFound, sessionID)
	}
	if session.RunStatus != models.RunStatusRunning {
		return nil
	}

	posts, err := s.pr.ListBySessionID(ctx, sessionID)
	if err != nil {
		if ferr := s.sr.Finish(ctx, sessionID, models.RunStatusFailed); ferr != nil {
			slog.Error(ferr.Error())
		}
		return err
	}

	llmKey, imageKey, opts := s.providerSettings(ctx, session.UserID)
	if llmKey == "" {
		slog.Error(fmt.Sprintf("session %d: no language model key configured", sessionID))
		s.abortRun(ctx, sessionID, posts)
		return nil
	}

	for _, post := range posts {
		if post.Status != models.PostStatusQueue {
			continue
		}
		s.processPost(ctx, session, post, llmKey, imageKey, opts)
	}

	return s.sr.Finish(ctx, sessionID, models.RunStatusCompleted)
}

func (s *workflowService) processPost(ctx context.Context, session *models.GenerationSession, post *models.Post, llmKey, imageKey string, opts ImageOptions) {
	cctx, cancel := context.WithTimeout(ctx, s.config.Generation.CallTimeout)
	content, tokens, err := s.content.Generate(cctx, post, llmKey)
	cancel()
	if err != nil {
		// Unrecoverable for this post: back to Untouched so it can be
		// re-queued manually, then on to the next one.
		slog.Error(fmt.Sprintf("content generation failed for post %d: %v", post.ID, err))
		if rerr := s.pr.ReleaseClaim(ctx, post.ID); rerr != nil {
			slog.Error(rerr.Error())
		}
		if rerr := s.sr.RecordPost(ctx, session.ID, true, 0, 0, 0, 0); rerr != nil {
			slog.Error(rerr.Error())
		}
		return
	}

	post.SetVariants(content.Variants)
	post.SetImagePrompts(content.ImagePrompts)

	// Images are best-effort: a failed slot leaves its URL empty and the post
	// still reaches generated.
	limiter := s.limiter(session.UserID)
	imagesGenerated, imagesFailed := 0, 0
	for i, prompt := range post.ImagePrompts() {
		if err := limiter.Wait(ctx); err != nil {
			imagesFailed++
			continue
		}

		ictx, cancel := context.WithTimeout(ctx, s.config.Generation.CallTimeout)
		imageBytes, err := s.image.Generate(ictx, prompt, imageKey, opts)
		cancel()
		if err != nil {
			slog.Error(fmt.Sprintf("image generation failed for post %d slot %d: %v", post.ID, i+1, err))
			imagesFailed++
			continue
		}

		key := imageKeyFor(post, i+1, opts.OutputFormat)
		uctx, cancel := context.WithTimeout(ctx, s.config.Generation.CallTimeout)
		url, err := s.uploader.Upload(uctx, key, imageBytes)
		cancel()
		if err != nil {
			slog.Error(fmt.Sprintf("upload failed for post %d slot %d: %v", post.ID, i+1, err))
			imagesFailed++
			continue
		}

		post.SetImageURL(i+1, url)
		imagesGenerated++
	}

	if err := s.pr.UpdateGenerated(ctx, post); err != nil {
		slog.Error(fmt.Sprintf("persisting generated post %d failed: %v", post.ID, err))
		if rerr := s.pr.ReleaseClaim(ctx, post.ID); rerr != nil {
			slog.Error(rerr.Error())
		}
		if rerr := s.sr.RecordPost(ctx, session.ID, true, tokens, imagesGenerated, imagesFailed, 0); rerr != nil {
			slog.Error(rerr.Error())
		}
		return
	}

	cost := float64(tokens)/1000*costPerThousandTokens + float64(imagesGenerated)*costPerImage
	if err := s.sr.RecordPost(ctx, session.ID, false, tokens, imagesGenerated, imagesFailed, cost); err != nil {
		slog.Error(err.Error())
	}
}

func (s *workflowService) GetStatus(ctx context.Context, userID int64) (*transfer.GenerationStatus, error) {
	session, exists, err := s.sr.GetRunning(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return &transfer.GenerationStatus{Running: false}, nil
	}

	return &transfer.GenerationStatus{
		Running:   true,
		SessionID: session.ID,
		Processed: session.ProcessedPosts,
		Total:     session.TotalPosts,
	}, nil
}

func (s *workflowService) GetSession(ctx context.Context, sessionID int64) (*models.GenerationSession, error) {
	session, exists, err := s.sr.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: session %d", models.ErrNotFound, sessionID)
	}
	return session, nil
}

// limiter paces image-model calls per user, not per post, so the provider's
// rate limit holds even if the concurrency bound is ever raised.
func (s *workflowService) limiter(userID int64) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[userID]
	if !ok {
		l = rate.NewLimiter(rate.Every(s.config.Generation.ImageCallDelay), 1)
		s.limiters[userID] = l
	}
	return l
}

// providerSettings merges per-user settings with the environment defaults.
// Stored keys are encrypted; a key that fails to decrypt falls back to the
// environment default.
func (s *workflowService) providerSettings(ctx context.Context, userID int64) (llmKey, imageKey string, opts ImageOptions) {
	llmKey = s.config.LLM.APIKey
	imageKey = s.config.ImageGen.APIKey

	settings, exists, err := s.str.GetByUserID(ctx, userID)
	if err != nil || !exists {
		return llmKey, imageKey, ImageOptions{}
	}

	if settings.LLMAPIKey != "" {
		if key, err := utils.Decrypt(settings.LLMAPIKey, []byte(s.config.SecretKey)); err == nil {
			llmKey = key
		}
	}
	if settings.ImageAPIKey != "" {
		if key, err := utils.Decrypt(settings.ImageAPIKey, []byte(s.config.SecretKey)); err == nil {
			imageKey = key
		}
	}
	opts = ImageOptions{
		AspectRatio: settings.AspectRatio,
		Model:       settings.ImageProvider,
		Style:       settings.ImageStyle,
	}
	return llmKey, imageKey, opts
}

// Deterministic object keys make re-uploads overwrite rather than duplicate.
func imageKeyFor(post *models.Post, slot int, outputFormat string) string {
	ext := "png"
	if outputFormat != "" {
		ext = outputFormat
	}
	return fmt.Sprintf("posts/%s/image_%d.%s", post.PostID, slot, ext)
}
