package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/maheshrc27/postforge/internal/models"
	"github.com/maheshrc27/postforge/internal/transfer"
)

type fakePostRepo struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]*models.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[int64]*models.Post)}
}

func (r *fakePostRepo) add(post *models.Post) *models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	post.ID = r.nextID
	if post.PostID == "" {
		post.PostID = fmt.Sprintf("p%d", post.ID)
	}
	r.posts[post.ID] = post
	return post
}

func (r *fakePostRepo) sorted() []*models.Post {
	posts := make([]*models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, false, nil
	}
	clone := *post
	return &clone, true, nil
}

func (r *fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	return r.add(post).ID, nil
}

func (r *fakePostRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var posts []*models.Post
	for _, p := range r.sorted() {
		if p.UserID == userID {
			clone := *p
			posts = append(posts, &clone)
		}
	}
	return posts, nil
}

func (r *fakePostRepo) ListByStatus(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var posts []*models.Post
	for _, p := range r.sorted() {
		if p.UserID == userID && p.Status == status {
			clone := *p
			posts = append(posts, &clone)
		}
	}
	return posts, nil
}

func (r *fakePostRepo) ListBySessionID(ctx context.Context, sessionID int64) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var posts []*models.Post
	for _, p := range r.sorted() {
		if p.SessionID != nil && *p.SessionID == sessionID {
			clone := *p
			posts = append(posts, &clone)
		}
	}
	return posts, nil
}

func (r *fakePostRepo) ListDue(ctx context.Context, now time.Time) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var posts []*models.Post
	for _, p := range r.sorted() {
		if p.Status == models.PostStatusScheduled && p.ScheduledAt != nil && !p.ScheduledAt.After(now) {
			clone := *p
			posts = append(posts, &clone)
		}
	}
	return posts, nil
}

func (r *fakePostRepo) ClaimQueued(ctx context.Context, userID, sessionID int64, limit int) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var claimed []*models.Post
	for _, p := range r.sorted() {
		if len(claimed) == limit {
			break
		}
		if p.UserID == userID && p.Status == models.PostStatusQueue && p.SessionID == nil {
			sid := sessionID
			p.SessionID = &sid
			clone := *p
			claimed = append(claimed, &clone)
		}
	}
	return claimed, nil
}

func (r *fakePostRepo) ReleaseClaim(ctx context.Context, postID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.posts[postID]; ok {
		p.Status = models.PostStatusUntouched
		p.SessionID = nil
	}
	return nil
}

func (r *fakePostRepo) UpdateGenerated(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[post.ID]
	if !ok {
		return sql.ErrNoRows
	}
	p.Status = models.PostStatusGenerated
	p.Variant1, p.Variant2, p.Variant3 = post.Variant1, post.Variant2, post.Variant3
	p.ImagePrompt1, p.ImagePrompt2, p.ImagePrompt3 = post.ImagePrompt1, post.ImagePrompt2, post.ImagePrompt3
	p.ImageURL1, p.ImageURL2, p.ImageURL3 = post.ImageURL1, post.ImageURL2, post.ImageURL3
	return nil
}

func (r *fakePostRepo) UpdateStatus(ctx context.Context, status string, postID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.posts[postID]; ok {
		p.Status = status
	}
	return nil
}

func (r *fakePostRepo) UpdateScheduled(ctx context.Context, postID int64, scheduledAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.posts[postID]; ok {
		p.Status = models.PostStatusScheduled
		at := scheduledAt
		p.ScheduledAt = &at
	}
	return nil
}

func (r *fakePostRepo) UpdateSelection(ctx context.Context, postID int64, variant, image int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.posts[postID]; ok {
		p.SelectedVariant = variant
		p.SelectedImage = image
	}
	return nil
}

func (r *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	return ok && p.UserID == userID, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[int64]*models.GenerationSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[int64]*models.GenerationSession)}
}

func (r *fakeSessionRepo) CreateRunning(ctx context.Context, userID int64) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.UserID == userID && s.RunStatus == models.RunStatusRunning {
			return 0, false, nil
		}
	}

	r.nextID++
	r.sessions[r.nextID] = &models.GenerationSession{
		ID:        r.nextID,
		UserID:    userID,
		RunStatus: models.RunStatusRunning,
		StartedAt: time.Now(),
	}
	return r.nextID, true, nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id int64) (*models.GenerationSession, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false, nil
	}
	clone := *s
	return &clone, true, nil
}

func (r *fakeSessionRepo) GetRunning(ctx context.Context, userID int64) (*models.GenerationSession, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.UserID == userID && s.RunStatus == models.RunStatusRunning {
			clone := *s
			return &clone, true, nil
		}
	}
	return nil, false, nil
}

func (r *fakeSessionRepo) SetTotal(ctx context.Context, id int64, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		s.TotalPosts = total
	}
	return nil
}

func (r *fakeSessionRepo) RecordPost(ctx context.Context, id int64, failed bool, tokens int64, imagesGenerated, imagesFailed int, cost float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return sql.ErrNoRows
	}
	if failed {
		s.FailedPosts++
	} else {
		s.ProcessedPosts++
	}
	s.TokensUsed += tokens
	s.ImagesGenerated += imagesGenerated
	s.ImagesFailed += imagesFailed
	s.EstimatedCost += cost
	return nil
}

func (r *fakeSessionRepo) Finish(ctx context.Context, id int64, runStatus string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		s.RunStatus = runStatus
		now := time.Now()
		s.FinishedAt = &now
	}
	return nil
}

type fakeSettingsRepo struct {
	mu       sync.Mutex
	nextID   int64
	settings map[int64]*models.Settings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[int64]*models.Settings)}
}

func (r *fakeSettingsRepo) Create(ctx context.Context, settings *models.Settings) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	settings.ID = r.nextID
	clone := *settings
	r.settings[settings.UserID] = &clone
	return r.nextID, nil
}

func (r *fakeSettingsRepo) GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.settings[userID]
	if !ok {
		return nil, false, nil
	}
	clone := *s
	return &clone, true, nil
}

func (r *fakeSettingsRepo) UpdateSettings(ctx context.Context, s *models.Settings, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *s
	clone.UserID = userID
	r.settings[userID] = &clone
	return nil
}

// fakeContent answers with a fixed set of variants and prompts unless the
// post id is marked to fail.
type fakeContent struct {
	mu       sync.Mutex
	failFor  map[int64]error
	keysSeen []string
	tokens   int64
}

func newFakeContent() *fakeContent {
	return &fakeContent{failFor: make(map[int64]error), tokens: 200}
}

func (f *fakeContent) Generate(ctx context.Context, post *models.Post, apiKey string) (*transfer.PostContent, int64, error) {
	f.mu.Lock()
	f.keysSeen = append(f.keysSeen, apiKey)
	err := f.failFor[post.ID]
	f.mu.Unlock()

	if err != nil {
		return nil, 0, err
	}

	return &transfer.PostContent{
		Variants: []string{
			fmt.Sprintf("variant one for %s", post.PostID),
			fmt.Sprintf("variant two for %s", post.PostID),
			fmt.Sprintf("variant three for %s", post.PostID),
		},
		ImagePrompts: []string{
			fmt.Sprintf("prompt one for %s", post.PostID),
			fmt.Sprintf("prompt two for %s", post.PostID),
			fmt.Sprintf("prompt three for %s", post.PostID),
		},
	}, f.tokens, nil
}

type fakeImage struct {
	mu        sync.Mutex
	failWhen  func(prompt string) error
	callCount int
}

func (f *fakeImage) Generate(ctx context.Context, prompt, apiKey string, opts ImageOptions) ([]byte, error) {
	f.mu.Lock()
	f.callCount++
	fail := f.failWhen
	f.mu.Unlock()

	if fail != nil {
		if err := fail(prompt); err != nil {
			return nil, err
		}
	}
	return []byte("image bytes for " + prompt), nil
}

type fakeEnqueuer struct {
	mu       sync.Mutex
	err      error
	sessions []int64
}

func (f *fakeEnqueuer) EnqueueGeneration(sessionID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.sessions = append(f.sessions, sessionID)
	return nil
}

type fakeUploader struct {
	mu   sync.Mutex
	err  error
	keys []string
}

func (f *fakeUploader) Upload(ctx context.Context, key string, file []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://cdn.example.com/" + key, nil
}
