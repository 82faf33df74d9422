package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/postforge/internal/models"
	"github.com/maheshrc27/postforge/internal/repository"
	"github.com/maheshrc27/postforge/internal/service"
)

// PublishJob moves scheduled posts whose time has come to Posted. It runs on
// a cron tick and goes through the state machine so the transition table
// stays the single source of truth.
type PublishJob struct {
	pr repository.PostRepository
	ss service.StatusService
}

func NewPublishJob(pr repository.PostRepository, ss service.StatusService) *PublishJob {
	return &PublishJob{
		pr: pr,
		ss: ss,
	}
}

func (j *PublishJob) PublishDue() {
	ctx := context.Background()

	posts, err := j.pr.ListDue(ctx, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, post := range posts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(post *models.Post) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if _, err := j.ss.ApplyTransition(ctx, post.UserID, post.ID, models.PostStatusPosted, nil); err != nil {
				slog.Error(err.Error())
			}
		}(post)
	}

	wg.Wait()
}
