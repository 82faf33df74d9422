package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/postforge/internal/models"
	"github.com/maheshrc27/postforge/internal/repository"
	"github.com/maheshrc27/postforge/internal/transfer"
)

type StatusService interface {
	ApplyTransition(ctx context.Context, userID, postID int64, target string, scheduledAt *time.Time) (*models.Post, error)
	ApplyBulk(ctx context.Context, userID int64, postIDs []int64, target string, scheduledAt *time.Time) (*transfer.BulkResult, error)
}

type statusService struct {
	pr repository.PostRepository
}

func NewStatusService(pr repository.PostRepository) StatusService {
	return &statusService{pr: pr}
}

// legalTransitions is the full lifecycle table. Rejected is terminal here;
// a rejected post comes back only through an explicit external re-queue.
var legalTransitions = map[string][]string{
	models.PostStatusUntouched: {models.PostStatusQueue},
	models.PostStatusQueue:     {models.PostStatusGenerated, models.PostStatusUntouched},
	models.PostStatusGenerated: {models.PostStatusApproved, models.PostStatusRejected},
	models.PostStatusApproved:  {models.PostStatusScheduled},
	models.PostStatusScheduled: {models.PostStatusPosted},
	models.PostStatusRejected:  {},
	models.PostStatusPosted:    {},
}

func transitionAllowed(from, to string) bool {
	for _, t := range legalTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func (s *statusService) ApplyTransition(ctx context.Context, userID, postID int64, target string, scheduledAt *time.Time) (*models.Post, error) {
	post, exists, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists || post.UserID != userID {
		return nil, fmt.Errorf("%w: post %d", models.ErrNotFound, postID)
	}

	// Re-applying the current status is a no-op success. Duplicate clicks and
	// retried requests must not surface as errors.
	if post.Status == target {
		return post, nil
	}

	if !transitionAllowed(post.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrIllegalTransition, statusName(post.Status), statusName(target))
	}

	if target == models.PostStatusScheduled {
		if scheduledAt == nil {
			return nil, errors.New("scheduled_at is required to schedule a post")
		}
		if err := s.pr.UpdateScheduled(ctx, post.ID, *scheduledAt); err != nil {
			return nil, err
		}
		post.ScheduledAt = scheduledAt
	} else if target == models.PostStatusUntouched {
		// Dropping back to Untouched also clears the session claim.
		if err := s.pr.ReleaseClaim(ctx, post.ID); err != nil {
			return nil, err
		}
		post.SessionID = nil
	} else {
		if err := s.pr.UpdateStatus(ctx, target, post.ID); err != nil {
			return nil, err
		}
	}

	post.Status = target
	return post, nil
}

// ApplyBulk applies the single-transition rule independently per id. One
// illegal transition never blocks or rolls back the others.
func (s *statusService) ApplyBulk(ctx context.Context, userID int64, postIDs []int64, target string, scheduledAt *time.Time) (*transfer.BulkResult, error) {
	result := &transfer.BulkResult{
		Succeeded: make([]int64, 0, len(postIDs)),
		Failed:    make([]transfer.BulkFailure, 0),
	}

	for _, id := range postIDs {
		_, err := s.ApplyTransition(ctx, userID, id, target, scheduledAt)
		if err != nil {
			slog.Info(fmt.Sprintf("bulk transition failed for post %d: %v", id, err))
			result.Failed = append(result.Failed, transfer.BulkFailure{ID: id, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	return result, nil
}

func statusName(status string) string {
	if status == models.PostStatusUntouched {
		return "Untouched"
	}
	return status
}
