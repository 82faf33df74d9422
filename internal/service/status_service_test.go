package service

import (
	"context"
	"testing"
	"time"

	"github.com/maheshrc27/postforge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPost(repo *fakePostRepo, userID int64, status string) *models.Post {
	return repo.add(&models.Post{
		UserID:      userID,
		Status:      status,
		Instruction: "write about product launch",
	})
}

func TestApplyTransitionLegal(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
	}{
		{"untouched to queue", models.PostStatusUntouched, models.PostStatusQueue},
		{"queue to untouched", models.PostStatusQueue, models.PostStatusUntouched},
		{"generated to approved", models.PostStatusGenerated, models.PostStatusApproved},
		{"generated to rejected", models.PostStatusGenerated, models.PostStatusRejected},
		{"scheduled to posted", models.PostStatusScheduled, models.PostStatusPosted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakePostRepo()
			s := NewStatusService(repo)
			post := seedPost(repo, 1, tt.from)

			updated, err := s.ApplyTransition(context.Background(), 1, post.ID, tt.to, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.to, updated.Status)

			stored, _, _ := repo.GetByID(context.Background(), post.ID)
			assert.Equal(t, tt.to, stored.Status)
		})
	}
}

func TestApplyTransitionIllegal(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
	}{
		{"untouched to approved", models.PostStatusUntouched, models.PostStatusApproved},
		{"queue to posted", models.PostStatusQueue, models.PostStatusPosted},
		{"generated to posted", models.PostStatusGenerated, models.PostStatusPosted},
		{"approved to posted", models.PostStatusApproved, models.PostStatusPosted},
		{"rejected to approved", models.PostStatusRejected, models.PostStatusApproved},
		{"posted to queue", models.PostStatusPosted, models.PostStatusQueue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakePostRepo()
			s := NewStatusService(repo)
			post := seedPost(repo, 1, tt.from)

			_, err := s.ApplyTransition(context.Background(), 1, post.ID, tt.to, nil)
			assert.ErrorIs(t, err, models.ErrIllegalTransition)

			stored, _, _ := repo.GetByID(context.Background(), post.ID)
			assert.Equal(t, tt.from, stored.Status)
		})
	}
}

func TestApplyTransitionIdempotent(t *testing.T) {
	repo := newFakePostRepo()
	s := NewStatusService(repo)
	post := seedPost(repo, 1, models.PostStatusApproved)

	updated, err := s.ApplyTransition(context.Background(), 1, post.ID, models.PostStatusApproved, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusApproved, updated.Status)
}

func TestApplyTransitionOwnership(t *testing.T) {
	repo := newFakePostRepo()
	s := NewStatusService(repo)
	post := seedPost(repo, 1, models.PostStatusGenerated)

	_, err := s.ApplyTransition(context.Background(), 2, post.ID, models.PostStatusApproved, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = s.ApplyTransition(context.Background(), 1, 999, models.PostStatusApproved, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestApplyTransitionScheduleRequiresTimestamp(t *testing.T) {
	repo := newFakePostRepo()
	s := NewStatusService(repo)
	post := seedPost(repo, 1, models.PostStatusApproved)

	_, err := s.ApplyTransition(context.Background(), 1, post.ID, models.PostStatusScheduled, nil)
	require.Error(t, err)

	stored, _, _ := repo.GetByID(context.Background(), post.ID)
	assert.Equal(t, models.PostStatusApproved, stored.Status)
}

func TestApplyTransitionScheduledAtRoundTrip(t *testing.T) {
	repo := newFakePostRepo()
	s := NewStatusService(repo)
	post := seedPost(repo, 1, models.PostStatusApproved)

	at := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)
	updated, err := s.ApplyTransition(context.Background(), 1, post.ID, models.PostStatusScheduled, &at)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusScheduled, updated.Status)

	stored, _, _ := repo.GetByID(context.Background(), post.ID)
	require.NotNil(t, stored.ScheduledAt)
	assert.True(t, stored.ScheduledAt.Equal(at))
}

func TestApplyTransitionBackToUntouchedClearsClaim(t *testing.T) {
	repo := newFakePostRepo()
	s := NewStatusService(repo)
	post := seedPost(repo, 1, models.PostStatusQueue)
	sid := int64(7)
	post.SessionID = &sid

	updated, err := s.ApplyTransition(context.Background(), 1, post.ID, models.PostStatusUntouched, nil)
	require.NoError(t, err)
	assert.Nil(t, updated.SessionID)

	stored, _, _ := repo.GetByID(context.Background(), post.ID)
	assert.Equal(t, models.PostStatusUntouched, stored.Status)
	assert.Nil(t, stored.SessionID)
}

func TestApplyBulkMixedValidity(t *testing.T) {
	repo := newFakePostRepo()
	s := NewStatusService(repo)

	ok1 := seedPost(repo, 1, models.PostStatusGenerated)
	bad := seedPost(repo, 1, models.PostStatusPosted)
	ok2 := seedPost(repo, 1, models.PostStatusGenerated)

	ids := []int64{ok1.ID, bad.ID, ok2.ID, 999}
	result, err := s.ApplyBulk(context.Background(), 1, ids, models.PostStatusApproved, nil)
	require.NoError(t, err)

	assert.Equal(t, []int64{ok1.ID, ok2.ID}, result.Succeeded)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, bad.ID, result.Failed[0].ID)
	assert.Equal(t, int64(999), result.Failed[1].ID)

	stored1, _, _ := repo.GetByID(context.Background(), ok1.ID)
	stored2, _, _ := repo.GetByID(context.Background(), ok2.ID)
	assert.Equal(t, models.PostStatusApproved, stored1.Status)
	assert.Equal(t, models.PostStatusApproved, stored2.Status)

	storedBad, _, _ := repo.GetByID(context.Background(), bad.ID)
	assert.Equal(t, models.PostStatusPosted, storedBad.Status)
}
