package models

import "time"

// GenerationSession is one bounded run of the content pipeline over a claimed
// batch of posts for a single user. At most one session per user may be in
// run_status 'running' at a time.
type GenerationSession struct {
	ID              int64      `db:"id" json:"id"`
	UserID          int64      `db:"user_id" json:"user_id"`
	RunStatus       string     `db:"run_status" json:"run_status"`
	TotalPosts      int        `db:"total_posts" json:"total_posts"`
	ProcessedPosts  int        `db:"processed_posts" json:"processed_posts"`
	FailedPosts     int        `db:"failed_posts" json:"failed_posts"`
	TokensUsed      int64      `db:"tokens_used" json:"tokens_used"`
	ImagesGenerated int        `db:"images_generated" json:"images_generated"`
	ImagesFailed    int        `db:"images_failed" json:"images_failed"`
	EstimatedCost   float64    `db:"estimated_cost" json:"estimated_cost"`
	StartedAt       time.Time  `db:"started_at" json:"started_at"`
	FinishedAt      *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)
