package models

import "time"

type Settings struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	LLMAPIKey     string    `db:"llm_api_key" json:"llm_api_key"`
	ImageAPIKey   string    `db:"image_api_key" json:"image_api_key"`
	ImageProvider string    `db:"image_provider" json:"image_provider"`
	AspectRatio   string    `db:"aspect_ratio" json:"aspect_ratio"`
	ImageStyle    string    `db:"image_style" json:"image_style"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
