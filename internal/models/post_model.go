package models

import "time"

type Post struct {
	ID     int64  `db:"id" json:"id"`
	PostID string `db:"post_id" json:"post_id"`
	UserID int64  `db:"user_id" json:"user_id"`
	Status string `db:"status" json:"status"`

	Instruction string `db:"instruction" json:"instruction"`
	PostType    string `db:"post_type" json:"post_type"`
	Template    string `db:"template" json:"template"`
	Purpose     string `db:"purpose" json:"purpose"`
	Sample      string `db:"sample" json:"sample"`
	Keywords    string `db:"keywords" json:"keywords"`

	Variant1 string `db:"variant_1" json:"variant_1"`
	Variant2 string `db:"variant_2" json:"variant_2"`
	Variant3 string `db:"variant_3" json:"variant_3"`

	ImagePrompt1 string `db:"image_prompt_1" json:"image_prompt_1"`
	ImagePrompt2 string `db:"image_prompt_2" json:"image_prompt_2"`
	ImagePrompt3 string `db:"image_prompt_3" json:"image_prompt_3"`

	ImageURL1 string `db:"image_url_1" json:"image_url_1"`
	ImageURL2 string `db:"image_url_2" json:"image_url_2"`
	ImageURL3 string `db:"image_url_3" json:"image_url_3"`

	SelectedVariant int `db:"selected_variant" json:"selected_variant"`
	SelectedImage   int `db:"selected_image" json:"selected_image"`

	SessionID   *int64     `db:"session_id" json:"session_id,omitempty"`
	ScheduledAt *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Untouched is stored as the empty string so a fresh row needs no status value.
const (
	PostStatusUntouched = ""
	PostStatusQueue     = "Queue"
	PostStatusGenerated = "generated"
	PostStatusApproved  = "Approved"
	PostStatusScheduled = "Scheduled"
	PostStatusRejected  = "Rejected"
	PostStatusPosted    = "Posted"
)

// StatusFromName maps the wire-level status name to its stored value.
func StatusFromName(name string) (string, bool) {
	switch name {
	case "Untouched":
		return PostStatusUntouched, true
	case PostStatusQueue, PostStatusGenerated, PostStatusApproved,
		PostStatusScheduled, PostStatusRejected, PostStatusPosted:
		return name, true
	}
	return "", false
}

func (p *Post) SetVariants(variants []string) {
	p.Variant1, p.Variant2, p.Variant3 = variants[0], variants[1], variants[2]
}

func (p *Post) SetImagePrompts(prompts []string) {
	p.ImagePrompt1, p.ImagePrompt2, p.ImagePrompt3 = prompts[0], prompts[1], prompts[2]
}

func (p *Post) ImagePrompts() [3]string {
	return [3]string{p.ImagePrompt1, p.ImagePrompt2, p.ImagePrompt3}
}

func (p *Post) SetImageURL(slot int, url string) {
	switch slot {
	case 1:
		p.ImageURL1 = url
	case 2:
		p.ImageURL2 = url
	case 3:
		p.ImageURL3 = url
	}
}
