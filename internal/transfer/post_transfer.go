package transfer

type PostCreation struct {
	Instruction string `json:"instruction"`
	PostType    string `json:"post_type"`
	Template    string `json:"template"`
	Purpose     string `json:"purpose"`
	Sample      string `json:"sample"`
	Keywords    string `json:"keywords"`
	Queue       bool   `json:"queue"`
}

type StatusUpdate struct {
	Status      string `json:"status"`
	ScheduledAt string `json:"scheduled_at,omitempty"`
}

type BulkStatusUpdate struct {
	PostIDs     []int64 `json:"post_ids"`
	Status      string  `json:"status"`
	ScheduledAt string  `json:"scheduled_at,omitempty"`
}

type BulkFailure struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

type BulkResult struct {
	Succeeded []int64       `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

type SelectionUpdate struct {
	PostID          int64 `json:"post_id"`
	SelectedVariant int   `json:"selected_variant"`
	SelectedImage   int   `json:"selected_image"`
}
