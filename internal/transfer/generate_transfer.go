package transfer

type GenerateRequest struct {
	BatchSize int `json:"batch_size"`
}

type GenerationStatus struct {
	Running   bool  `json:"running"`
	SessionID int64 `json:"session_id,omitempty"`
	Processed int   `json:"processed"`
	Total     int   `json:"total"`
}
