package transfer

type ImageRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Model          string `json:"model,omitempty"`
	AspectRatio    string `json:"aspect_ratio,omitempty"`
	OutputFormat   string `json:"output_format,omitempty"`
	Style          string `json:"style,omitempty"`
}

type ImageResponse struct {
	Image string      `json:"image"`
	Error *ImageError `json:"error,omitempty"`
}

type ImageError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
