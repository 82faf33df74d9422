package transfer

type GeminiRequest struct {
	Contents []Content `json:"contents"`
}

type Content struct {
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

type GeminiResponse struct {
	Candidates []Candidate  `json:"candidates"`
	Error      *GeminiError `json:"error,omitempty"`
}

type Candidate struct {
	Content Content `json:"content"`
}

type GeminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// PostContent is the JSON shape the language model is required to return:
// exactly three text variants and three matching image prompts.
type PostContent struct {
	Variants     []string `json:"variants"`
	ImagePrompts []string `json:"image_prompts"`
}
