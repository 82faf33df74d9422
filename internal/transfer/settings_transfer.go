package transfer

type SettingsUpdate struct {
	LLMAPIKey     string `json:"llm_api_key"`
	ImageAPIKey   string `json:"image_api_key"`
	ImageProvider string `json:"image_provider"`
	AspectRatio   string `json:"aspect_ratio"`
	ImageStyle    string `json:"image_style"`
}

type ProvidersConfigured struct {
	LLM        bool `json:"llm"`
	Image      bool `json:"image"`
	Configured bool `json:"configured"`
}
