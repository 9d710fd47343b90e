package config

import "os"

// AIModels defines which models to use for different tasks
type AIModels struct {
	// Chat is for question generation, evaluation, and feedback
	Chat string `json:"chat"`

	// Vision is for the camera-derived icebreaker question
	Vision string `json:"vision"`

	// Speech is for text-to-speech synthesis
	Speech string `json:"speech"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey    string   `json:"-"` // Never serialize
	BaseURL   string   `json:"baseUrl"`
	Models    AIModels `json:"models"`
	TimeoutMS int      `json:"timeoutMs"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Models: AIModels{
			Chat:   getEnvOrDefault("OPENAI_MODEL_CHAT", "gpt-4o-mini"),
			Vision: getEnvOrDefault("OPENAI_MODEL_VISION", "gpt-4o-mini"),
			Speech: getEnvOrDefault("OPENAI_MODEL_SPEECH", "tts-1"),
		},
		TimeoutMS: 10000, // 10 second default timeout
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
