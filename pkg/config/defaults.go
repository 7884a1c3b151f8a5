package config

const (
	defaultStorageBackend = "memory"
	defaultAPIListen      = ":8081"

	defaultClientAPITarget = "http://localhost:8081"

	defaultLLMBaseURL = "https://api.deepseek.com"
	defaultLLMModel   = "deepseek-chat"

	defaultEventTopic = "sitelog.notes"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Backend: defaultStorageBackend,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		LLM: LLMConfig{
			BaseURL: defaultLLMBaseURL,
			Model:   defaultLLMModel,
		},
		EventStream: EventStreamConfig{
			Topic: defaultEventTopic,
		},
	}
}
