package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	Env           string        `yaml:"env"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
	LLM           LLMConfig     `yaml:"llm"`
	Worker        WorkerConfig  `yaml:"worker"`
}

// LLMConfig selects and configures the content generation provider.
type LLMConfig struct {
	Provider   string           `yaml:"provider"` // "openrouter" or "ollama"
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Ollama     OllamaConfig     `yaml:"ollama"`
}

type OpenRouterConfig struct {
	BaseURL                 string        `yaml:"base_url"`
	APIKey                  string        `yaml:"api_key"`
	Model                   string        `yaml:"model"`
	Referer                 string        `yaml:"referer"`
	Title                   string        `yaml:"title"`
	Timeout                 time.Duration `yaml:"timeout"`
	Retries                 int           `yaml:"retries"`
	Backoff                 time.Duration `yaml:"backoff"`
	CircuitFailureThreshold int           `yaml:"circuit_failure_threshold"`
	CircuitReset            time.Duration `yaml:"circuit_reset"`
}

type OllamaConfig struct {
	BaseURL                 string        `yaml:"base_url"`
	Model                   string        `yaml:"model"`
	Timeout                 time.Duration `yaml:"timeout"`
	Retries                 int           `yaml:"retries"`
	Backoff                 time.Duration `yaml:"backoff"`
	CircuitFailureThreshold int           `yaml:"circuit_failure_threshold"`
	CircuitReset            time.Duration `yaml:"circuit_reset"`
}

type WorkerConfig struct {
	Count int `yaml:"count"`
	// InterCallDelay spaces out sequential generation calls in bulk jobs to
	// avoid hammering the upstream provider.
	InterCallDelay time.Duration `yaml:"inter_call_delay"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("PREPDECK_ADDR", ":8080"),
		Env:           getEnv("PREPDECK_ENV", "development"),
		JWTSecret:     getEnv("PREPDECK_JWT_SECRET", "supersecretkey"),
		APITimeout:    60 * time.Second,
		DatabasePath:  getEnv("PREPDECK_DATABASE_PATH", "prepdeck.db"),
		TokenDuration: 7 * 24 * time.Hour,
		LLM: LLMConfig{
			Provider: getEnv("PREPDECK_LLM_PROVIDER", "openrouter"),
			OpenRouter: OpenRouterConfig{
				BaseURL:                 getEnv("PREPDECK_OPENROUTER_URL", "https://openrouter.ai/api/v1"),
				APIKey:                  getEnv("OPENROUTER_API_KEY", ""),
				Model:                   getEnv("PREPDECK_OPENROUTER_MODEL", "openai/gpt-4o-mini"),
				Referer:                 getEnv("PREPDECK_SITE_URL", "http://localhost:3000"),
				Title:                   getEnv("PREPDECK_SITE_TITLE", "Prepdeck"),
				Timeout:                 45 * time.Second,
				Retries:                 2,
				Backoff:                 500 * time.Millisecond,
				CircuitFailureThreshold: 5,
				CircuitReset:            30 * time.Second,
			},
			Ollama: OllamaConfig{
				BaseURL:                 getEnv("PREPDECK_OLLAMA_URL", "http://localhost:11434"),
				Model:                   getEnv("PREPDECK_OLLAMA_MODEL", "llama3"),
				Timeout:                 45 * time.Second,
				Retries:                 2,
				Backoff:                 500 * time.Millisecond,
				CircuitFailureThreshold: 5,
				CircuitReset:            30 * time.Second,
			},
		},
		Worker: WorkerConfig{
			Count:          2,
			InterCallDelay: 2 * time.Second,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
