package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"

	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

type StoreConfig struct {
	Backend     string
	DBPath      string // sqlite file
	DatabaseURL string // postgres DSN
}

type LLMConfig struct {
	Provider        string
	Model           string
	BaseURL         string
	OpenAIAPIKey    string
	GeminiAPIKey    string
	AnthropicAPIKey string
}

type Config struct {
	HTTPPort      string
	LogLevel      string
	PromptsFile   string
	SessionSecret string
	Store         StoreConfig
	LLM           LLMConfig
}

var AppConfig Config

// LoadConfig populates AppConfig from .env and the environment, exiting on invalid values.
func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	AppConfig = cfg
}

// Load reads configuration from the environment only.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:      getEnv("HTTP_PORT", "5002"),
		LogLevel:      strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		PromptsFile:   getEnv("PROMPTS_FILE", "prompts.json"),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		Store: StoreConfig{
			Backend:     strings.ToLower(getEnv("STORE_BACKEND", defaultBackend())),
			DBPath:      getEnv("DB_PATH", "/data/test.db"),
			DatabaseURL: getEnv("DATABASE_URL", ""),
		},
		LLM: LLMConfig{
			Provider:        strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
			Model:           getEnv("LLM_MODEL", ""),
			BaseURL:         getEnv("LLM_BASE_URL", ""),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		},
	}

	if cfg.SessionSecret == "" {
		// Random per process, so sessions do not survive a restart.
		cfg.SessionSecret = uuid.NewString()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite, BackendMemory:
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=%s", BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}
	return nil
}

// defaultBackend honours the legacy USE_SQLITE switch.
func defaultBackend() string {
	if strings.ToLower(getEnv("USE_SQLITE", "true")) == "true" {
		return BackendSQLite
	}
	return BackendMemory
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
