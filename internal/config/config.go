package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every section of the service configuration.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	AI      AIConfig
	Speech  SpeechConfig
	Debug   bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	storage, err := loadStorageConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig(ai)
	if err != nil {
		return nil, err
	}

	debug, err := parseBoolEnv("KPCHAT_DEBUG", false)
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Storage: storage, AI: ai, Speech: speech, Debug: debug}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// StorageConfig locates the local database file.
type StorageConfig struct {
	Path string
}

func loadStorageConfig() (StorageConfig, error) {
	path := strings.TrimSpace(os.Getenv("KPCHAT_DB_PATH"))
	if path != "" {
		return StorageConfig{Path: path}, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return StorageConfig{Path: filepath.Join("data", "kpchat.db")}, nil
	}
	return StorageConfig{Path: filepath.Join(home, ".kpchat", "kpchat.db")}, nil
}

// Completion providers.
const (
	ProviderGemini = "gemini"
	ProviderArk    = "ark"
)

// AIConfig describes the completion collaborator.
type AIConfig struct {
	Provider     string
	GeminiAPIKey string
	Timeout      time.Duration

	// Ark credentials, used when Provider is "ark".
	ArkAPIKey    string
	ArkAccessKey string
	ArkSecretKey string
	ArkModel     string
	ArkBaseURL   string
	ArkRegion    string
}

// Enabled reports whether the selected provider has usable credentials.
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderGemini:
		return c.GeminiAPIKey != ""
	case ProviderArk:
		return c.ArkModel != "" && (c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != ""))
	}
	return false
}

func loadAIConfig() (AIConfig, error) {
	provider := strings.TrimSpace(os.Getenv("AI_PROVIDER"))
	if provider == "" {
		provider = ProviderGemini
	}
	if provider != ProviderGemini && provider != ProviderArk {
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value: %q", provider)
	}

	timeoutSeconds := 60
	if override, err := parseOptionalIntEnv("AI_TIMEOUT_SECONDS"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return AIConfig{}, fmt.Errorf("AI_TIMEOUT_SECONDS must be positive, got %d", *override)
		}
		timeoutSeconds = *override
	}

	return AIConfig{
		Provider:     provider,
		GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		Timeout:      time.Duration(timeoutSeconds) * time.Second,
		ArkAPIKey:    strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		ArkAccessKey: strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		ArkSecretKey: strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		ArkModel:     strings.TrimSpace(os.Getenv("ARK_MODEL")),
		ArkBaseURL:   getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		ArkRegion:    getEnvOrDefault("ARK_REGION", "cn-beijing"),
	}, nil
}

// SpeechConfig describes the optional speech adapters.
type SpeechConfig struct {
	APIKey   string
	ASRModel string
	TTSModel string
	Voice    string
	Enabled  bool
}

func loadSpeechConfig(ai AIConfig) (SpeechConfig, error) {
	apiKey := strings.TrimSpace(os.Getenv("SPEECH_API_KEY"))
	if apiKey == "" {
		// Fall back to the completion key; speech rides the same account.
		apiKey = ai.GeminiAPIKey
	}

	enabled, err := parseBoolEnv("SPEECH_ENABLED", apiKey != "")
	if err != nil {
		return SpeechConfig{}, err
	}

	return SpeechConfig{
		APIKey:   apiKey,
		ASRModel: getEnvOrDefault("SPEECH_ASR_MODEL", "gemini-2.5-flash"),
		TTSModel: getEnvOrDefault("SPEECH_TTS_MODEL", "gemini-2.5-flash-preview-tts"),
		Voice:    getEnvOrDefault("SPEECH_TTS_VOICE", "Kore"),
		Enabled:  enabled && apiKey != "",
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
