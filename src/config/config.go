package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIKeyPath = "/run/secrets/api_keys/openrouter"
	APIKeyPathEnvVar  = "OPENROUTER_API_KEY_FILE"

	// Analysis modes: OCR the image then analyze the text, or send the
	// image straight to the multimodal model. Alt+Space toggles between
	// them at runtime; this is only the starting mode.
	ModeText   = "text"
	ModeVision = "vision"
)

type Config struct {
	APIKey            string
	APIKeyPath        string
	Model             string
	Providers         []string
	EnableFileLogging bool
	AnalysisMode      string
	DebounceMS        int
	PendingTimeoutSec int
	DoneRevertSec     int
	LabelMaxLen       int
	CopyResult        bool
	StatusSurface     string
}

func Load() (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREEN_CAPTURE_LLM env var as a path to a config file
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	var providers []string
	if providersStr := os.Getenv("PROVIDERS"); providersStr != "" {
		for _, provider := range strings.Split(providersStr, ",") {
			if trimmed := strings.TrimSpace(provider); trimmed != "" {
				providers = append(providers, trimmed)
			}
		}
	}

	apiKeyPath := resolveAPIKeyPath(dotenvValues)

	cfg := &Config{
		APIKey:            resolveAPIKey(apiKeyPath),
		APIKeyPath:        apiKeyPath,
		Model:             os.Getenv("MODEL"),
		Providers:         providers,
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		AnalysisMode:      resolveAnalysisMode(os.Getenv("ANALYSIS_MODE")),
		DebounceMS:        getEnvInt("DEBOUNCE_MS", 800),
		PendingTimeoutSec: getEnvInt("PENDING_TIMEOUT_SEC", 12),
		DoneRevertSec:     getEnvInt("DONE_REVERT_SEC", 5),
		LabelMaxLen:       getEnvInt("LABEL_MAX_LEN", 80),
		CopyResult:        strings.ToLower(getEnvWithDefault("COPY_RESULT", "true")) == "true",
		StatusSurface:     strings.ToLower(os.Getenv("STATUS_SURFACE")),
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv("SCREEN_CAPTURE_LLM"); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func resolveAPIKeyPath(dotenvValues map[string]string) string {
	keyPath := DefaultAPIKeyPath

	if envPath := strings.TrimSpace(os.Getenv(APIKeyPathEnvVar)); envPath != "" {
		keyPath = envPath
	}

	if dotenvPath := strings.TrimSpace(dotenvValues[APIKeyPathEnvVar]); dotenvPath != "" {
		keyPath = dotenvPath
	}

	return keyPath
}

func resolveAPIKey(keyPath string) string {
	if data, err := os.ReadFile(keyPath); err == nil {
		if fileKey := strings.TrimSpace(string(data)); fileKey != "" {
			return fileKey
		}
	}

	return os.Getenv("OPENROUTER_API_KEY")
}

func resolveAnalysisMode(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case ModeVision, "multimodal", "image":
		return ModeVision
	default:
		return ModeText
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
