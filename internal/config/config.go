package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"sprintlens/internal/jira"
	"sprintlens/internal/workflow"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Jira     jira.Config
	DataPath string
	LogDir   string
	CacheDir string

	// HoursPerDay converts working days into capacity seconds.
	HoursPerDay float64
	// Developer anchors "took work" detection in issue metrics. Optional.
	Developer string

	// Workflow carries explicit status-to-category mappings loaded from
	// statuses.json in the data directory. Empty when the file is absent.
	Workflow workflow.Config
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	cacheDir := filepath.Join(dataPath, "cache")

	// Ensure directories exist
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", cacheDir).Msg("Failed to create cache directory")
	}

	delaySecs, _ := strconv.Atoi(getEnv("JIRA_REQUEST_DELAY_SECONDS", "10"))

	cfg := &AppConfig{
		Jira: jira.Config{
			BaseURL:      getEnv("JIRA_URL", ""),
			XsrfToken:    getEnv("JIRA_XSRF_TOKEN", ""),
			SessionID:    getEnv("JIRA_SESSION_ID", ""),
			RememberMe:   getEnv("JIRA_REMEMBERME_COOKIE", ""),
			Token:        getEnv("JIRA_TOKEN", ""),
			GCILB:        getEnv("JIRA_GCILB", ""),
			GCLB:         getEnv("JIRA_GCLB", ""),
			RequestDelay: time.Duration(delaySecs) * time.Second,
		},
		DataPath:    dataPath,
		LogDir:      logDir,
		CacheDir:    cacheDir,
		HoursPerDay: getEnvFloat("HOURS_PER_DAY", 8),
		Developer:   getEnv("DEVELOPER", ""),
		Workflow:    loadWorkflow(filepath.Join(dataPath, "statuses.json")),
	}

	return cfg, nil
}

// loadWorkflow reads explicit status-to-category mappings. A missing file is
// normal and yields an empty config; keyword fallback handles unmapped statuses.
func loadWorkflow(path string) workflow.Config {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Failed to read status mapping file")
		}
		return workflow.Config{}
	}

	var cfg workflow.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Invalid status mapping file, falling back to keyword classification")
		return workflow.Config{}
	}

	log.Info().Int("statuses", len(cfg.StatusCategories)).Msg("Loaded explicit status mappings")
	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return fallback
}
