// Package config loads the application's configuration from the
// environment once at startup. Components receive the resulting struct
// by reference and never read environment variables themselves.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// ErrMissingBaseURL signals that the required OPENAI_BASE_URL setting is
// absent. The run cannot proceed without an AI endpoint to talk to.
var ErrMissingBaseURL = errors.New("OPENAI_BASE_URL must be set")

const (
	// DefaultModel is the model identifier used when neither the MODEL
	// environment variable nor the --model flag is given.
	DefaultModel = "google:gemini-2.5-pro"

	// DefaultCacheDir is where reviews are cached unless CACHE_DIR or
	// --cache-dir says otherwise.
	DefaultCacheDir = ".cache"
)

// Config holds the application's configuration values.
type Config struct {
	OpenAIBaseURL string
	OpenAIAPIKey  string
	Model         string
	CacheDir      string
	PromptFile    string
	LogLevel      slog.Level
	LogFormat     string
}

// LoadConfig reads configuration from environment variables and an
// optional .env file, sets sensible defaults, and validates required
// fields. It uses the Viper library to handle loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")

	viper.SetDefault("OPENAI_API_KEY", "dummy")
	viper.SetDefault("MODEL", DefaultModel)
	viper.SetDefault("CACHE_DIR", DefaultCacheDir)
	viper.SetDefault("PROMPT_FILE", "")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Debug("no .env file loaded", "error", err)
		}
	}

	baseURL := viper.GetString("OPENAI_BASE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("%w (example: export OPENAI_BASE_URL=https://api.openai.com/v1)", ErrMissingBaseURL)
	}

	var logLevel slog.Level
	logLevelStr := strings.ToLower(viper.GetString("LOG_LEVEL"))
	switch logLevelStr {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	case "info":
		logLevel = slog.LevelInfo
	default:
		slog.Warn("unrecognized log level, defaulting to info", "provided", logLevelStr)
		logLevel = slog.LevelInfo
	}

	return &Config{
		OpenAIBaseURL: baseURL,
		OpenAIAPIKey:  viper.GetString("OPENAI_API_KEY"),
		Model:         viper.GetString("MODEL"),
		CacheDir:      viper.GetString("CACHE_DIR"),
		PromptFile:    viper.GetString("PROMPT_FILE"),
		LogLevel:      logLevel,
		LogFormat:     viper.GetString("LOG_FORMAT"),
	}, nil
}
