package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MaxSendBytes is the largest file the Bot API accepts for inline upload, with headroom
const MaxSendBytes int64 = 48 << 20

// Config holds all application configuration
type Config struct {
	// Telegram
	BotToken      string
	WebhookSecret string // last path segment of the webhook route
	WebhookURL    string // public base URL; webhook is registered at startup when set

	// Server
	ServerPort string

	// Extraction
	YTDLPPath    string
	YTDLPTimeout time.Duration
	CookiesFile  string // optional, enables authenticated extraction

	// Transcoding
	FFmpegPath         string
	TranscodeAvailable bool // resolved once at startup

	// Artifacts
	WorkDir             string
	ArtifactRetention   time.Duration
	DeleteAfterDelivery bool

	// Paths
	DatabaseFile string // $CONFIG_DIR/tubegram.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = v.ReadInConfig()

	// Set defaults
	v.SetDefault("WEBHOOK_SECRET", "my-secret-path")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("YTDLP_PATH", "yt-dlp")
	v.SetDefault("YTDLP_TIMEOUT_MINUTES", 10)
	v.SetDefault("ARTIFACT_RETENTION_MINUTES", 60)
	v.SetDefault("DELETE_AFTER_DELIVERY", true)
	v.SetDefault("LOG_LEVEL", "info")

	configDir, err := resolveDir(v.GetString("CONFIG_DIR"), func() (string, error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, ".config", "tubegram"), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid CONFIG_DIR: %w", err)
	}

	workDir, err := resolveDir(v.GetString("WORK_DIR"), func() (string, error) {
		return filepath.Join(os.TempDir(), "tubegram"), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid WORK_DIR: %w", err)
	}

	config := &Config{
		// Telegram
		BotToken:      v.GetString("BOT_TOKEN"),
		WebhookSecret: v.GetString("WEBHOOK_SECRET"),
		WebhookURL:    v.GetString("WEBHOOK_URL"),

		// Server
		ServerPort: v.GetString("SERVER_PORT"),

		// Extraction
		YTDLPPath:    v.GetString("YTDLP_PATH"),
		YTDLPTimeout: time.Duration(v.GetInt("YTDLP_TIMEOUT_MINUTES")) * time.Minute,
		CookiesFile:  v.GetString("COOKIES_FILE"),

		// Artifacts
		WorkDir:             workDir,
		ArtifactRetention:   time.Duration(v.GetInt("ARTIFACT_RETENTION_MINUTES")) * time.Minute,
		DeleteAfterDelivery: v.GetBool("DELETE_AFTER_DELIVERY"),

		// Paths
		DatabaseFile: filepath.Join(configDir, "tubegram.db"),

		// Logging
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	config.FFmpegPath, config.TranscodeAvailable = lookupFFmpeg(v.GetString("FFMPEG_PATH"))

	// Validate required fields
	if config.WebhookSecret == "" {
		return nil, fmt.Errorf("WEBHOOK_SECRET must not be empty")
	}
	if config.YTDLPTimeout <= 0 {
		return nil, fmt.Errorf("YTDLP_TIMEOUT_MINUTES must be positive")
	}
	if config.CookiesFile != "" {
		if _, err := os.Stat(config.CookiesFile); err != nil {
			return nil, fmt.Errorf("COOKIES_FILE is not readable: %w", err)
		}
	}

	return config, nil
}

// ValidateBot checks the settings needed to run the chat bot
func (c *Config) ValidateBot() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if strings.ContainsAny(c.WebhookSecret, "/{} ") {
		return fmt.Errorf("WEBHOOK_SECRET must be a single path segment")
	}
	return nil
}

// CookiesConfigured reports whether authenticated extraction is possible
func (c *Config) CookiesConfigured() bool {
	return c.CookiesFile != ""
}

// resolveDir makes dir absolute (or falls back to the default) and creates it
func resolveDir(dir string, fallback func() (string, error)) (string, error) {
	var err error
	if dir == "" {
		dir, err = fallback()
	} else {
		dir, err = filepath.Abs(dir)
	}
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	return dir, nil
}

// lookupFFmpeg resolves the transcoding tool from an explicit path or from PATH
func lookupFFmpeg(configured string) (string, bool) {
	if configured != "" {
		if path, err := exec.LookPath(configured); err == nil {
			return path, true
		}
		return configured, false
	}

	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", false
	}
	return path, true
}
