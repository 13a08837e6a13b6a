package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/SaiNageswarS/threads-poster/dotenv"
	"github.com/caarlos0/env/v11"
)

const (
	ProviderOCI   = "oci"
	ProviderOCIS3 = "oci-s3"
	ProviderGCS   = "gcs"
	ProviderAzure = "azure"

	// ConfigFileEnv names an optional INI file holding non-secret settings.
	ConfigFileEnv = "POSTER_CONFIG_FILE"
)

// PosterConfig is read once at start-up and never mutated afterwards.
// Fields tagged ini:"-" are secrets and come from the environment only.
type PosterConfig struct {
	// threads
	AccessToken    string `env:"THREADS_ACCESS_TOKEN" ini:"-"`
	UserID         string `env:"THREADS_USER_ID" ini:"user_id"`
	ThreadsAPIBase string `env:"THREADS_API_BASE" ini:"threads_api_base"`

	// storage
	StorageProvider       string `env:"THREADS_STORAGE_PROVIDER" ini:"storage_provider"`
	Bucket                string `env:"THREADS_BUCKET" ini:"bucket"`
	Prefix                string `env:"THREADS_PREFIX" ini:"prefix"`
	ImageExtension        string `env:"THREADS_IMAGE_EXTENSION" ini:"image_extension"`
	Namespace             string `env:"OCI_NAMESPACE" ini:"namespace"`
	Region                string `env:"OCI_REGION" ini:"region"`
	Profile               string `env:"OCI_PROFILE" ini:"profile"`
	AzureStorageAccount   string `env:"AZURE_STORAGE_ACCOUNT" ini:"azure_storage_account"`
	AzureStorageAccessKey string `env:"AZURE_STORAGE_ACCESS_KEY" ini:"-"`

	// captioning
	EnableCaptioning      Flag   `env:"THREADS_ENABLE_CAPTIONING" ini:"enable_captioning"`
	AnthropicAPIKey       string `env:"ANTHROPIC_API_KEY" ini:"-"`
	ClaudeModel           string `env:"THREADS_CLAUDE_MODEL" ini:"claude_model"`
	ClaudeMaxTokens       int    `env:"THREADS_CLAUDE_MAX_TOKENS" ini:"claude_max_tokens"`
	CaptionFallback       string `env:"THREADS_CAPTION_FALLBACK" ini:"caption_fallback"`
	CaptionTimeoutSeconds int    `env:"THREADS_CAPTION_TIMEOUT_SECONDS" ini:"caption_timeout_seconds"`

	// timings
	MediaWaitSeconds         int `env:"THREADS_MEDIA_WAIT_SECONDS" ini:"media_wait_seconds"`
	PresignExpirationSeconds int `env:"THREADS_PRESIGN_EXPIRATION_SECONDS" ini:"presign_expiration_seconds"`
	HTTPTimeoutSeconds       int `env:"THREADS_HTTP_TIMEOUT_SECONDS" ini:"http_timeout_seconds"`

	// notifications
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN" ini:"-"`
	TelegramChatID   string `env:"TELEGRAM_CHAT_ID" ini:"telegram_chat_id"`
}

func defaults() PosterConfig {
	return PosterConfig{
		ThreadsAPIBase:           "https://graph.threads.net/v1.0",
		StorageProvider:          ProviderOCI,
		ImageExtension:           ".png",
		EnableCaptioning:         true,
		ClaudeModel:              "claude-sonnet-4-5-20250929",
		ClaudeMaxTokens:          120,
		CaptionFallback:          "Sharing today's inspiration ✨",
		CaptionTimeoutSeconds:    60,
		MediaWaitSeconds:         30,
		PresignExpirationSeconds: 900,
		HTTPTimeoutSeconds:       30,
	}
}

// MissingKeysError names every required setting that was absent or empty.
type MissingKeysError struct {
	Keys []string
}

func (e *MissingKeysError) Error() string {
	return "missing required configuration: " + strings.Join(e.Keys, ", ")
}

// Load builds the configuration from defaults, ./.env, the optional INI file
// named by POSTER_CONFIG_FILE and finally the process environment. It does no
// network I/O.
func Load() (*PosterConfig, error) {
	if err := dotenv.LoadEnv(); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := defaults()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := LoadIni(path, &cfg); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	parseErr := env.Parse(&cfg)
	if parseErr != nil {
		parseErr = fmt.Errorf("invalid configuration: %w", parseErr)
	}

	cfg.normalize()
	if err := errors.Join(parseErr, cfg.Validate()); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *PosterConfig) normalize() {
	c.StorageProvider = strings.ToLower(strings.TrimSpace(c.StorageProvider))
	c.ThreadsAPIBase = strings.TrimRight(c.ThreadsAPIBase, "/")
	if c.ImageExtension != "" && !strings.HasPrefix(c.ImageExtension, ".") {
		c.ImageExtension = "." + c.ImageExtension
	}
	if c.MediaWaitSeconds < 0 {
		c.MediaWaitSeconds = 0
	}
	if c.PresignExpirationSeconds < 1 {
		c.PresignExpirationSeconds = 1
	}
}

// Validate reports every missing required key at once, then any value that
// is present but unusable.
func (c *PosterConfig) Validate() error {
	var missing []string
	require := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}

	require("THREADS_ACCESS_TOKEN", c.AccessToken)
	require("THREADS_USER_ID", c.UserID)
	require("THREADS_BUCKET", c.Bucket)

	switch c.StorageProvider {
	case ProviderOCI, ProviderOCIS3:
		require("OCI_NAMESPACE", c.Namespace)
	case ProviderAzure:
		require("AZURE_STORAGE_ACCOUNT", c.AzureStorageAccount)
		require("AZURE_STORAGE_ACCESS_KEY", c.AzureStorageAccessKey)
	}

	if c.CaptioningEnabled() {
		require("ANTHROPIC_API_KEY", c.AnthropicAPIKey)
	}

	if len(missing) > 0 {
		return &MissingKeysError{Keys: missing}
	}

	switch c.StorageProvider {
	case ProviderOCI, ProviderOCIS3, ProviderGCS, ProviderAzure:
	default:
		return fmt.Errorf("THREADS_STORAGE_PROVIDER: unsupported provider %q", c.StorageProvider)
	}
	if c.ClaudeMaxTokens <= 0 {
		return fmt.Errorf("THREADS_CLAUDE_MAX_TOKENS must be positive, got %d", c.ClaudeMaxTokens)
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("THREADS_HTTP_TIMEOUT_SECONDS must be positive, got %d", c.HTTPTimeoutSeconds)
	}
	if c.CaptionTimeoutSeconds <= 0 {
		return fmt.Errorf("THREADS_CAPTION_TIMEOUT_SECONDS must be positive, got %d", c.CaptionTimeoutSeconds)
	}
	return nil
}

func (c *PosterConfig) CaptioningEnabled() bool { return c.EnableCaptioning.Bool() }

func (c *PosterConfig) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

func (c *PosterConfig) MediaWait() time.Duration {
	return time.Duration(c.MediaWaitSeconds) * time.Second
}

func (c *PosterConfig) PresignExpiry() time.Duration {
	return time.Duration(c.PresignExpirationSeconds) * time.Second
}

func (c *PosterConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c *PosterConfig) CaptionTimeout() time.Duration {
	return time.Duration(c.CaptionTimeoutSeconds) * time.Second
}
