package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"ENV", ConfigFileEnv,
	"THREADS_ACCESS_TOKEN", "THREADS_USER_ID", "THREADS_API_BASE",
	"THREADS_STORAGE_PROVIDER", "THREADS_BUCKET", "THREADS_PREFIX", "THREADS_IMAGE_EXTENSION",
	"OCI_NAMESPACE", "OCI_REGION", "OCI_PROFILE",
	"AZURE_STORAGE_ACCOUNT", "AZURE_STORAGE_ACCESS_KEY",
	"THREADS_ENABLE_CAPTIONING", "ANTHROPIC_API_KEY", "THREADS_CLAUDE_MODEL",
	"THREADS_CLAUDE_MAX_TOKENS", "THREADS_CAPTION_FALLBACK", "THREADS_CAPTION_TIMEOUT_SECONDS",
	"THREADS_MEDIA_WAIT_SECONDS", "THREADS_PRESIGN_EXPIRATION_SECONDS", "THREADS_HTTP_TIMEOUT_SECONDS",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
}

// clearEnv blanks every key the loader reads; blank values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedKeys {
		t.Setenv(key, "")
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("THREADS_ACCESS_TOKEN", "token-123")
	t.Setenv("THREADS_USER_ID", "1784")
	t.Setenv("THREADS_BUCKET", "quotes")
	t.Setenv("OCI_NAMESPACE", "axyz")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "token-123", cfg.AccessToken)
	assert.Equal(t, "quotes", cfg.Bucket)
	assert.Equal(t, "", cfg.Prefix)
	assert.Equal(t, ProviderOCI, cfg.StorageProvider)
	assert.Equal(t, ".png", cfg.ImageExtension)
	assert.True(t, cfg.CaptioningEnabled())
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.ClaudeModel)
	assert.Equal(t, 120, cfg.ClaudeMaxTokens)
	assert.Equal(t, "Sharing today's inspiration ✨", cfg.CaptionFallback)
	assert.Equal(t, 30*time.Second, cfg.MediaWait())
	assert.Equal(t, 900*time.Second, cfg.PresignExpiry())
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, 60*time.Second, cfg.CaptionTimeout())
	assert.Equal(t, "https://graph.threads.net/v1.0", cfg.ThreadsAPIBase)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_NamesEveryMissingKey(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)

	var missing *MissingKeysError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{
		"THREADS_ACCESS_TOKEN",
		"THREADS_USER_ID",
		"THREADS_BUCKET",
		"OCI_NAMESPACE",
		"ANTHROPIC_API_KEY",
	}, missing.Keys)
	assert.Contains(t, err.Error(), "THREADS_BUCKET")
}

func TestLoad_MissingBucketOnly(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("THREADS_BUCKET", "")

	_, err := Load()

	var missing *MissingKeysError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"THREADS_BUCKET"}, missing.Keys)
}

func TestLoad_CaptioningDisabledNeedsNoAPIKey(t *testing.T) {
	for _, value := range []string{"false", "0", "no", "OFF"} {
		t.Run(value, func(t *testing.T) {
			clearEnv(t)
			setRequired(t)
			t.Setenv("ANTHROPIC_API_KEY", "")
			t.Setenv("THREADS_ENABLE_CAPTIONING", value)

			cfg, err := Load()
			require.NoError(t, err)
			assert.False(t, cfg.CaptioningEnabled())
		})
	}
}

func TestLoad_InvalidBoolean(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("THREADS_ENABLE_CAPTIONING", "maybe")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maybe")
}

func TestLoad_InvalidBooleanStillNamesMissingKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("THREADS_ACCESS_TOKEN", "token-123")
	t.Setenv("THREADS_ENABLE_CAPTIONING", "maybe")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maybe")

	var missing *MissingKeysError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, []string{"THREADS_USER_ID", "THREADS_BUCKET", "OCI_NAMESPACE", "ANTHROPIC_API_KEY"}, missing.Keys)
}

func TestLoad_OverridesAndClamping(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("THREADS_PREFIX", "daily/")
	t.Setenv("THREADS_IMAGE_EXTENSION", "jpg")
	t.Setenv("THREADS_MEDIA_WAIT_SECONDS", "-5")
	t.Setenv("THREADS_PRESIGN_EXPIRATION_SECONDS", "0")
	t.Setenv("THREADS_API_BASE", "https://graph.example.net/v1.0/")
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "daily/", cfg.Prefix)
	assert.Equal(t, ".jpg", cfg.ImageExtension)
	assert.Equal(t, time.Duration(0), cfg.MediaWait())
	assert.Equal(t, time.Second, cfg.PresignExpiry())
	assert.Equal(t, "https://graph.example.net/v1.0", cfg.ThreadsAPIBase)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoad_AzureProviderRequiresAccount(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("OCI_NAMESPACE", "")
	t.Setenv("THREADS_STORAGE_PROVIDER", "Azure")

	_, err := Load()

	var missing *MissingKeysError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"AZURE_STORAGE_ACCOUNT", "AZURE_STORAGE_ACCESS_KEY"}, missing.Keys)
}

func TestLoad_OCIS3ProviderRequiresNamespace(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("OCI_NAMESPACE", "")
	t.Setenv("THREADS_STORAGE_PROVIDER", "OCI-S3")

	_, err := Load()

	var missing *MissingKeysError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"OCI_NAMESPACE"}, missing.Keys)

	t.Setenv("OCI_NAMESPACE", "axyz")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderOCIS3, cfg.StorageProvider)
}

func TestLoad_UnknownProvider(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("THREADS_STORAGE_PROVIDER", "ftp")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ftp")
}

func TestLoad_NonPositiveMaxTokens(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("THREADS_CLAUDE_MAX_TOKENS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "THREADS_CLAUDE_MAX_TOKENS")
}

func TestLoad_IniSectionThenEnvOverride(t *testing.T) {
	iniContent := `
[dev]
bucket = dev-quotes
prefix = drafts/
storage_provider = gcs
enable_captioning = no
media_wait_seconds = 5

[prod]
bucket = prod-quotes
prefix = live/
namespace = prodns
claude_max_tokens = 80
media_wait_seconds = 45
`
	tmpFile := filepath.Join(t.TempDir(), "poster.ini")
	require.NoError(t, os.WriteFile(tmpFile, []byte(iniContent), 0644))

	clearEnv(t)
	t.Setenv(ConfigFileEnv, tmpFile)
	t.Setenv("THREADS_ACCESS_TOKEN", "token-123")
	t.Setenv("THREADS_USER_ID", "1784")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	t.Setenv("ENV", "dev")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev-quotes", cfg.Bucket)
	assert.Equal(t, "drafts/", cfg.Prefix)
	assert.Equal(t, ProviderGCS, cfg.StorageProvider)
	assert.False(t, cfg.CaptioningEnabled())
	assert.Equal(t, 5*time.Second, cfg.MediaWait())

	t.Setenv("ENV", "prod")
	t.Setenv("THREADS_MEDIA_WAIT_SECONDS", "10")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "prod-quotes", cfg.Bucket)
	assert.Equal(t, "prodns", cfg.Namespace)
	assert.Equal(t, 80, cfg.ClaudeMaxTokens)
	assert.Equal(t, 10*time.Second, cfg.MediaWait(), "env overrides the INI value")
	assert.True(t, cfg.CaptioningEnabled())
}

func TestLoadIni_NilTarget(t *testing.T) {
	var cfg *PosterConfig
	assert.Error(t, LoadIni("unused.ini", cfg))
}

func TestFlag_UnmarshalText(t *testing.T) {
	tests := map[string]bool{"1": true, "True": true, " yes ": true, "on": true, "0": false, "FALSE": false, "no": false, "off": false}
	for in, want := range tests {
		var f Flag
		require.NoError(t, f.UnmarshalText([]byte(in)), in)
		assert.Equal(t, want, f.Bool(), in)
	}

	var f Flag
	assert.Error(t, f.UnmarshalText([]byte("sometimes")))
}
