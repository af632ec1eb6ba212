package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setTestHome redirects the XDG base directories into a temp dir so config
// tests never touch the real user configuration.
func setTestHome(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Cleanup(xdg.Reload) // re-resolve once the environment is restored
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	xdg.Reload()

	// Keep viper's working-directory lookup away from stray config files.
	t.Chdir(t.TempDir())
	return dir
}

func TestInitConfigDefaults(t *testing.T) {
	dir := setTestHome(t)

	config := InitConfig()

	assert.Equal(t, "gpt-4o-mini", config.InsightsModel)
	assert.Empty(t, config.OpenAIBaseURL)
	assert.Equal(t, DefaultMaxRetries, config.MaxRetries)
	assert.Equal(t, DefaultBaseDelay, config.BaseDelay)
	assert.Equal(t, DefaultJitterBound, config.JitterBound)
	assert.Equal(t, 30*time.Second, config.RequestTimeout)
	assert.Equal(t, 2*time.Minute, config.InsightsTimeout)
	assert.False(t, config.UseTorProxy)
	assert.Equal(t, DefaultTorControlAddr, config.TorControlAddr)
	assert.Equal(t, DefaultTorSocksAddr, config.TorSocksAddr)
	assert.False(t, config.MCPLogEnabled)

	assert.Equal(t, filepath.Join(dir, "config", "tubelens"), config.ConfigDir)
	assert.Equal(t, filepath.Join(dir, "data", "tubelens"), config.DataDir)
	assert.Equal(t, filepath.Join(dir, "cache", "tubelens"), config.CacheDir)
}

func TestInitConfigReadsConfigFile(t *testing.T) {
	dir := setTestHome(t)

	configDir := filepath.Join(dir, "config", "tubelens")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(`
insights_model = "gpt-4o"
max_retries = 2
base_delay = "1s"
use_tor_proxy = true
tor_socks_addr = "127.0.0.1:19050"
`), 0644))

	config := InitConfig()

	assert.Equal(t, "gpt-4o", config.InsightsModel)
	assert.Equal(t, 2, config.MaxRetries)
	assert.Equal(t, time.Second, config.BaseDelay)
	assert.True(t, config.UseTorProxy)
	assert.Equal(t, "127.0.0.1:19050", config.TorSocksAddr)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultJitterBound, config.JitterBound)
}

func TestInitConfigEnvOverrides(t *testing.T) {
	setTestHome(t)
	t.Setenv("TUBELENS_INSIGHTS_MODEL", "o4-mini")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("YOUTUBE_API_KEY", "yt-test")
	t.Setenv("USE_TOR_PROXY", "true")
	t.Setenv("TOR_CONTROL_PASSWORD", "hunter2")

	config := InitConfig()

	assert.Equal(t, "o4-mini", config.InsightsModel)
	assert.Equal(t, "sk-test", config.OpenAIAPIKey)
	assert.Equal(t, "yt-test", config.YouTubeAPIKey)
	assert.True(t, config.UseTorProxy)
	assert.Equal(t, "hunter2", config.TorControlPassword)
}

func TestEnsureDefaultConfigCreatesFile(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, "tubelens")

	require.NoError(t, EnsureDefaultConfig(configDir))

	created, err := os.ReadFile(filepath.Join(configDir, "config.toml"))
	require.NoError(t, err)
	embedded, err := defaultFS.ReadFile("config.toml")
	require.NoError(t, err)
	assert.Equal(t, embedded, created)
}

func TestEnsureDefaultConfigKeepsExistingFile(t *testing.T) {
	configDir := t.TempDir()
	custom := []byte(`insights_model = "gpt-4o"` + "\n")
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), custom, 0644))

	require.NoError(t, EnsureDefaultConfig(configDir))

	content, err := os.ReadFile(filepath.Join(configDir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, custom, content, "an existing config must never be overwritten")
}

func TestEnsureDefaultPromptCreatesFile(t *testing.T) {
	configDir := t.TempDir()

	require.NoError(t, EnsureDefaultPrompt(configDir))

	content, err := os.ReadFile(filepath.Join(configDir, "prompt.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "{{.Title}}")
	assert.Contains(t, string(content), "{{.Transcript}}")
}
