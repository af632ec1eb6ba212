package internal

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config holds application settings
type Config struct {
	// User configurable settings
	InsightsModel      string
	OpenAIBaseURL      string
	MaxRetries         int
	BaseDelay          time.Duration
	JitterBound        time.Duration
	RequestTimeout     time.Duration
	InsightsTimeout    time.Duration
	Verbose            bool
	Quiet              bool
	MCPLogEnabled      bool
	OpenAIAPIKey       string
	YouTubeAPIKey      string
	UseTorProxy        bool
	TorControlAddr     string
	TorControlPassword string
	TorSocksAddr       string
	Prompt             string

	// Fixed XDG paths (not configurable)
	ConfigDir string
	DataDir   string
	CacheDir  string
}

//go:embed config.toml prompt.txt
var defaultFS embed.FS

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)

	// Check if file already exists
	if FileExists(filePath) {
		return nil
	}

	// Make sure the config directory exists
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Read the embedded default file
	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	// Write the default file to the specified directory
	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	// Stdout is reserved for command output, so announce on stderr.
	fmt.Fprintf(os.Stderr, "Created default %s at %s\n", description, filePath)
	return nil
}

// EnsureDefaultConfig checks if a config file exists in the XDG config directory
// and creates it from the embedded default if it doesn't exist
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// EnsureDefaultPrompt checks if a prompt.txt file exists in the XDG config directory
// and creates it from the embedded default if it doesn't exist
func EnsureDefaultPrompt(configDir string) error {
	return ensureDefaultFile(configDir, "prompt.txt", "prompt template")
}

// InitConfig initializes Viper and loads configuration
func InitConfig() *Config {
	// XDG standard directories
	configDir := filepath.Join(xdg.ConfigHome, "tubelens")
	dataDir := filepath.Join(xdg.DataHome, "tubelens")
	cacheDir := filepath.Join(xdg.CacheHome, "tubelens")

	// Initialize viper
	v := viper.New()

	// Set default values for configurable settings
	v.SetDefault("insights_model", "gpt-4o-mini")
	v.SetDefault("openai_base_url", "") // if empty will use the official endpoint
	v.SetDefault("max_retries", DefaultMaxRetries)
	v.SetDefault("base_delay", DefaultBaseDelay)
	v.SetDefault("jitter_bound", DefaultJitterBound)
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("insights_timeout", 2*time.Minute)
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("mcp_log", false)
	v.SetDefault("use_tor_proxy", false)
	v.SetDefault("tor_control_addr", DefaultTorControlAddr)
	v.SetDefault("tor_socks_addr", DefaultTorSocksAddr)
	v.SetDefault("tor_control_password", "")
	v.SetDefault("prompt", "") // if empty will use default prompt template

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("TUBELENS")
	v.AutomaticEnv()

	// Caller-facing environment names that predate the TUBELENS prefix.
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("youtube_api_key", "YOUTUBE_API_KEY")
	_ = v.BindEnv("use_tor_proxy", "USE_TOR_PROXY")
	_ = v.BindEnv("tor_control_password", "TOR_CONTROL_PASSWORD")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	// Create config struct from viper
	config := &Config{
		// User configurable settings
		InsightsModel:      v.GetString("insights_model"),
		OpenAIBaseURL:      v.GetString("openai_base_url"),
		MaxRetries:         v.GetInt("max_retries"),
		BaseDelay:          v.GetDuration("base_delay"),
		JitterBound:        v.GetDuration("jitter_bound"),
		RequestTimeout:     v.GetDuration("request_timeout"),
		InsightsTimeout:    v.GetDuration("insights_timeout"),
		Verbose:            v.GetBool("verbose"),
		Quiet:              v.GetBool("quiet"),
		MCPLogEnabled:      v.GetBool("mcp_log"),
		OpenAIAPIKey:       v.GetString("openai_api_key"),
		YouTubeAPIKey:      v.GetString("youtube_api_key"),
		UseTorProxy:        v.GetBool("use_tor_proxy"),
		TorControlAddr:     v.GetString("tor_control_addr"),
		TorControlPassword: v.GetString("tor_control_password"),
		TorSocksAddr:       v.GetString("tor_socks_addr"),
		Prompt:             v.GetString("prompt"),

		// Fixed XDG paths
		ConfigDir: configDir,
		DataDir:   dataDir,
		CacheDir:  cacheDir,
	}

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}

	return config
}
