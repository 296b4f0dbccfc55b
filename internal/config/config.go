package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server
	ServerPort string

	// Enrichment
	EnrichURL string // external-catalog cast endpoint, empty disables enrichment

	// Playback
	BlockAdsDefault   bool // default ad-block toggle for new sessions
	CatalogTimeoutSec int  // catalog/caption HTTP timeout (default: 15)
	RetentionDays     int  // days before play records are swept (default: 90)

	// Paths
	SourcesFile   string // $CONFIG_DIR/sources.json
	BlocklistFile string // $CONFIG_DIR/blocklist.txt
	DatabaseFile  string // $CONFIG_DIR/streambox.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("BLOCK_ADS_DEFAULT", true)
	viper.SetDefault("CATALOG_TIMEOUT_SECONDS", 15)
	viper.SetDefault("RETENTION_DAYS", 90)
	viper.SetDefault("LOG_LEVEL", "info")

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "streambox")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		// Server
		ServerPort: viper.GetString("SERVER_PORT"),

		// Enrichment
		EnrichURL: viper.GetString("ENRICH_URL"),

		// Playback
		BlockAdsDefault:   viper.GetBool("BLOCK_ADS_DEFAULT"),
		CatalogTimeoutSec: viper.GetInt("CATALOG_TIMEOUT_SECONDS"),
		RetentionDays:     viper.GetInt("RETENTION_DAYS"),

		// Paths
		SourcesFile:   filepath.Join(configDir, "sources.json"),
		BlocklistFile: filepath.Join(configDir, "blocklist.txt"),
		DatabaseFile:  filepath.Join(configDir, "streambox.db"),

		// Logging
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	// Validate numeric ranges
	if config.CatalogTimeoutSec <= 0 {
		return nil, fmt.Errorf("CATALOG_TIMEOUT_SECONDS must be positive")
	}
	if config.RetentionDays <= 0 {
		return nil, fmt.Errorf("RETENTION_DAYS must be positive")
	}

	return config, nil
}
