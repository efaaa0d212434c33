package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	internal "github.com/draftwing/sketchfs/sketchfs"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Sketchfs SketchfsConfig `mapstructure:"sketchfs"`
}

// SketchfsConfig stores the project filesystem settings.
type SketchfsConfig struct {
	Database       DatabaseConfig `mapstructure:"database"`
	IgnorePatterns []string       `mapstructure:"ignorePatterns"`
	MaxViewBytes   int            `mapstructure:"maxViewBytes"`
	MaxSessions    int            `mapstructure:"maxSessions"`
}

// DatabaseConfig stores snapshot database connection details.
type DatabaseConfig struct {
	DSN  string `mapstructure:"dsn"`
	Type string `mapstructure:"type"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Set default values
	viper.SetDefault("sketchfs.database.dsn", internal.DefaultDatabaseDSN)
	viper.SetDefault("sketchfs.database.type", internal.DefaultDatabaseType)
	viper.SetDefault("sketchfs.ignorePatterns", []string{".*"})
	viper.SetDefault("sketchfs.maxViewBytes", 1024*1024)
	viper.SetDefault("sketchfs.maxSessions", 64)

	viper.SetEnvPrefix(strings.ToUpper(internal.DefaultAppName))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and environment cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &AppConfig, nil
}
