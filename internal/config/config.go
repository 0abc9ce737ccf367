// Package config loads application settings from config.yaml and
// KABINET_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime settings.
type Config struct {
	Addr          string `mapstructure:"addr"`
	BaseURL       string `mapstructure:"baseURL"`
	DataDir       string `mapstructure:"dataDir"`
	StaticDir     string `mapstructure:"staticDir"`
	ExportDir     string `mapstructure:"exportDir"`
	DatabasePath  string `mapstructure:"databasePath"`
	AdminPassword string `mapstructure:"adminPassword"`
	RepoDir       string `mapstructure:"repoDir"`
	GitRemote     string `mapstructure:"gitRemote"`
	GitBranch     string `mapstructure:"gitBranch"`
	// Timeouts for the long-running deploy steps, in seconds.
	ExportTimeout int `mapstructure:"exportTimeout"`
	PushTimeout   int `mapstructure:"pushTimeout"`
}

// Load reads the config file (default ./config.yaml) and applies
// environment overrides. A missing config file is fine; defaults apply.
func Load(cfgFile string) (Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("baseURL", "")
	v.SetDefault("dataDir", "data")
	v.SetDefault("staticDir", "static")
	v.SetDefault("exportDir", "build")
	v.SetDefault("databasePath", "data/kabinet.db")
	v.SetDefault("adminPassword", "admin")
	v.SetDefault("repoDir", ".")
	v.SetDefault("gitRemote", "origin")
	v.SetDefault("gitBranch", "main")
	v.SetDefault("exportTimeout", 120)
	v.SetDefault("pushTimeout", 60)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("KABINET")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if cfgFile != "" {
			return Config{}, fmt.Errorf("config file %s not found: %w", cfgFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
