package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config holds runtime settings for the storectl CLI.
type Config struct {
	ServerURL     string
	Timeout       time.Duration
	StateDir      string
	RedirectDelay time.Duration
}

// SessionPath is where the persisted session lives. One file, one key.
func (c Config) SessionPath() string {
	return filepath.Join(c.StateDir, "auth.json")
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("storectl")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "storectl"))
	}

	v.SetEnvPrefix("STORECTL")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.StringToTimeDurationHookFunc()
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.StateDir == "" {
		cfg.StateDir = defaultStateDir()
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serverurl", "http://localhost:8080")
	v.SetDefault("timeout", "10s")
	v.SetDefault("statedir", "")
	v.SetDefault("redirectdelay", "3s")
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "storectl")
	}
	return "."
}
