// Package config loads application configuration from an optional
// tablecrm.yaml plus TABLECRM_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abdymaleeq925/tablecrm/pkg/logging"
)

type Config struct {
	BaseURL     string
	Token       string // optional pre-set credential; the form asks when empty
	Timeout     time.Duration
	MetricsAddr string // empty disables the debug metrics listener
	Log         logging.Config
}

func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("base_url", "https://app.tablecrm.com")
	v.SetDefault("timeout", "15s")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "tablecrm.log")

	v.SetEnvPrefix("TABLECRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("tablecrm")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{
		BaseURL:     strings.TrimRight(v.GetString("base_url"), "/"),
		Token:       v.GetString("token"),
		Timeout:     v.GetDuration("timeout"),
		MetricsAddr: v.GetString("metrics_addr"),
		Log: logging.Config{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base_url must not be empty")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	return cfg, nil
}
