package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tinytelemetry/loggrowth/internal/model"
)

const (
	envPrefix         = "LOGGROWTH"
	defaultLogLevel   = "info"
	defaultLogFormat  = "text"
	defaultPreviewW   = 60
	defaultPreviewH   = 10
	defaultConfigName = "config.yml"
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	LogDir           string `mapstructure:"log-dir"`
	Codes            string `mapstructure:"codes"`
	Include          string `mapstructure:"include"`
	Model            string `mapstructure:"model"`
	Output           string `mapstructure:"output"`
	Export           string `mapstructure:"export"`
	Preview          bool   `mapstructure:"preview"`
	PreviewWidth     int    `mapstructure:"preview-width"`
	PreviewHeight    int    `mapstructure:"preview-height"`
	LogLevel         string `mapstructure:"log-level"`
	LogFormat        string `mapstructure:"log-format"`
	LogFile          string `mapstructure:"log-file"`
	SessionThreshold int64  `mapstructure:"session-threshold"`
	Width            int    `mapstructure:"width"`
	Height           int    `mapstructure:"height"`
	ConfigPath       string `mapstructure:"-"` // not from config file
}

func loadConfig(configPath string, flags *pflag.FlagSet) (appConfig, error) {
	var cfg appConfig

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("log-dir", model.DefaultLogDir)
	v.SetDefault("codes", "")
	v.SetDefault("include", "")
	v.SetDefault("model", model.DefaultModel)
	v.SetDefault("output", model.DefaultOutputPath)
	v.SetDefault("export", "")
	v.SetDefault("preview", false)
	v.SetDefault("preview-width", defaultPreviewW)
	v.SetDefault("preview-height", defaultPreviewH)
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("log-format", defaultLogFormat)
	v.SetDefault("log-file", "")
	v.SetDefault("session-threshold", model.DefaultSessionThreshold)
	v.SetDefault("width", model.DefaultImageWidth)
	v.SetDefault("height", model.DefaultImageHeight)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return cfg, fmt.Errorf("binding flags: %w", err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigFile(filepath.Join(home, ".config", "loggrowth", defaultConfigName))
	}

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			var configFileNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
				return cfg, err
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if cfg.SessionThreshold <= 0 {
		return cfg, fmt.Errorf("invalid session-threshold: %d", cfg.SessionThreshold)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return cfg, fmt.Errorf("invalid image size: %dx%d", cfg.Width, cfg.Height)
	}
	return cfg, nil
}
