package userconf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DefaultAPIURL is used until `vaf login --api-url` stores another one.
const DefaultAPIURL = "https://api.usevaf.com"

// APIURLEnv overrides the stored API URL, for CI use.
const APIURLEnv = "VAF_API_URL"

// Settings is the user-level CLI configuration stored in ~/.vaf/config.yaml.
type Settings struct {
	APIURL   string `mapstructure:"api_url"`
	LogLevel string `mapstructure:"log_level"`
}

// Dir returns the configuration directory, honouring an explicit override.
func Dir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".vaf"), nil
}

// Load reads settings from dir, applying defaults for anything unset.
func Load(dir string) (Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read cli config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("parse cli config: %w", err)
	}
	if env := os.Getenv(APIURLEnv); env != "" {
		s.APIURL = env
	}
	return s, nil
}

// Save persists settings to dir/config.yaml.
func Save(dir string, s Settings) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("api_url", s.APIURL)
	v.Set("log_level", s.LogLevel)
	if err := v.WriteConfigAs(filepath.Join(dir, "config.yaml")); err != nil {
		return fmt.Errorf("write cli config: %w", err)
	}
	return nil
}
