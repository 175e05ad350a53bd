package config

import (
	"errors"
	"os"
	"strings"
)

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = errors.New("no Anthropic API key configured (set ANTHROPIC_API_KEY or anthropic.api_key)")

// KeySource represents where an API key was loaded from.
type KeySource string

const (
	KeySourceEnv     KeySource = "environment"
	KeySourceConfig  KeySource = "config_file"
	KeySourceBedrock KeySource = "aws_bedrock"
	KeySourceNone    KeySource = "none"
)

// resolveAPIKey checks the environment first, then the config file. Bedrock
// uses AWS credentials and needs no key.
func resolveAPIKey(cfg *Config) (string, KeySource) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return key, KeySourceEnv
	}

	if cfg != nil && cfg.Anthropic.APIKey != "" {
		key := os.ExpandEnv(cfg.Anthropic.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return key, KeySourceConfig
		}
	}

	if cfg != nil && cfg.LLM.UseBedrock {
		return "", KeySourceBedrock
	}
	return "", KeySourceNone
}

// GetAPIKey returns the Anthropic API key. With Bedrock enabled an empty key
// is not an error.
func GetAPIKey(cfg *Config) (string, error) {
	key, source := resolveAPIKey(cfg)
	if source == KeySourceNone {
		return "", ErrNoAPIKey
	}
	return key, nil
}

// GetAPIKeySource returns where the API key was sourced from.
func GetAPIKeySource(cfg *Config) KeySource {
	_, source := resolveAPIKey(cfg)
	return source
}

// ValidateAPIKey performs basic format validation without calling the API.
func ValidateAPIKey(key string) error {
	if key == "" {
		return ErrNoAPIKey
	}
	if !strings.HasPrefix(key, "sk-ant-") {
		return errors.New("invalid API key format: expected 'sk-ant-' prefix")
	}
	if len(key) < 20 {
		return errors.New("invalid API key format: key too short")
	}
	return nil
}

// CheckAPIKeyFormat validates the format of the resolved Anthropic key. Bedrock
// credentials and keys for a custom base_url gateway are not checked.
func CheckAPIKeyFormat(cfg *Config) error {
	key, source := resolveAPIKey(cfg)
	if source != KeySourceEnv && source != KeySourceConfig {
		return nil
	}
	if cfg.LLM.BaseURL != "" {
		return nil
	}
	return ValidateAPIKey(key)
}

// MaskAPIKey returns a masked version of the API key for display.
// Shows the first 7 characters (sk-ant-) and last 4 characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 15 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// DisplayValues is Values with secrets masked.
func (c *Config) DisplayValues() map[string]string {
	values := c.Values()
	values["anthropic.api_key"] = MaskAPIKey(c.Anthropic.APIKey)
	return values
}
