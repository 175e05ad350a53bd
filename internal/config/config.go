// Package config handles configuration loading and management for curricula.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ShayCichocki/curricula/pkg/models"
)

// ProjectConfigName is the per-project override file.
const ProjectConfigName = ".curricula.yaml"

// Config holds all configuration for curricula.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Timeouts  TimeoutsConfig  `mapstructure:"timeouts"`
	Output    OutputConfig    `mapstructure:"output"`
	History   HistoryConfig   `mapstructure:"history"`
	Log       LogConfig       `mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// LLMConfig holds model selection and sampling settings.
type LLMConfig struct {
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int64   `mapstructure:"max_tokens"`
	UseBedrock  bool    `mapstructure:"use_bedrock"`
	AWSRegion   string  `mapstructure:"aws_region"`
	AWSProfile  string  `mapstructure:"aws_profile"`
}

// PipelineConfig holds generation settings.
type PipelineConfig struct {
	MinObjectives int `mapstructure:"min_objectives"`
	MaxObjectives int `mapstructure:"max_objectives"`
	MCQsPerLesson int `mapstructure:"mcqs_per_lesson"`
	// PersonasFile is an optional YAML file overriding persona text.
	PersonasFile string `mapstructure:"personas_file"`
}

// TimeoutsConfig holds timeout settings.
type TimeoutsConfig struct {
	Stage time.Duration `mapstructure:"stage"`
}

// OutputConfig holds export settings.
type OutputConfig struct {
	JSONPath           string `mapstructure:"json_path"`
	MarkdownPath       string `mapstructure:"markdown_path"`
	IncludeAssessments bool   `mapstructure:"include_assessments"`
}

// HistoryConfig holds generation history settings.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// DBPath is the SQLite file; empty means the XDG data directory.
	DBPath string `mapstructure:"db_path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Mode string `mapstructure:"mode"`
	// File is the log file; empty means .curricula/logs/curricula.log.
	File string `mapstructure:"file"`
}

// keyKind is the value type of a configuration key.
type keyKind int

const (
	kindString keyKind = iota
	kindBool
	kindInt
	kindFloat
	kindDuration
)

// keys lists every configuration key and its type.
var keys = map[string]keyKind{
	"anthropic.api_key":          kindString,
	"llm.model":                  kindString,
	"llm.base_url":               kindString,
	"llm.temperature":            kindFloat,
	"llm.max_tokens":             kindInt,
	"llm.use_bedrock":            kindBool,
	"llm.aws_region":             kindString,
	"llm.aws_profile":            kindString,
	"pipeline.min_objectives":    kindInt,
	"pipeline.max_objectives":    kindInt,
	"pipeline.mcqs_per_lesson":   kindInt,
	"pipeline.personas_file":     kindString,
	"timeouts.stage":             kindDuration,
	"output.json_path":           kindString,
	"output.markdown_path":       kindString,
	"output.include_assessments": kindBool,
	"history.enabled":            kindBool,
	"history.db_path":            kindString,
	"log.mode":                   kindString,
	"log.file":                   kindString,
}

// Keys returns every configuration key in sorted order.
func Keys() []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, LLM_MODEL, LLM_BASE_URL, CURRICULA_*)
// 2. Project config (.curricula.yaml in current directory or parent)
// 3. User config (~/.config/curricula/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return LoadDir(cwd)
}

// LoadDir is Load with the project config searched from dir upwards.
func LoadDir(dir string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(dir); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", projectConfig, err)
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	bindEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.expand()

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.expand()

	return cfg, nil
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("CURRICULA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names the original tooling used, kept for compatibility
	_ = v.BindEnv("anthropic.api_key", "CURRICULA_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("llm.model", "CURRICULA_LLM_MODEL", "LLM_MODEL")
	_ = v.BindEnv("llm.base_url", "CURRICULA_LLM_BASE_URL", "LLM_BASE_URL")
}

// expand resolves ${VAR} references in secrets and paths.
func (c *Config) expand() {
	c.Anthropic.APIKey = expandEnv(c.Anthropic.APIKey)
	c.Pipeline.PersonasFile = expandEnv(c.Pipeline.PersonasFile)
	c.History.DBPath = expandEnv(c.History.DBPath)
	c.Log.File = expandEnv(c.Log.File)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := c.ObjectiveRange().Validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if c.Pipeline.MCQsPerLesson < 1 {
		return fmt.Errorf("pipeline.mcqs_per_lesson must be at least 1, got %d", c.Pipeline.MCQsPerLesson)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		return fmt.Errorf("llm.temperature must be between 0 and 1, got %v", c.LLM.Temperature)
	}
	if c.LLM.MaxTokens < 1 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.Timeouts.Stage < 0 {
		return fmt.Errorf("timeouts.stage must not be negative, got %v", c.Timeouts.Stage)
	}
	switch strings.ToLower(c.Log.Mode) {
	case "development", "dev", "production", "prod":
	default:
		return fmt.Errorf("log.mode must be development or production, got %q", c.Log.Mode)
	}
	return nil
}

// ObjectiveRange returns the configured objective count bounds.
func (c *Config) ObjectiveRange() models.ObjectiveRange {
	return models.ObjectiveRange{Min: c.Pipeline.MinObjectives, Max: c.Pipeline.MaxObjectives}
}

// HistoryPath returns the history database path, defaulting to the XDG data directory.
func (c *Config) HistoryPath() string {
	if c.History.DBPath != "" {
		return c.History.DBPath
	}
	return filepath.Join(getUserDataDir(), "history.db")
}

// Values returns every key with its current value formatted as a string.
func (c *Config) Values() map[string]string {
	return map[string]string{
		"anthropic.api_key":          c.Anthropic.APIKey,
		"llm.model":                  c.LLM.Model,
		"llm.base_url":               c.LLM.BaseURL,
		"llm.temperature":            strconv.FormatFloat(c.LLM.Temperature, 'g', -1, 64),
		"llm.max_tokens":             strconv.FormatInt(c.LLM.MaxTokens, 10),
		"llm.use_bedrock":            strconv.FormatBool(c.LLM.UseBedrock),
		"llm.aws_region":             c.LLM.AWSRegion,
		"llm.aws_profile":            c.LLM.AWSProfile,
		"pipeline.min_objectives":    strconv.Itoa(c.Pipeline.MinObjectives),
		"pipeline.max_objectives":    strconv.Itoa(c.Pipeline.MaxObjectives),
		"pipeline.mcqs_per_lesson":   strconv.Itoa(c.Pipeline.MCQsPerLesson),
		"pipeline.personas_file":     c.Pipeline.PersonasFile,
		"timeouts.stage":             c.Timeouts.Stage.String(),
		"output.json_path":           c.Output.JSONPath,
		"output.markdown_path":       c.Output.MarkdownPath,
		"output.include_assessments": strconv.FormatBool(c.Output.IncludeAssessments),
		"history.enabled":            strconv.FormatBool(c.History.Enabled),
		"history.db_path":            c.History.DBPath,
		"log.mode":                   c.Log.Mode,
		"log.file":                   c.Log.File,
	}
}

// Set writes a single key to the user config file, keeping other keys.
func Set(key, value string) error {
	return SetInFile(GetUserConfigPath(), key, value)
}

// SetInFile writes a single key to the config file at path.
func SetInFile(path, key, value string) error {
	typed, err := parseValue(key, value)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if _, statErr := os.Stat(path); statErr == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	}

	v.Set(key, typed)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func parseValue(key, value string) (interface{}, error) {
	kind, ok := keys[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key %q", key)
	}

	switch kind {
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s: expected true or false, got %q", key, value)
		}
		return b, nil
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s: expected an integer, got %q", key, value)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: expected a number, got %q", key, value)
		}
		return f, nil
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return nil, fmt.Errorf("%s: expected a duration like 5m, got %q", key, value)
		}
		return value, nil
	default:
		return value, nil
	}
}

// Save writes the full configuration to the user config file.
func Save(cfg *Config) error {
	return SaveTo(GetUserConfigPath(), cfg)
}

// SaveTo writes the full configuration to path.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	for key, value := range cfg.Values() {
		typed, err := parseValue(key, value)
		if err != nil {
			return err
		}
		v.Set(key, typed)
	}

	return v.WriteConfigAs(path)
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findProjectConfig(cwd)
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	d := Default()
	for key, value := range d.Values() {
		typed, _ := parseValue(key, value)
		v.SetDefault(key, typed)
	}
}

// getUserConfigDir returns the XDG config directory for curricula.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "curricula")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "curricula")
	}
	return filepath.Join(home, ".config", "curricula")
}

// getUserDataDir returns the XDG data directory for curricula.
func getUserDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "curricula")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".local", "share", "curricula")
	}
	return filepath.Join(home, ".local", "share", "curricula")
}

// findProjectConfig searches for .curricula.yaml in dir and its parents.
func findProjectConfig(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(dir, ProjectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:       "claude-sonnet-4-20250514",
			Temperature: 0.2,
			MaxTokens:   8192,
		},
		Pipeline: PipelineConfig{
			MinObjectives: 3,
			MaxObjectives: 5,
			MCQsPerLesson: 2,
		},
		Timeouts: TimeoutsConfig{
			Stage: 5 * time.Minute,
		},
		Output: OutputConfig{
			JSONPath:           "syllabus.json",
			IncludeAssessments: true,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Mode: "development",
		},
	}
}
