package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points user config lookups at a temp dir and clears env overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	for _, name := range []string{"ANTHROPIC_API_KEY", "LLM_MODEL", "LLM_BASE_URL", "CURRICULA_LLM_MODEL", "CURRICULA_LLM_TEMPERATURE"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.LLM.Model != "claude-sonnet-4-20250514" {
		t.Errorf("expected default model, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %v", cfg.LLM.Temperature)
	}
	if r := cfg.ObjectiveRange(); r.Min != 3 || r.Max != 5 {
		t.Errorf("expected objective range 3-5, got %v", r)
	}
	if cfg.Pipeline.MCQsPerLesson != 2 {
		t.Errorf("expected 2 MCQs per lesson, got %d", cfg.Pipeline.MCQsPerLesson)
	}
	if cfg.Timeouts.Stage != 5*time.Minute {
		t.Errorf("expected stage timeout 5m, got %v", cfg.Timeouts.Stage)
	}
	if cfg.Output.JSONPath != "syllabus.json" || !cfg.Output.IncludeAssessments {
		t.Errorf("unexpected output defaults: %+v", cfg.Output)
	}
	if !cfg.History.Enabled {
		t.Error("expected history enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, configPath, `
anthropic:
  api_key: test-key
llm:
  model: claude-haiku-4-5-20251001
  temperature: 0.5
pipeline:
  min_objectives: 2
  max_objectives: 4
timeouts:
  stage: 90s
output:
  include_assessments: false
`)

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Anthropic.APIKey != "test-key" {
		t.Errorf("expected api_key 'test-key', got %q", cfg.Anthropic.APIKey)
	}
	if cfg.LLM.Model != "claude-haiku-4-5-20251001" || cfg.LLM.Temperature != 0.5 {
		t.Errorf("unexpected llm config: %+v", cfg.LLM)
	}
	if cfg.LLM.MaxTokens != 8192 {
		t.Errorf("expected default max_tokens to survive, got %d", cfg.LLM.MaxTokens)
	}
	if cfg.Pipeline.MinObjectives != 2 || cfg.Pipeline.MaxObjectives != 4 {
		t.Errorf("unexpected pipeline config: %+v", cfg.Pipeline)
	}
	if cfg.Timeouts.Stage != 90*time.Second {
		t.Errorf("expected stage timeout 90s, got %v", cfg.Timeouts.Stage)
	}
	if cfg.Output.IncludeAssessments {
		t.Error("expected include_assessments false")
	}
}

func TestLoadFromPath_Missing(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadDir_Precedence(t *testing.T) {
	home := isolate(t)

	writeFile(t, filepath.Join(home, "config", "curricula", "config.yaml"), `
llm:
  model: user-model
  max_tokens: 1000
pipeline:
  mcqs_per_lesson: 3
`)

	project := filepath.Join(home, "project")
	nested := filepath.Join(project, "courses", "ethics")
	writeFile(t, filepath.Join(project, ProjectConfigName), `
llm:
  model: project-model
output:
  json_path: out/syllabus.json
`)
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadDir(nested)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if cfg.LLM.Model != "project-model" {
		t.Errorf("project config should override user config, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.MaxTokens != 1000 || cfg.Pipeline.MCQsPerLesson != 3 {
		t.Errorf("user config values lost: %+v %+v", cfg.LLM, cfg.Pipeline)
	}
	if cfg.Output.JSONPath != "out/syllabus.json" {
		t.Errorf("json_path = %q", cfg.Output.JSONPath)
	}

	t.Setenv("LLM_MODEL", "env-model")
	t.Setenv("LLM_BASE_URL", "https://gateway.example.com")
	t.Setenv("CURRICULA_LLM_TEMPERATURE", "0.9")
	cfg, err = LoadDir(nested)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if cfg.LLM.Model != "env-model" {
		t.Errorf("environment should override files, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.BaseURL != "https://gateway.example.com" {
		t.Errorf("base_url = %q", cfg.LLM.BaseURL)
	}
	if cfg.LLM.Temperature != 0.9 {
		t.Errorf("temperature = %v, want 0.9", cfg.LLM.Temperature)
	}
}

func TestExpandEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TEST_VAR", "expanded-value")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, configPath, "anthropic:\n  api_key: ${TEST_VAR}\nhistory:\n  db_path: ${TEST_VAR}/history.db\n")

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Anthropic.APIKey != "expanded-value" {
		t.Errorf("expected expanded api key, got %q", cfg.Anthropic.APIKey)
	}
	if cfg.HistoryPath() != "expanded-value/history.db" {
		t.Errorf("HistoryPath() = %q", cfg.HistoryPath())
	}
}

func TestHistoryPath_Default(t *testing.T) {
	home := isolate(t)
	want := filepath.Join(home, "data", "curricula", "history.db")
	if got := Default().HistoryPath(); got != want {
		t.Errorf("HistoryPath() = %q, want %q", got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"min objectives", func(c *Config) { c.Pipeline.MinObjectives = 0 }, "minimum objectives"},
		{"inverted range", func(c *Config) { c.Pipeline.MaxObjectives = 2 }, "below minimum"},
		{"mcqs", func(c *Config) { c.Pipeline.MCQsPerLesson = 0 }, "mcqs_per_lesson"},
		{"temperature", func(c *Config) { c.LLM.Temperature = 1.5 }, "temperature"},
		{"max tokens", func(c *Config) { c.LLM.MaxTokens = 0 }, "max_tokens"},
		{"log mode", func(c *Config) { c.Log.Mode = "verbose" }, "log.mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestSetInFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "curricula", "config.yaml")

	if err := SetInFile(path, "llm.model", "claude-opus-4-1-20250805"); err != nil {
		t.Fatalf("SetInFile failed: %v", err)
	}
	if err := SetInFile(path, "pipeline.mcqs_per_lesson", "4"); err != nil {
		t.Fatalf("SetInFile failed: %v", err)
	}
	if err := SetInFile(path, "timeouts.stage", "2m"); err != nil {
		t.Fatalf("SetInFile failed: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.LLM.Model != "claude-opus-4-1-20250805" {
		t.Errorf("model = %q, first value lost", cfg.LLM.Model)
	}
	if cfg.Pipeline.MCQsPerLesson != 4 {
		t.Errorf("mcqs_per_lesson = %d", cfg.Pipeline.MCQsPerLesson)
	}
	if cfg.Timeouts.Stage != 2*time.Minute {
		t.Errorf("stage timeout = %v", cfg.Timeouts.Stage)
	}

	for _, bad := range [][2]string{
		{"llm.colour", "blue"},
		{"history.enabled", "maybe"},
		{"pipeline.max_objectives", "five"},
		{"timeouts.stage", "soon"},
	} {
		if err := SetInFile(path, bad[0], bad[1]); err == nil {
			t.Errorf("SetInFile(%s=%s) should fail", bad[0], bad[1])
		}
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.LLM.Model = "saved-model"
	cfg.History.Enabled = false
	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.LLM.Model != "saved-model" || loaded.History.Enabled {
		t.Errorf("round trip lost values: %+v", loaded)
	}
	if loaded.Timeouts.Stage != 5*time.Minute {
		t.Errorf("stage timeout = %v", loaded.Timeouts.Stage)
	}
}

func TestKeys(t *testing.T) {
	all := Keys()
	if len(all) != len(Default().Values()) {
		t.Errorf("Keys() has %d entries, Values() has %d", len(all), len(Default().Values()))
	}
	for _, k := range all {
		if _, ok := Default().Values()[k]; !ok {
			t.Errorf("key %q missing from Values()", k)
		}
	}
}
