package main

import (
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/curricula/internal/agents"
	"github.com/ShayCichocki/curricula/internal/api"
	"github.com/ShayCichocki/curricula/internal/config"
	"github.com/ShayCichocki/curricula/internal/logging"
	"github.com/ShayCichocki/curricula/internal/pipeline"
	"github.com/ShayCichocki/curricula/internal/store"
)

// session holds the per-process collaborators built from configuration.
type session struct {
	cfg    *config.Config
	logger *logging.Logger
	client *api.Client
	// completer is the client's Runner; tests substitute a fake.
	completer pipeline.Completer
	registry  *agents.Registry
	history   store.History
}

// newSession loads configuration and builds the logger, LLM client and
// persona registry. The history store is opened when enabled; failing to
// open it is logged and generation continues without it.
func newSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, logger: logger}

	s.registry, err = buildRegistry(cfg)
	if err != nil {
		s.Close()
		return nil, err
	}

	if err := config.CheckAPIKeyFormat(cfg); err != nil {
		logger.Warn("api key looks wrong", "error", err, "source", string(config.GetAPIKeySource(cfg)))
	}
	s.client, err = newClient(cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.completer = api.NewRunner(s.client)

	if cfg.History.Enabled {
		db, err := store.OpenMigrated(cfg.HistoryPath())
		if err != nil {
			logger.Warn("history disabled", "path", cfg.HistoryPath(), "error", err)
		} else {
			s.history = db
		}
	}

	return s, nil
}

// Close releases the store, then the logger.
func (s *session) Close() {
	if s.client != nil {
		tracker := s.client.Tracker()
		s.logger.Info("session finished",
			"api_calls", tracker.Calls(),
			"cost_usd", fmt.Sprintf("%.4f", tracker.Cost()))
	}
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			s.logger.Warn("closing history", "error", err)
		}
	}
	s.logger.Sync()
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	path := cfg.Log.File
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		path = logging.DefaultPath(cwd)
	}
	logger, err := logging.New(cfg.Log.Mode, path)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

// clientConfig maps configuration onto the API client settings.
func clientConfig(cfg *config.Config) (api.ClientConfig, error) {
	key, err := config.GetAPIKey(cfg)
	if err != nil {
		return api.ClientConfig{}, err
	}
	temperature := cfg.LLM.Temperature
	return api.ClientConfig{
		Model:         anthropic.Model(cfg.LLM.Model),
		APIKey:        key,
		BaseURL:       cfg.LLM.BaseURL,
		Temperature:   &temperature,
		MaxTokens:     cfg.LLM.MaxTokens,
		UseAWSBedrock: cfg.LLM.UseBedrock,
		AWSRegion:     cfg.LLM.AWSRegion,
		AWSProfile:    cfg.LLM.AWSProfile,
	}, nil
}

// newClient builds the single LLM client used for the whole process.
func newClient(cfg *config.Config) (*api.Client, error) {
	cc, err := clientConfig(cfg)
	if err != nil {
		return nil, err
	}
	client, err := api.NewClient(cc)
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}
	return client, nil
}

func buildRegistry(cfg *config.Config) (*agents.Registry, error) {
	registry := agents.Default()
	if cfg.Pipeline.PersonasFile != "" {
		if err := registry.LoadOverrides(cfg.Pipeline.PersonasFile); err != nil {
			return nil, fmt.Errorf("load personas: %w", err)
		}
	}
	return registry, nil
}

// pipelineOptions returns the runner options derived from the session.
func (s *session) pipelineOptions(observe pipeline.Observer) []pipeline.Option {
	opts := []pipeline.Option{
		pipeline.WithRegistry(s.registry),
		pipeline.WithObjectiveRange(s.cfg.ObjectiveRange()),
		pipeline.WithMCQsPerLesson(s.cfg.Pipeline.MCQsPerLesson),
		pipeline.WithStageTimeout(s.cfg.Timeouts.Stage),
		pipeline.WithLogger(s.logger),
		pipeline.WithObserver(observe),
	}
	if s.client != nil {
		opts = append(opts,
			pipeline.WithUsage(s.client.Tracker()),
			pipeline.WithModel(string(s.client.Model())))
	}
	return opts
}

// record saves a finished generation to history. Failures are logged only.
func (s *session) record(result *pipeline.Result) *store.Run {
	if s.history == nil || result == nil || result.Package == nil {
		return nil
	}
	run, err := s.history.Save(result.Package, store.Usage{
		InputTokens:  result.Usage.InputTokens,
		OutputTokens: result.Usage.OutputTokens,
		Elapsed:      result.Elapsed,
	})
	if err != nil {
		s.logger.Warn("saving history", "error", err)
		return nil
	}
	s.logger.Info("saved to history", "run_id", run.ID)
	return run
}
