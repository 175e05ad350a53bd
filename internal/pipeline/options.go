package pipeline

import (
	"time"

	"github.com/ShayCichocki/curricula/internal/agents"
	"github.com/ShayCichocki/curricula/internal/logging"
	"github.com/ShayCichocki/curricula/pkg/models"
)

// DefaultStageTimeout bounds a single model call.
const DefaultStageTimeout = 5 * time.Minute

// DefaultMCQsPerLesson is the number of multiple-choice questions requested per lesson.
const DefaultMCQsPerLesson = 2

// UsageSource reports cumulative token usage, e.g. *api.TokenTracker.
type UsageSource interface {
	Total() (input, output int64)
}

// Option configures a Runner. Use With* functions to create Options.
type Option func(*runnerOptions)

type runnerOptions struct {
	registry      *agents.Registry
	limits        models.ObjectiveRange
	mcqsPerLesson int
	stageTimeout  time.Duration
	observer      Observer
	logger        *logging.Logger
	usage         UsageSource
	model         string
	now           func() time.Time
}

func defaultOptions() runnerOptions {
	return runnerOptions{
		registry:      agents.Default(),
		limits:        models.DefaultObjectiveRange(),
		mcqsPerLesson: DefaultMCQsPerLesson,
		stageTimeout:  DefaultStageTimeout,
		logger:        logging.Nop(),
		now:           time.Now,
	}
}

// WithRegistry sets the personas used for each stage.
func WithRegistry(r *agents.Registry) Option {
	return func(o *runnerOptions) { o.registry = r }
}

// WithObjectiveRange sets how many objectives the first stage must produce.
func WithObjectiveRange(r models.ObjectiveRange) Option {
	return func(o *runnerOptions) { o.limits = r }
}

// WithMCQsPerLesson sets how many multiple-choice questions are requested per lesson.
func WithMCQsPerLesson(n int) Option {
	return func(o *runnerOptions) { o.mcqsPerLesson = n }
}

// WithStageTimeout bounds each model call. Zero or negative disables the bound.
func WithStageTimeout(d time.Duration) Option {
	return func(o *runnerOptions) { o.stageTimeout = d }
}

// WithObserver receives progress events.
func WithObserver(fn Observer) Option {
	return func(o *runnerOptions) { o.observer = fn }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *runnerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithUsage sets where per-run token usage is read from.
func WithUsage(u UsageSource) Option {
	return func(o *runnerOptions) { o.usage = u }
}

// WithModel records the model name in generated packages.
func WithModel(model string) Option {
	return func(o *runnerOptions) { o.model = model }
}

// WithClock overrides the clock (mainly for testing).
func WithClock(now func() time.Time) Option {
	return func(o *runnerOptions) { o.now = now }
}
