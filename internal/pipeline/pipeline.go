// Package pipeline runs the four curriculum stages in sequence, threading each
// stage's parsed output into the next.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ShayCichocki/curricula/internal/curriculum"
	"github.com/ShayCichocki/curricula/internal/extract"
	"github.com/ShayCichocki/curricula/internal/tasks"
	"github.com/ShayCichocki/curricula/pkg/models"
)

// Completer sends one system/user message pair to a model and returns its text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Request is a generation request.
type Request struct {
	CourseIdea string
	Audience   string
}

// Validate trims the request in place and checks both fields are present.
func (r *Request) Validate() error {
	r.CourseIdea = strings.TrimSpace(r.CourseIdea)
	r.Audience = strings.TrimSpace(r.Audience)
	switch {
	case r.CourseIdea == "":
		return fmt.Errorf("%w: course idea is empty", ErrInvalidRequest)
	case r.Audience == "":
		return fmt.Errorf("%w: target audience is empty", ErrInvalidRequest)
	}
	return nil
}

// Usage is the token usage of one run.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Result holds every stage output of a successful run.
type Result struct {
	Request     Request
	Objectives  []models.LearningObjective
	Lessons     []models.LessonBlueprint
	Assessments []models.Assessment
	Review      models.ReviewVerdict
	// Raw is the unparsed model output per stage.
	Raw     map[models.Stage]string
	Usage   Usage
	Elapsed time.Duration
	// Package is set by Generate.
	Package *curriculum.Package
}

// Runner executes the pipeline against a Completer.
type Runner struct {
	completer Completer
	opts      runnerOptions
}

// New creates a Runner.
func New(completer Completer, opts ...Option) *Runner {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Runner{completer: completer, opts: o}
}

// Run executes objectives, lessons, assessments and review in order. Any
// failure aborts the run with a *GenerationError and no partial result.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := r.opts.limits.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	start := r.opts.now()
	var in0, out0 int64
	if r.opts.usage != nil {
		in0, out0 = r.opts.usage.Total()
	}

	log := r.opts.logger.With("course_idea", req.CourseIdea, "audience", req.Audience)
	log.Info("generation started")

	result := &Result{Request: req, Raw: make(map[models.Stage]string, 4)}

	// Stage 1: objectives
	persona, err := r.opts.registry.ForStage(models.StageObjectives)
	if err != nil {
		return nil, &GenerationError{Stage: models.StageObjectives, Err: err}
	}
	task := tasks.Objectives(persona, req.CourseIdea, req.Audience, r.opts.limits)
	err = r.runStage(ctx, task, result, func(raw string) error {
		objectives, err := extract.Objectives(raw, r.opts.limits)
		result.Objectives = objectives
		return err
	})
	if err != nil {
		return nil, err
	}

	// Stage 2: lessons
	persona, err = r.opts.registry.ForStage(models.StageLessons)
	if err != nil {
		return nil, &GenerationError{Stage: models.StageLessons, Err: err}
	}
	task = tasks.Lessons(persona, result.Objectives)
	err = r.runStage(ctx, task, result, func(raw string) error {
		lessons, err := extract.Lessons(raw, result.Objectives)
		if err != nil {
			return err
		}
		if err := checkLessonCoverage(raw, result.Objectives, lessons); err != nil {
			return err
		}
		result.Lessons = lessons
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Stage 3: assessments
	persona, err = r.opts.registry.ForStage(models.StageAssessments)
	if err != nil {
		return nil, &GenerationError{Stage: models.StageAssessments, Err: err}
	}
	task = tasks.Assessments(persona, result.Lessons, result.Objectives, r.opts.mcqsPerLesson)
	err = r.runStage(ctx, task, result, func(raw string) error {
		assessments, err := extract.Assessments(raw, result.Lessons)
		if err != nil {
			return err
		}
		if err := checkAssessmentCoverage(raw, result.Lessons, assessments); err != nil {
			return err
		}
		result.Assessments = assessments
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Stage 4: review
	persona, err = r.opts.registry.ForStage(models.StageReview)
	if err != nil {
		return nil, &GenerationError{Stage: models.StageReview, Err: err}
	}
	task = tasks.Review(persona, tasks.Draft{
		CourseIdea:  req.CourseIdea,
		Audience:    req.Audience,
		Objectives:  result.Objectives,
		Lessons:     result.Lessons,
		Assessments: result.Assessments,
	})
	err = r.runStage(ctx, task, result, func(raw string) error {
		review, err := extract.Review(raw)
		result.Review = review
		return err
	})
	if err != nil {
		return nil, err
	}

	result.Elapsed = r.opts.now().Sub(start)
	if r.opts.usage != nil {
		in1, out1 := r.opts.usage.Total()
		result.Usage = Usage{InputTokens: in1 - in0, OutputTokens: out1 - out0}
	}

	log.Info("generation finished",
		"elapsed", result.Elapsed.Round(time.Millisecond).String(),
		"verdict", result.Review.Label(),
		"input_tokens", result.Usage.InputTokens,
		"output_tokens", result.Usage.OutputTokens)

	return result, nil
}

// Generate runs the pipeline and assembles the result into a package.
// Assembly problems are returned as *curriculum.ValidationError.
func (r *Runner) Generate(ctx context.Context, req Request) (*Result, error) {
	result, err := r.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	pkg, err := curriculum.Assemble(
		result.Request.CourseIdea, result.Request.Audience,
		result.Objectives, result.Lessons, result.Assessments, result.Review,
		curriculum.WithModel(r.opts.model), curriculum.WithClock(r.opts.now),
	)
	if err != nil {
		r.opts.logger.Error("assembly failed", "error", err)
		return nil, err
	}
	result.Package = pkg
	return result, nil
}

// runStage calls the model for one task under the stage timeout and hands the
// raw output to parse.
func (r *Runner) runStage(ctx context.Context, task tasks.Task, result *Result, parse func(raw string) error) error {
	log := r.opts.logger.With("stage", string(task.Stage))
	r.emit(Event{Stage: task.Stage, Status: StatusStarted})
	log.Debug("stage started", "persona", task.Persona.Role)
	start := r.opts.now()

	fail := func(err error) error {
		elapsed := r.opts.now().Sub(start)
		r.emit(Event{Stage: task.Stage, Status: StatusFailed, Elapsed: elapsed, Err: err})
		return &GenerationError{Stage: task.Stage, Err: err}
	}

	stageCtx, cancel := ctx, context.CancelFunc(func() {})
	if r.opts.stageTimeout > 0 {
		stageCtx, cancel = context.WithTimeout(ctx, r.opts.stageTimeout)
	}
	raw, err := r.completer.Complete(stageCtx, task.System(), task.Prompt())
	timedOut := errors.Is(stageCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
	cancel()
	if err != nil {
		if timedOut {
			err = fmt.Errorf("timed out after %s: %w", r.opts.stageTimeout, err)
		}
		log.Error("model call failed", "error", err)
		return fail(err)
	}
	result.Raw[task.Stage] = raw

	if err := parse(raw); err != nil {
		var extractErr *extract.Error
		if errors.As(err, &extractErr) {
			log.Error("unusable model output", "reason", extractErr.Reason, "preview", extractErr.Preview)
		} else {
			log.Error("unusable model output", "error", err)
		}
		return fail(err)
	}

	elapsed := r.opts.now().Sub(start)
	log.Info("stage finished", "elapsed", elapsed.Round(time.Millisecond).String(), "output_chars", len(raw))
	r.emit(Event{Stage: task.Stage, Status: StatusDone, Elapsed: elapsed})
	return nil
}

func (r *Runner) emit(e Event) {
	if r.opts.observer != nil {
		r.opts.observer(e)
	}
}

// checkLessonCoverage requires exactly one lesson per objective.
func checkLessonCoverage(raw string, objectives []models.LearningObjective, lessons []models.LessonBlueprint) error {
	count := make(map[string]int, len(objectives))
	for _, l := range lessons {
		count[l.ObjectiveID]++
	}
	for _, o := range objectives {
		switch n := count[o.ID]; {
		case n == 0:
			return extract.Errorf(models.StageLessons, raw, "objective %s has no lesson", o.ID)
		case n > 1:
			return extract.Errorf(models.StageLessons, raw, "objective %s has %d lessons", o.ID, n)
		}
	}
	return nil
}

// checkAssessmentCoverage requires exactly one assessment per lesson.
func checkAssessmentCoverage(raw string, lessons []models.LessonBlueprint, assessments []models.Assessment) error {
	count := make(map[string]int, len(lessons))
	for _, a := range assessments {
		count[a.LessonID]++
	}
	for _, l := range lessons {
		switch n := count[l.ID]; {
		case n == 0:
			return extract.Errorf(models.StageAssessments, raw, "lesson %s has no assessment", l.ID)
		case n > 1:
			return extract.Errorf(models.StageAssessments, raw, "lesson %s has %d assessments", l.ID, n)
		}
	}
	return nil
}
