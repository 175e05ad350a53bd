package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ShayCichocki/curricula/internal/agents"
	"github.com/ShayCichocki/curricula/internal/extract"
	"github.com/ShayCichocki/curricula/pkg/models"
)

const (
	objectivesOutput = `Here are the objectives:
["Define what X is", "Apply X to a small problem"]`

	lessonsOutput = "```json\n" + `[
  {"objective_id": "obj-2", "title": "Lesson 2: Using X", "hook": "A puzzle", "explain": "Steps", "practice": "Solve it", "reflect": "What was hard?", "seat_time": 50, "modality": "online"},
  {"objective_id": "obj-1", "title": "What is X?", "hook": "A story", "explain": "Definition", "practice": "Spot X", "reflect": "Where is X?", "seat_time": 40, "modality": "in-person"}
]` + "\n```"

	assessmentsOutput = `[
  {"lesson_id": "lesson-2", "mcqs": [{"question": "First step?", "options": ["Look", "Leap"], "correct": 0, "explanation": "Look first."}], "short_answer": {"question": "Apply X.", "rubric": "Uses steps.", "sample_answer": "I looked."}},
  {"lesson_id": "lesson-1", "mcqs": [{"question": "X is?", "options": ["A thing", "A place"], "correct": "A"}], "short_answer": {"question": "Define X.", "rubric": "Says thing."}}
]`

	reviewOutput = "PASS\nCONCERN: Lesson 1 could use an example.\nOtherwise aligned."
)

// scriptedCompleter returns canned responses in order and records each call.
type scriptedCompleter struct {
	mu        sync.Mutex
	responses []string
	errs      map[int]error
	calls     []call
	tracker   *fakeTracker
}

type call struct {
	system string
	user   string
}

func (s *scriptedCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.calls)
	s.calls = append(s.calls, call{system: system, user: user})
	if s.tracker != nil {
		s.tracker.add(100, 10)
	}
	if err := s.errs[n]; err != nil {
		return "", err
	}
	if n >= len(s.responses) {
		return "", errors.New("unexpected call")
	}
	return s.responses[n], nil
}

type fakeTracker struct {
	mu      sync.Mutex
	in, out int64
}

func (f *fakeTracker) add(in, out int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.in += in
	f.out += out
}

func (f *fakeTracker) Total() (int64, int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.in, f.out
}

func happyCompleter() *scriptedCompleter {
	return &scriptedCompleter{
		responses: []string{objectivesOutput, lessonsOutput, assessmentsOutput, reviewOutput},
	}
}

var twoObjectives = WithObjectiveRange(models.ObjectiveRange{Min: 2, Max: 5})

func TestRunner_Generate(t *testing.T) {
	completer := happyCompleter()
	completer.tracker = &fakeTracker{in: 1000, out: 1000}

	var events []Event
	runner := New(completer,
		twoObjectives,
		WithObserver(func(e Event) { events = append(events, e) }),
		WithUsage(completer.tracker),
		WithModel("test-model"),
	)

	result, err := runner.Generate(context.Background(), Request{CourseIdea: "  Intro to X ", Audience: "Beginners"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	pkg := result.Package
	if pkg == nil {
		t.Fatal("Package is nil")
	}
	if pkg.CourseIdea != "Intro to X" {
		t.Errorf("CourseIdea = %q, want trimmed", pkg.CourseIdea)
	}
	if len(pkg.Objectives) != 2 || len(pkg.Lessons) != 2 || len(pkg.Assessments) != 2 {
		t.Fatalf("counts = %d/%d/%d", len(pkg.Objectives), len(pkg.Lessons), len(pkg.Assessments))
	}
	if pkg.Lessons[0].ObjectiveID != "obj-1" || pkg.Lessons[0].Title != "What is X?" {
		t.Errorf("lessons not ordered by objective: %+v", pkg.Lessons[0])
	}
	for i, l := range pkg.Lessons {
		if want := models.LessonID(i); l.ID != want {
			t.Errorf("lesson %d id = %q, want %q", i, l.ID, want)
		}
		if a := pkg.Assessments[i]; a.LessonID != l.ID || a.ID != models.AssessmentID(i) {
			t.Errorf("assessment %d = %s for %s, want %s for %s", i, a.ID, a.LessonID, models.AssessmentID(i), l.ID)
		}
	}
	if md := pkg.Markdown(); !strings.Contains(md, "## Lesson 1: What is X?") {
		t.Errorf("lesson 1 heading does not match lesson-1:\n%s", md)
	}
	if !pkg.Review.Passed || len(pkg.Review.Concerns) != 1 {
		t.Errorf("Review = %+v", pkg.Review)
	}
	if pkg.Model != "test-model" {
		t.Errorf("Model = %q", pkg.Model)
	}

	if result.Usage.InputTokens != 400 || result.Usage.OutputTokens != 40 {
		t.Errorf("Usage = %+v, want 400/40", result.Usage)
	}
	if len(result.Raw) != 4 {
		t.Errorf("Raw has %d stages, want 4", len(result.Raw))
	}

	var statuses []string
	for _, e := range events {
		statuses = append(statuses, string(e.Stage)+":"+string(e.Status))
	}
	want := "objectives:started objectives:done lessons:started lessons:done " +
		"assessments:started assessments:done review:started review:done"
	if strings.Join(statuses, " ") != want {
		t.Errorf("events = %v", statuses)
	}
}

func TestRunner_ThreadsOutputsDownstream(t *testing.T) {
	completer := happyCompleter()
	runner := New(completer, twoObjectives)

	if _, err := runner.Run(context.Background(), Request{CourseIdea: "Intro to X", Audience: "Beginners"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(completer.calls) != 4 {
		t.Fatalf("calls = %d, want 4", len(completer.calls))
	}

	roles := []string{
		agents.ObjectiveSpecialist.Role,
		agents.CurriculumDesigner.Role,
		agents.AssessmentSpecialist.Role,
		agents.QualityReviewer.Role,
	}
	for i, role := range roles {
		if !strings.Contains(completer.calls[i].system, role) {
			t.Errorf("call %d system prompt lacks %q", i, role)
		}
	}

	if !strings.Contains(completer.calls[0].user, `"Intro to X"`) {
		t.Error("objectives prompt lacks the course idea")
	}
	if !strings.Contains(completer.calls[1].user, "Apply X to a small problem") {
		t.Error("lessons prompt lacks parsed objectives")
	}
	if !strings.Contains(completer.calls[2].user, `"title": "Using X"`) {
		t.Error("assessments prompt lacks parsed lessons")
	}
	if !strings.Contains(completer.calls[3].user, `"question": "First step?"`) {
		t.Error("review prompt lacks parsed assessments")
	}
}

func TestRunner_InvalidRequest(t *testing.T) {
	tests := []Request{
		{CourseIdea: "", Audience: "Beginners"},
		{CourseIdea: "Intro to X", Audience: "   "},
	}
	for _, req := range tests {
		completer := happyCompleter()
		_, err := New(completer).Run(context.Background(), req)
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Run(%+v) error = %v, want ErrInvalidRequest", req, err)
		}
		if len(completer.calls) != 0 {
			t.Errorf("model was called for invalid request")
		}
	}
}

func TestRunner_StageFailures(t *testing.T) {
	apiErr := errors.New("connection refused")

	tests := []struct {
		name        string
		completer   *scriptedCompleter
		stage       models.Stage
		wantCalls   int
		wantExtract bool
	}{
		{
			name:      "api error on lessons",
			completer: &scriptedCompleter{responses: []string{objectivesOutput}, errs: map[int]error{1: apiErr}},
			stage:     models.StageLessons,
			wantCalls: 2,
		},
		{
			name:        "unparseable objectives",
			completer:   &scriptedCompleter{responses: []string{"I cannot help with that."}},
			stage:       models.StageObjectives,
			wantCalls:   1,
			wantExtract: true,
		},
		{
			name: "objective without lesson",
			completer: &scriptedCompleter{responses: []string{
				objectivesOutput,
				`[{"objective_id": "obj-1", "title": "Only one"}]`,
			}},
			stage:       models.StageLessons,
			wantCalls:   2,
			wantExtract: true,
		},
		{
			name: "lesson without assessment",
			completer: &scriptedCompleter{responses: []string{
				objectivesOutput, lessonsOutput,
				`[{"lesson_id": "lesson-1", "mcqs": [], "short_answer": {"question": "q"}}]`,
			}},
			stage:       models.StageAssessments,
			wantCalls:   3,
			wantExtract: true,
		},
		{
			name: "review without verdict",
			completer: &scriptedCompleter{responses: []string{
				objectivesOutput, lessonsOutput, assessmentsOutput, "Looks fine.",
			}},
			stage:       models.StageReview,
			wantCalls:   4,
			wantExtract: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var failed []models.Stage
			runner := New(tt.completer, twoObjectives, WithObserver(func(e Event) {
				if e.Status == StatusFailed {
					failed = append(failed, e.Stage)
				}
			}))

			result, err := runner.Generate(context.Background(), Request{CourseIdea: "Intro to X", Audience: "Beginners"})
			if result != nil {
				t.Error("partial result returned")
			}

			var genErr *GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("error = %v, want *GenerationError", err)
			}
			if genErr.Stage != tt.stage {
				t.Errorf("Stage = %q, want %q", genErr.Stage, tt.stage)
			}
			var extractErr *extract.Error
			if got := errors.As(err, &extractErr); got != tt.wantExtract {
				t.Errorf("wraps *extract.Error = %v, want %v (%v)", got, tt.wantExtract, err)
			}
			if !tt.wantExtract && !errors.Is(err, apiErr) {
				t.Errorf("error does not wrap the API error: %v", err)
			}
			if len(tt.completer.calls) != tt.wantCalls {
				t.Errorf("calls = %d, want %d", len(tt.completer.calls), tt.wantCalls)
			}
			if len(failed) != 1 || failed[0] != tt.stage {
				t.Errorf("failed events = %v", failed)
			}
		})
	}
}

// blockingCompleter waits for its context to end.
type blockingCompleter struct{}

func (blockingCompleter) Complete(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestRunner_StageTimeout(t *testing.T) {
	runner := New(blockingCompleter{}, WithStageTimeout(10*time.Millisecond))

	_, err := runner.Run(context.Background(), Request{CourseIdea: "Intro to X", Audience: "Beginners"})
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %v, want *GenerationError", err)
	}
	if genErr.Stage != models.StageObjectives {
		t.Errorf("Stage = %q", genErr.Stage)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error does not wrap DeadlineExceeded: %v", err)
	}
	if !strings.Contains(err.Error(), "timed out after 10ms") {
		t.Errorf("error = %v", err)
	}
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(blockingCompleter{}).Run(ctx, Request{CourseIdea: "Intro to X", Audience: "Beginners"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if strings.Contains(err.Error(), "timed out") {
		t.Errorf("cancellation reported as timeout: %v", err)
	}
}

func TestRunner_MissingPersona(t *testing.T) {
	registry := agents.NewRegistry()
	if err := registry.Register(agents.ObjectiveSpecialist); err != nil {
		t.Fatal(err)
	}

	completer := happyCompleter()
	_, err := New(completer, twoObjectives, WithRegistry(registry)).
		Run(context.Background(), Request{CourseIdea: "Intro to X", Audience: "Beginners"})

	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Stage != models.StageLessons {
		t.Errorf("error = %v, want lessons GenerationError", err)
	}
}

func TestRunner_ObjectiveRangeEnforced(t *testing.T) {
	completer := happyCompleter()
	_, err := New(completer).Run(context.Background(), Request{CourseIdea: "Intro to X", Audience: "Beginners"})

	var extractErr *extract.Error
	if !errors.As(err, &extractErr) {
		t.Fatalf("error = %v, want *extract.Error", err)
	}
	if !strings.Contains(extractErr.Reason, "got 2 objectives, want 3-5") {
		t.Errorf("Reason = %q", extractErr.Reason)
	}
}

func TestGenerate_FailVerdictStillAssembles(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		objectivesOutput, lessonsOutput, assessmentsOutput, "FAIL\nCONCERN: too shallow",
	}}
	result, err := New(completer, twoObjectives).Generate(context.Background(), Request{CourseIdea: "Intro to X", Audience: "Beginners"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Package.Review.Passed {
		t.Error("Review.Passed = true for FAIL verdict")
	}
}
