package tasks

import (
	"strings"
	"testing"

	"github.com/ShayCichocki/curricula/internal/agents"
	"github.com/ShayCichocki/curricula/pkg/models"
)

var (
	objectives = []models.LearningObjective{
		{ID: "obj-1", Text: "Define ethics"},
		{ID: "obj-2", Text: "Compare frameworks"},
	}
	lessons = []models.LessonBlueprint{
		{ID: "lesson-1", ObjectiveID: "obj-1", Title: "What is ethics?", DurationMinutes: 45},
		{ID: "lesson-2", ObjectiveID: "obj-2", Title: "Frameworks", DurationMinutes: 60},
	}
)

func TestObjectives(t *testing.T) {
	task := Objectives(agents.ObjectiveSpecialist, "AI Ethics", "Undergraduates", models.DefaultObjectiveRange())

	if task.Stage != models.StageObjectives {
		t.Errorf("Stage = %q", task.Stage)
	}
	if len(task.Context) != 0 {
		t.Errorf("Context = %v, want none", task.Context)
	}
	for _, want := range []string{`3-5 SMART learning objectives`, `"AI Ethics"`, `"Undergraduates"`, "Bloom's taxonomy"} {
		if !strings.Contains(task.Description, want) {
			t.Errorf("Description missing %q", want)
		}
	}
	if !strings.Contains(task.System(), "Learning Objective Specialist") {
		t.Error("System() does not carry the persona role")
	}
	if !strings.HasSuffix(task.Prompt(), "as strings") {
		t.Errorf("Prompt() = %q, want expected output appended", task.Prompt())
	}
}

func TestLessons(t *testing.T) {
	task := Lessons(agents.CurriculumDesigner, objectives)

	if task.Stage != models.StageLessons {
		t.Errorf("Stage = %q", task.Stage)
	}
	for _, want := range []string{`"id": "obj-2"`, `"text": "Compare frameworks"`, `"objective_id"`, `"seat_time"`} {
		if !strings.Contains(task.Description, want) {
			t.Errorf("Description missing %q", want)
		}
	}
	if !strings.Contains(task.ExpectedOutput, "2 lesson blueprints") {
		t.Errorf("ExpectedOutput = %q", task.ExpectedOutput)
	}
}

func TestAssessments(t *testing.T) {
	task := Assessments(agents.AssessmentSpecialist, lessons, objectives, 2)

	for _, want := range []string{"provide 2 MCQs and 1 short answer", `"id": "lesson-2"`, `"lesson_id"`, `"text": "Define ethics"`} {
		if !strings.Contains(task.Description, want) {
			t.Errorf("Description missing %q", want)
		}
	}
	if len(task.Context) != 2 {
		t.Errorf("Context = %v", task.Context)
	}

	clamped := Assessments(agents.AssessmentSpecialist, lessons, objectives, 0)
	if !strings.Contains(clamped.Description, "provide 1 MCQs") {
		t.Error("mcqsPerLesson below 1 was not clamped")
	}
}

func TestReview(t *testing.T) {
	task := Review(agents.QualityReviewer, Draft{
		CourseIdea: "AI Ethics",
		Audience:   "Undergraduates",
		Objectives: objectives,
		Lessons:    lessons,
	})

	for _, want := range []string{`"course_idea": "AI Ethics"`, "PASS or FAIL verdict on the first line", "CONCERN:"} {
		if !strings.Contains(task.Description, want) {
			t.Errorf("Description missing %q", want)
		}
	}
	if len(task.Context) != 3 {
		t.Errorf("Context = %v", task.Context)
	}
}
