// Package tasks builds the prompt for each pipeline stage.
package tasks

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ShayCichocki/curricula/internal/agents"
	"github.com/ShayCichocki/curricula/pkg/models"
)

// Task is a unit of work for one persona.
type Task struct {
	Stage          models.Stage
	Persona        agents.Persona
	Description    string
	ExpectedOutput string
	// Context lists the upstream stages whose output is embedded in Description.
	Context []models.Stage
}

// System returns the system message for the task.
func (t Task) System() string {
	return t.Persona.SystemPrompt()
}

// Prompt returns the user message for the task.
func (t Task) Prompt() string {
	return t.Description + "\n\nExpected output: " + t.ExpectedOutput
}

// Draft is the curriculum handed to the reviewer.
type Draft struct {
	CourseIdea  string                     `json:"course_idea"`
	Audience    string                     `json:"target_audience"`
	Objectives  []models.LearningObjective `json:"objectives"`
	Lessons     []models.LessonBlueprint   `json:"lessons"`
	Assessments []models.Assessment        `json:"assessments"`
}

// Objectives builds the objective-writing task.
func Objectives(persona agents.Persona, courseIdea, audience string, limits models.ObjectiveRange) Task {
	return Task{
		Stage:          models.StageObjectives,
		Persona:        persona,
		Description:    fmt.Sprintf(objectivesPrompt, limits, courseIdea, audience),
		ExpectedOutput: fmt.Sprintf("A JSON array of %s SMART learning objectives as strings", limits),
	}
}

// Lessons builds the lesson-design task.
func Lessons(persona agents.Persona, objectives []models.LearningObjective) Task {
	return Task{
		Stage:          models.StageLessons,
		Persona:        persona,
		Description:    fmt.Sprintf(lessonsPrompt, render(objectives)),
		ExpectedOutput: fmt.Sprintf("A JSON array of %d lesson blueprints with the specified structure", len(objectives)),
		Context:        []models.Stage{models.StageObjectives},
	}
}

// Assessments builds the assessment-writing task.
func Assessments(persona agents.Persona, lessons []models.LessonBlueprint, objectives []models.LearningObjective, mcqsPerLesson int) Task {
	if mcqsPerLesson < 1 {
		mcqsPerLesson = 1
	}
	return Task{
		Stage:          models.StageAssessments,
		Persona:        persona,
		Description:    fmt.Sprintf(assessmentsPrompt, render(lessons), render(objectives), mcqsPerLesson),
		ExpectedOutput: fmt.Sprintf("A JSON array of %d assessments with MCQs and short answers", len(lessons)),
		Context:        []models.Stage{models.StageObjectives, models.StageLessons},
	}
}

// Review builds the quality review task.
func Review(persona agents.Persona, draft Draft) Task {
	return Task{
		Stage:          models.StageReview,
		Persona:        persona,
		Description:    fmt.Sprintf(reviewPrompt, render(draft)),
		ExpectedOutput: "A review summary with PASS/FAIL status on the first line and improvement notes",
		Context:        []models.Stage{models.StageObjectives, models.StageLessons, models.StageAssessments},
	}
}

// render formats upstream records as indented JSON for the prompt.
func render(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		// Records are plain structs; fall back to Go syntax rather than fail.
		return strings.TrimSpace(fmt.Sprintf("%+v", v))
	}
	return string(data)
}
