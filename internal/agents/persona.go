// Package agents defines the personas that run each pipeline stage.
package agents

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/curricula/pkg/models"
)

// Persona is an LLM agent profile: who it is and what it is trying to do.
type Persona struct {
	// Name is the registry key, matching the stage the persona runs.
	Name      string `yaml:"name"`
	Role      string `yaml:"role"`
	Goal      string `yaml:"goal"`
	Backstory string `yaml:"backstory"`
}

// SystemPrompt renders the persona as a system message.
func (p Persona) SystemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a %s.\n\n", p.Role)
	fmt.Fprintf(&b, "Your goal: %s\n\n", p.Goal)
	b.WriteString(strings.TrimSpace(p.Backstory))
	b.WriteString("\n\nWork alone and answer in exactly the format the task asks for.")
	return b.String()
}

func (p Persona) validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("persona has no name")
	case strings.TrimSpace(p.Role) == "":
		return fmt.Errorf("persona %q has no role", p.Name)
	case strings.TrimSpace(p.Goal) == "":
		return fmt.Errorf("persona %q has no goal", p.Name)
	}
	return nil
}

// Built-in personas, one per stage.
var (
	ObjectiveSpecialist = Persona{
		Name: string(models.StageObjectives),
		Role: "Learning Objective Specialist",
		Goal: "Create clear, measurable learning objectives for any course",
		Backstory: "You are an expert instructional designer with 15+ years of experience " +
			"creating SMART learning objectives. You understand Bloom's taxonomy and can craft " +
			"objectives that are specific, measurable, achievable, relevant, and time-bound.",
	}

	CurriculumDesigner = Persona{
		Name: string(models.StageLessons),
		Role: "Curriculum Designer",
		Goal: "Design engaging, effective lesson plans that achieve learning objectives",
		Backstory: "You are a master curriculum designer who creates comprehensive lesson " +
			"blueprints. You excel at designing hooks, explanations, practice activities, and " +
			"reflection exercises that keep learners engaged.",
	}

	AssessmentSpecialist = Persona{
		Name: string(models.StageAssessments),
		Role: "Assessment Specialist",
		Goal: "Create valid assessments that measure learning outcomes",
		Backstory: "You are an expert in educational assessment with deep knowledge of " +
			"creating MCQs, short answers, and practical exercises that accurately measure " +
			"whether learning objectives have been achieved.",
	}

	QualityReviewer = Persona{
		Name: string(models.StageReview),
		Role: "Quality Assurance Specialist",
		Goal: "Ensure curriculum alignment and quality",
		Backstory: "You are a quality assurance expert who reviews curricula for alignment " +
			"between objectives, lessons, and assessments. You provide constructive feedback " +
			"and ensure high educational standards.",
	}
)
