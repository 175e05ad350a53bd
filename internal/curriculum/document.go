package curriculum

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ShayCichocki/curricula/pkg/models"
)

// Document is the JSON form of a Package (syllabus.json).
type Document struct {
	CourseMetadata     Metadata                   `json:"course_metadata"`
	Objectives         []models.LearningObjective `json:"objectives"`
	Lessons            []models.LessonBlueprint   `json:"lessons"`
	Assessments        []models.Assessment        `json:"assessments"`
	ReviewNotes        string                     `json:"review_notes"`
	AgentCollaboration Collaboration              `json:"agent_collaboration"`
}

// Metadata describes the course and how the package was produced.
type Metadata struct {
	CourseIdea       string    `json:"course_idea"`
	TargetAudience   string    `json:"target_audience"`
	TotalObjectives  int       `json:"total_objectives"`
	TotalLessons     int       `json:"total_lessons"`
	TotalAssessments int       `json:"total_assessments"`
	TotalMinutes     int       `json:"total_minutes"`
	GenerationMethod string    `json:"generation_method"`
	ReviewPassed     bool      `json:"review_passed"`
	ReviewVerdict    string    `json:"review_verdict"`
	ReviewConcerns   []string  `json:"review_concerns,omitempty"`
	Model            string    `json:"model,omitempty"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// Collaboration is the fixed descriptor of the agent workflow.
type Collaboration struct {
	AgentsUsed      int      `json:"agents_used"`
	WorkflowType    string   `json:"workflow_type"`
	Specializations []string `json:"specializations"`
}

// DefaultCollaboration describes the four-stage sequential workflow.
func DefaultCollaboration() Collaboration {
	return Collaboration{
		AgentsUsed:      4,
		WorkflowType:    "sequential_collaboration",
		Specializations: []string{"objectives", "lessons", "assessments", "quality_review"},
	}
}

// Document converts the package into its JSON document form.
func (p *Package) Document() Document {
	return Document{
		CourseMetadata: Metadata{
			CourseIdea:       p.CourseIdea,
			TargetAudience:   p.Audience,
			TotalObjectives:  len(p.Objectives),
			TotalLessons:     len(p.Lessons),
			TotalAssessments: len(p.Assessments),
			TotalMinutes:     p.TotalMinutes(),
			GenerationMethod: GenerationMethod,
			ReviewPassed:     p.Review.Passed,
			ReviewVerdict:    p.Review.Verdict,
			ReviewConcerns:   p.Review.Concerns,
			Model:            p.Model,
			GeneratedAt:      p.GeneratedAt,
		},
		Objectives:         p.Objectives,
		Lessons:            p.Lessons,
		Assessments:        p.Assessments,
		ReviewNotes:        p.Review.Notes,
		AgentCollaboration: DefaultCollaboration(),
	}
}

// JSON returns the pretty-printed (2-space indented) document.
func (p *Package) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(p.Document(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append(data, '\n'), nil
}

// Package rebuilds the in-memory package from a document.
func (d Document) Package() *Package {
	return &Package{
		CourseIdea:  d.CourseMetadata.CourseIdea,
		Audience:    d.CourseMetadata.TargetAudience,
		Objectives:  d.Objectives,
		Lessons:     d.Lessons,
		Assessments: d.Assessments,
		Review: models.ReviewVerdict{
			Passed:   d.CourseMetadata.ReviewPassed,
			Verdict:  d.CourseMetadata.ReviewVerdict,
			Concerns: d.CourseMetadata.ReviewConcerns,
			Notes:    d.ReviewNotes,
		},
		Model:       d.CourseMetadata.Model,
		GeneratedAt: d.CourseMetadata.GeneratedAt,
	}
}

// ParseDocument decodes a syllabus.json document and validates the result.
func ParseDocument(data []byte) (*Package, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	pkg := doc.Package()
	if err := pkg.Validate(); err != nil {
		return nil, err
	}
	return pkg, nil
}
