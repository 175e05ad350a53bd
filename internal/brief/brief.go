// Package brief loads course briefs from YAML files and watches them for
// changes.
package brief

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/curricula/pkg/models"
)

// Brief is a course request stored on disk.
//
//	course_idea: Intro to Photography
//	audience: Retirees with a new camera
//	objectives: {min: 3, max: 4}
//	mcqs_per_lesson: 2
//	output:
//	  json: photo/syllabus.json
//	  markdown: photo/syllabus.md
type Brief struct {
	CourseIdea    string      `yaml:"course_idea"`
	Audience      string      `yaml:"audience"`
	Objectives    *Range      `yaml:"objectives,omitempty"`
	MCQsPerLesson int         `yaml:"mcqs_per_lesson,omitempty"`
	Output        OutputPaths `yaml:"output,omitempty"`
}

// Range bounds the number of objectives for this brief only.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// OutputPaths override the configured export paths.
type OutputPaths struct {
	JSON     string `yaml:"json,omitempty"`
	Markdown string `yaml:"markdown,omitempty"`
}

// Load reads and validates a brief.
func Load(path string) (*Brief, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading brief: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a brief from YAML.
func Parse(data []byte) (*Brief, error) {
	var b Brief
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing brief: %w", err)
	}
	b.CourseIdea = strings.TrimSpace(b.CourseIdea)
	b.Audience = strings.TrimSpace(b.Audience)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks that the brief names a course and an audience.
func (b *Brief) Validate() error {
	var missing []string
	if strings.TrimSpace(b.CourseIdea) == "" {
		missing = append(missing, "course_idea")
	}
	if strings.TrimSpace(b.Audience) == "" {
		missing = append(missing, "audience")
	}
	if len(missing) > 0 {
		return fmt.Errorf("brief is missing %s", strings.Join(missing, " and "))
	}
	if b.MCQsPerLesson < 0 {
		return errors.New("brief mcqs_per_lesson must not be negative")
	}
	if b.Objectives != nil {
		if err := b.ObjectiveRange(models.DefaultObjectiveRange()).Validate(); err != nil {
			return fmt.Errorf("brief objectives: %w", err)
		}
	}
	return nil
}

// ObjectiveRange returns the brief's range, or fallback when unset.
func (b *Brief) ObjectiveRange(fallback models.ObjectiveRange) models.ObjectiveRange {
	if b.Objectives == nil {
		return fallback
	}
	return models.ObjectiveRange{Min: b.Objectives.Min, Max: b.Objectives.Max}
}
