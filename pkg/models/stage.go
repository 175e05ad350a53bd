package models

import "fmt"

// Stage identifies one step of the generation pipeline.
type Stage string

const (
	// StageObjectives writes the learning objectives.
	StageObjectives Stage = "objectives"
	// StageLessons designs one lesson per objective.
	StageLessons Stage = "lessons"
	// StageAssessments writes one assessment per lesson.
	StageAssessments Stage = "assessments"
	// StageReview checks the whole draft and returns PASS or FAIL.
	StageReview Stage = "review"
)

// Stages returns every stage in execution order.
func Stages() []Stage {
	return []Stage{StageObjectives, StageLessons, StageAssessments, StageReview}
}

// Valid returns true if the stage is a known value.
func (s Stage) Valid() bool {
	switch s {
	case StageObjectives, StageLessons, StageAssessments, StageReview:
		return true
	default:
		return false
	}
}

// ObjectiveRange bounds how many objectives a curriculum may have.
type ObjectiveRange struct {
	Min int
	Max int
}

// DefaultObjectiveRange is three to five objectives.
func DefaultObjectiveRange() ObjectiveRange {
	return ObjectiveRange{Min: 3, Max: 5}
}

// Contains reports whether n lies within the range. A zero Max means no upper bound.
func (r ObjectiveRange) Contains(n int) bool {
	if n < r.Min {
		return false
	}
	return r.Max <= 0 || n <= r.Max
}

// Validate checks that the range is usable.
func (r ObjectiveRange) Validate() error {
	if r.Min < 1 {
		return fmt.Errorf("minimum objectives must be at least 1, got %d", r.Min)
	}
	if r.Max > 0 && r.Max < r.Min {
		return fmt.Errorf("maximum objectives (%d) is below minimum (%d)", r.Max, r.Min)
	}
	return nil
}

func (r ObjectiveRange) String() string {
	if r.Max <= 0 {
		return fmt.Sprintf("at least %d", r.Min)
	}
	if r.Min == r.Max {
		return fmt.Sprintf("%d", r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}
