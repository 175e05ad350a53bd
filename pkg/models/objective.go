package models

import "fmt"

// LearningObjective is a measurable outcome a learner should reach.
// Objectives are ordered; the order is the suggested teaching sequence.
type LearningObjective struct {
	// ID is the stable identifier lessons use to reference this objective.
	ID string `json:"id"`
	// Text is the objective statement, e.g. "Analyze key ethical frameworks".
	Text string `json:"text"`
}

// ObjectiveID returns the identifier assigned to the objective at the given
// zero-based position.
func ObjectiveID(index int) string {
	return fmt.Sprintf("obj-%d", index+1)
}

// LessonID returns the identifier assigned to the lesson at the given
// zero-based position.
func LessonID(index int) string {
	return fmt.Sprintf("lesson-%d", index+1)
}

// AssessmentID returns the identifier assigned to the assessment at the
// given zero-based position.
func AssessmentID(index int) string {
	return fmt.Sprintf("assess-%d", index+1)
}
