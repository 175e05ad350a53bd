package models

// MultipleChoice is a single multiple-choice item.
type MultipleChoice struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	// Correct is the zero-based index into Options of the right answer.
	Correct     int    `json:"correct"`
	Explanation string `json:"explanation"`
}

// CorrectValid reports whether Correct points inside Options.
func (m MultipleChoice) CorrectValid() bool {
	return m.Correct >= 0 && m.Correct < len(m.Options)
}

// ShortAnswer is an open question graded against a rubric.
type ShortAnswer struct {
	Question     string `json:"question"`
	Rubric       string `json:"rubric"`
	SampleAnswer string `json:"sample_answer"`
}

// Assessment measures one lesson's objective.
type Assessment struct {
	// ID is the stable identifier of this assessment.
	ID string `json:"id"`
	// LessonID is the ID of the lesson being assessed.
	LessonID string `json:"lesson_id"`
	// ObjectiveID is the ID of the objective being measured.
	ObjectiveID string `json:"objective_id"`
	// LessonTitle duplicates the lesson title for readers of the JSON document.
	LessonTitle string `json:"lesson_title"`
	// ObjectiveMeasured duplicates the objective text for readers of the JSON document.
	ObjectiveMeasured string           `json:"objective_measured"`
	MCQs              []MultipleChoice `json:"mcqs"`
	ShortAnswer       ShortAnswer      `json:"short_answer"`
}
