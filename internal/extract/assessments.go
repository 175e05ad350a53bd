package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ShayCichocki/curricula/pkg/models"
)

// optionLabel matches a leading option letter such as "A.", "b)" or "(C)".
var optionLabel = regexp.MustCompile(`^\s*(?:\([A-Za-z]\)|[A-Za-z][.)])\s+`)

// answer is the correct option of a question: a 0-based index, an option
// letter ("B"), or the text of the option itself. A string that matches an
// option's text always resolves to that option, even when it looks numeric.
type answer struct {
	index int
	set   bool
	text  string
}

func (a *answer) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		if f != math.Trunc(f) {
			return fmt.Errorf("correct answer index %s is not a whole number", data)
		}
		a.index, a.set = int(f), true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("correct answer must be a number or string, got %s", data)
	}
	a.text = strings.TrimSpace(s)
	return nil
}

// resolve returns the 0-based option index, or -1 when it cannot be found.
// String answers are matched against option text first, then read as an
// index, then as an option letter.
func (a answer) resolve(options []string) int {
	if a.set {
		return a.index
	}
	if a.text == "" {
		return -1
	}
	for i, opt := range options {
		if normalizeText(opt) == normalizeText(a.text) {
			return i
		}
	}
	if n, err := strconv.Atoi(a.text); err == nil {
		return n
	}
	if letter := strings.ToUpper(strings.TrimRight(a.text, ".)")); len(letter) == 1 {
		if c := letter[0]; c >= 'A' && c <= 'Z' {
			return int(c - 'A')
		}
	}
	return -1
}

type mcqItem struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     answer   `json:"correct"`
	Explanation string   `json:"explanation"`
}

type shortAnswerItem struct {
	Question     string `json:"question"`
	Rubric       string `json:"rubric"`
	SampleAnswer string `json:"sample_answer"`
}

type assessmentItem struct {
	LessonID    ref             `json:"lesson_id"`
	Lesson      ref             `json:"lesson"`
	LessonTitle ref             `json:"lesson_title"`
	MCQs        []mcqItem       `json:"mcqs"`
	ShortAnswer shortAnswerItem `json:"short_answer"`
}

// Assessments parses the assessment creator's output. Each assessment must
// reference one of lessons by ID, position or title; it inherits the lesson's
// objective. Assessments are returned in lesson order and numbered in that
// order (assess-1, ...). Option letters such as "A." are stripped and letter
// or text answers become indices.
func Assessments(raw string, lessons []models.LessonBlueprint) ([]models.Assessment, error) {
	items, err := list(raw, "assessments")
	if err != nil {
		return nil, Errorf(models.StageAssessments, raw, "%v", err)
	}
	if len(items) == 0 {
		return nil, Errorf(models.StageAssessments, raw, "no assessments returned")
	}

	resolver := newResolver(len(lessons))
	for i, l := range lessons {
		resolver.add(i, l.ID, l.Title)
	}

	assessments := make([]models.Assessment, 0, len(items))
	parents := make([]int, 0, len(items))
	for i, item := range items {
		var ai assessmentItem
		if err := json.Unmarshal(item, &ai); err != nil {
			return nil, Errorf(models.StageAssessments, raw, "assessment %d: %v", i+1, err)
		}

		key := ai.LessonID
		if key == "" {
			key = ai.Lesson
		}
		if key == "" {
			key = ai.LessonTitle
		}
		if key == "" {
			return nil, Errorf(models.StageAssessments, raw, "assessment %d does not name its lesson", i+1)
		}
		idx, ok := resolver.resolve(string(key))
		if !ok {
			return nil, Errorf(models.StageAssessments, raw, "assessment %d references unknown lesson %q", i+1, key)
		}
		lesson := lessons[idx]

		mcqs := make([]models.MultipleChoice, 0, len(ai.MCQs))
		for j, q := range ai.MCQs {
			options := make([]string, len(q.Options))
			for k, opt := range q.Options {
				options[k] = strings.TrimSpace(optionLabel.ReplaceAllString(opt, ""))
			}
			correct := q.Correct.resolve(options)
			if correct < 0 || correct >= len(options) {
				return nil, Errorf(models.StageAssessments, raw,
					"assessment %d question %d: correct answer does not match any of %d options", i+1, j+1, len(options))
			}
			mcqs = append(mcqs, models.MultipleChoice{
				Question:    strings.TrimSpace(q.Question),
				Options:     options,
				Correct:     correct,
				Explanation: strings.TrimSpace(q.Explanation),
			})
		}

		parents = append(parents, idx)
		assessments = append(assessments, models.Assessment{
			LessonID:    lesson.ID,
			ObjectiveID: lesson.ObjectiveID,
			LessonTitle: lesson.Title,
			MCQs:        mcqs,
			ShortAnswer: models.ShortAnswer{
				Question:     strings.TrimSpace(ai.ShortAnswer.Question),
				Rubric:       strings.TrimSpace(ai.ShortAnswer.Rubric),
				SampleAnswer: strings.TrimSpace(ai.ShortAnswer.SampleAnswer),
			},
		})
	}

	assessments = byParent(assessments, parents)
	for i := range assessments {
		assessments[i].ID = models.AssessmentID(i)
	}
	return assessments, nil
}
