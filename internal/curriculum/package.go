// Package curriculum assembles stage outputs into a curriculum package and
// renders it as a Markdown report and a JSON document.
package curriculum

import (
	"fmt"
	"strings"
	"time"

	"github.com/ShayCichocki/curricula/pkg/models"
)

// GenerationMethod tags packages produced by the agent pipeline.
const GenerationMethod = "sequential multi-agent pipeline"

// Package is a fully assembled curriculum.
type Package struct {
	CourseIdea  string
	Audience    string
	Objectives  []models.LearningObjective
	Lessons     []models.LessonBlueprint
	Assessments []models.Assessment
	Review      models.ReviewVerdict
	// Model is the LLM model that generated the content, if known.
	Model       string
	GeneratedAt time.Time
}

// Option configures Assemble.
type Option func(*assembleOptions)

type assembleOptions struct {
	model string
	now   func() time.Time
}

// WithModel records the generating model in the package metadata.
func WithModel(model string) Option {
	return func(o *assembleOptions) {
		o.model = model
	}
}

// WithClock overrides the clock used to stamp GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(o *assembleOptions) {
		o.now = now
	}
}

// Assemble validates the stage outputs and merges them into a Package.
//
// Lessons are matched to objectives by ObjectiveID and assessments to lessons
// by LessonID; the returned package lists lessons in objective order and
// assessments in lesson order. Every structural problem is collected into a
// single *ValidationError. The input slices are not modified.
func Assemble(
	courseIdea, audience string,
	objectives []models.LearningObjective,
	lessons []models.LessonBlueprint,
	assessments []models.Assessment,
	review models.ReviewVerdict,
	opts ...Option,
) (*Package, error) {
	o := assembleOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	pkg := &Package{
		CourseIdea:  strings.TrimSpace(courseIdea),
		Audience:    strings.TrimSpace(audience),
		Objectives:  append([]models.LearningObjective(nil), objectives...),
		Lessons:     append([]models.LessonBlueprint(nil), lessons...),
		Assessments: make([]models.Assessment, len(assessments)),
		Review:      review,
		Model:       o.model,
		GeneratedAt: o.now().UTC().Truncate(time.Second),
	}
	for i, a := range assessments {
		a.MCQs = append([]models.MultipleChoice(nil), a.MCQs...)
		pkg.Assessments[i] = a
	}
	if len(pkg.Review.Concerns) == 0 {
		pkg.Review.Concerns = nil
	}

	if problems := pkg.normalize(); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return pkg, nil
}

// Validate checks the structural invariants of an already assembled package,
// for example one loaded from a JSON document.
func (p *Package) Validate() error {
	if problems := p.normalize(); len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// normalize checks every invariant, orders lessons and assessments by their
// keyed parents and fills denormalised titles. It returns the problems found.
func (p *Package) normalize() []string {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if p.CourseIdea == "" {
		addf("course idea is empty")
	}
	if p.Audience == "" {
		addf("target audience is empty")
	}
	if len(p.Objectives) == 0 {
		addf("no learning objectives")
	}
	if len(p.Objectives) != len(p.Lessons) || len(p.Lessons) != len(p.Assessments) {
		addf("count mismatch: %d objectives, %d lessons, %d assessments",
			len(p.Objectives), len(p.Lessons), len(p.Assessments))
	}

	objectiveIndex := make(map[string]int, len(p.Objectives))
	for i, obj := range p.Objectives {
		if obj.ID == "" {
			addf("objective %d has no id", i+1)
			continue
		}
		if _, dup := objectiveIndex[obj.ID]; dup {
			addf("duplicate objective id %q", obj.ID)
			continue
		}
		if strings.TrimSpace(obj.Text) == "" {
			addf("objective %q has no text", obj.ID)
		}
		objectiveIndex[obj.ID] = i
	}

	lessonIndex := make(map[string]int, len(p.Lessons))
	lessonByObjective := make(map[string]string, len(p.Lessons))
	for i, l := range p.Lessons {
		name := l.ID
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
			addf("lesson %d has no id", i+1)
		} else if _, dup := lessonIndex[l.ID]; dup {
			addf("duplicate lesson id %q", l.ID)
		} else {
			lessonIndex[l.ID] = i
		}

		if strings.TrimSpace(l.Title) == "" {
			addf("lesson %s has no title", name)
		}
		if l.DurationMinutes <= 0 {
			addf("lesson %s has non-positive duration %d", name, l.DurationMinutes)
		}
		if _, ok := objectiveIndex[l.ObjectiveID]; !ok {
			addf("lesson %s references unknown objective %q", name, l.ObjectiveID)
			continue
		}
		if other, taken := lessonByObjective[l.ObjectiveID]; taken {
			addf("objective %q is covered by both lesson %s and lesson %s", l.ObjectiveID, other, name)
			continue
		}
		lessonByObjective[l.ObjectiveID] = name
	}
	for _, obj := range p.Objectives {
		if _, ok := lessonByObjective[obj.ID]; obj.ID != "" && !ok {
			addf("objective %q has no lesson", obj.ID)
		}
	}

	assessed := make(map[string]bool, len(p.Assessments))
	for i := range p.Assessments {
		a := &p.Assessments[i]
		name := a.ID
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}

		li, ok := lessonIndex[a.LessonID]
		if !ok {
			addf("assessment %s references unknown lesson %q", name, a.LessonID)
		} else {
			if assessed[a.LessonID] {
				addf("lesson %q has more than one assessment", a.LessonID)
			}
			assessed[a.LessonID] = true

			lesson := p.Lessons[li]
			if a.ObjectiveID == "" {
				a.ObjectiveID = lesson.ObjectiveID
			} else if a.ObjectiveID != lesson.ObjectiveID {
				addf("assessment %s measures objective %q but lesson %q serves %q",
					name, a.ObjectiveID, a.LessonID, lesson.ObjectiveID)
			}
			if a.LessonTitle == "" {
				a.LessonTitle = lesson.Title
			}
			if oi, ok := objectiveIndex[a.ObjectiveID]; ok && a.ObjectiveMeasured == "" {
				a.ObjectiveMeasured = p.Objectives[oi].Text
			}
		}

		for j, q := range a.MCQs {
			if len(q.Options) < 2 {
				addf("assessment %s question %d has %d options, need at least 2", name, j+1, len(q.Options))
			}
			if !q.CorrectValid() {
				addf("assessment %s question %d: correct index %d out of range [0, %d)",
					name, j+1, q.Correct, len(q.Options))
			}
		}
	}
	for _, l := range p.Lessons {
		if _, ok := lessonIndex[l.ID]; ok && !assessed[l.ID] {
			addf("lesson %q has no assessment", l.ID)
		}
	}

	if len(problems) > 0 {
		return problems
	}

	p.sortByKeys(objectiveIndex)
	return nil
}

// sortByKeys orders lessons by objective position and assessments by lesson
// position. Callers guarantee the keyed relations are one-to-one.
func (p *Package) sortByKeys(objectiveIndex map[string]int) {
	lessons := make([]models.LessonBlueprint, len(p.Lessons))
	for _, l := range p.Lessons {
		lessons[objectiveIndex[l.ObjectiveID]] = l
	}
	p.Lessons = lessons

	lessonPos := make(map[string]int, len(lessons))
	for i, l := range lessons {
		lessonPos[l.ID] = i
	}
	assessments := make([]models.Assessment, len(p.Assessments))
	for _, a := range p.Assessments {
		assessments[lessonPos[a.LessonID]] = a
	}
	p.Assessments = assessments
}

// ObjectiveFor returns the objective a lesson serves.
func (p *Package) ObjectiveFor(lesson models.LessonBlueprint) (models.LearningObjective, bool) {
	for _, obj := range p.Objectives {
		if obj.ID == lesson.ObjectiveID {
			return obj, true
		}
	}
	return models.LearningObjective{}, false
}

// AssessmentFor returns the assessment of a lesson.
func (p *Package) AssessmentFor(lesson models.LessonBlueprint) (models.Assessment, bool) {
	for _, a := range p.Assessments {
		if a.LessonID == lesson.ID {
			return a, true
		}
	}
	return models.Assessment{}, false
}

// TotalMinutes sums the seat time of every lesson.
func (p *Package) TotalMinutes() int {
	total := 0
	for _, l := range p.Lessons {
		total += l.DurationMinutes
	}
	return total
}
