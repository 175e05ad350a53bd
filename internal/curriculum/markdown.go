package curriculum

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/curricula/pkg/models"
)

// RenderOptions controls optional sections of the Markdown report.
type RenderOptions struct {
	// IncludeAssessments adds an "### Assessment" block to each lesson.
	IncludeAssessments bool
	// IncludeReview appends the reviewer's verdict and notes.
	IncludeReview bool
}

// DefaultRenderOptions renders every section.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{IncludeAssessments: true, IncludeReview: true}
}

// Markdown renders the package with DefaultRenderOptions.
func (p *Package) Markdown() string {
	return p.MarkdownWith(DefaultRenderOptions())
}

// MarkdownWith renders the package as a Markdown report.
//
// The report contains exactly one "##" heading per lesson plus the
// "## Learning Objectives" heading. Model-written text is flattened or
// quoted so it can never introduce headings of its own.
func (p *Package) MarkdownWith(opts RenderOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Syllabus\n", inline(p.CourseIdea))
	fmt.Fprintf(&b, "**Target Audience:** %s\n\n", inline(p.Audience))
	b.WriteString("*Generated by multi-agent collaboration: objectives, lessons, assessments, quality review*\n\n")

	b.WriteString("## Learning Objectives\n")
	for i, obj := range p.Objectives {
		fmt.Fprintf(&b, "%d. %s\n", i+1, inline(obj.Text))
	}
	b.WriteString("\n")

	for i, lesson := range p.Lessons {
		obj, _ := p.ObjectiveFor(lesson)

		fmt.Fprintf(&b, "## Lesson %d: %s\n", i+1, inline(lesson.Title))
		fmt.Fprintf(&b, "**Learning Outcome:** %s\n\n", inline(obj.Text))
		fmt.Fprintf(&b, "**Hook:** %s\n\n", inline(lesson.Hook))
		fmt.Fprintf(&b, "**Core Content:** %s\n\n", inline(lesson.Explanation))
		fmt.Fprintf(&b, "**Practice:** %s\n\n", inline(lesson.Practice))
		fmt.Fprintf(&b, "**Reflection:** %s\n\n", inline(lesson.Reflection))
		fmt.Fprintf(&b, "**Duration:** %d minutes\n\n", lesson.DurationMinutes)
		if lesson.DeliveryMode != "" {
			fmt.Fprintf(&b, "**Delivery Mode:** %s\n\n", lesson.DeliveryMode)
		}

		if opts.IncludeAssessments {
			if a, ok := p.AssessmentFor(lesson); ok {
				writeAssessment(&b, a)
			}
		}

		b.WriteString("---\n\n")
	}

	if opts.IncludeReview && (p.Review.Verdict != "" || p.Review.Notes != "") {
		fmt.Fprintf(&b, "**Quality Review:** %s\n\n", p.Review.Label())
		for _, c := range p.Review.Concerns {
			fmt.Fprintf(&b, "- %s\n", inline(c))
		}
		if len(p.Review.Concerns) > 0 {
			b.WriteString("\n")
		}
		if notes := strings.TrimSpace(p.Review.Notes); notes != "" {
			b.WriteString(quote(notes))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func writeAssessment(b *strings.Builder, a models.Assessment) {
	b.WriteString("### Assessment\n")
	for i, q := range a.MCQs {
		fmt.Fprintf(b, "%d. %s\n", i+1, inline(q.Question))
		for j, opt := range q.Options {
			fmt.Fprintf(b, "   - %c. %s\n", optionLetter(j), inline(opt))
		}
		if q.CorrectValid() {
			fmt.Fprintf(b, "   - *Answer:* %c. %s\n", optionLetter(q.Correct), inline(q.Explanation))
		}
	}
	b.WriteString("\n")

	sa := a.ShortAnswer
	if sa.Question != "" {
		fmt.Fprintf(b, "**Short Answer:** %s\n\n", inline(sa.Question))
		if sa.Rubric != "" {
			fmt.Fprintf(b, "*Rubric:* %s\n\n", inline(sa.Rubric))
		}
		if sa.SampleAnswer != "" {
			fmt.Fprintf(b, "*Sample Answer:* %s\n\n", inline(sa.SampleAnswer))
		}
	}
}

func optionLetter(i int) rune {
	if i < 26 {
		return rune('A' + i)
	}
	return '?'
}

// inline collapses whitespace runs, including newlines, into single spaces.
func inline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// quote renders multi-line text as a Markdown blockquote.
func quote(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			lines[i] = ">"
			continue
		}
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n") + "\n"
}
