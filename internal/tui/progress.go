package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/curricula/internal/pipeline"
	"github.com/ShayCichocki/curricula/pkg/models"
)

var stageLabels = map[models.Stage]string{
	models.StageObjectives:  "Learning objectives",
	models.StageLessons:     "Lesson blueprints",
	models.StageAssessments: "Assessments",
	models.StageReview:      "Quality review",
}

// stageState is the display state of one stage.
type stageState struct {
	status  pipeline.Status // empty while pending
	elapsed time.Duration
	err     error
}

// ProgressView shows per-stage progress of a running generation.
type ProgressView struct {
	stages []models.Stage
	states map[models.Stage]stageState
	width  int

	labelStyle    lipgloss.Style
	pendingStyle  lipgloss.Style
	runningStyle  lipgloss.Style
	doneStyle     lipgloss.Style
	failedStyle   lipgloss.Style
	progressFull  lipgloss.Style
	progressEmpty lipgloss.Style
}

// NewProgressView creates a ProgressView with every stage pending.
func NewProgressView() *ProgressView {
	return &ProgressView{
		stages: models.Stages(),
		states: make(map[models.Stage]stageState),
		width:  80,

		labelStyle: lipgloss.NewStyle().
			Width(22),

		pendingStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		runningStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true),

		doneStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")),

		failedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),

		progressFull: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")),

		progressEmpty: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}

// Apply records a pipeline event.
func (v *ProgressView) Apply(e pipeline.Event) {
	v.states[e.Stage] = stageState{status: e.Status, elapsed: e.Elapsed, err: e.Err}
}

// Reset marks every stage pending again.
func (v *ProgressView) Reset() {
	v.states = make(map[models.Stage]stageState)
}

// SetWidth sets the render width.
func (v *ProgressView) SetWidth(width int) {
	v.width = width
}

// Completed returns how many stages finished successfully.
func (v *ProgressView) Completed() int {
	n := 0
	for _, st := range v.states {
		if st.status == pipeline.StatusDone {
			n++
		}
	}
	return n
}

// Current returns the running stage, if any.
func (v *ProgressView) Current() (models.Stage, bool) {
	for _, s := range v.stages {
		if v.states[s].status == pipeline.StatusStarted {
			return s, true
		}
	}
	return "", false
}

// View renders one line per stage followed by a progress bar. spin is the
// current spinner frame shown beside the running stage.
func (v *ProgressView) View(spin string) string {
	var b strings.Builder

	for _, s := range v.stages {
		st := v.states[s]
		label := v.labelStyle.Render(stageLabels[s])

		switch st.status {
		case pipeline.StatusStarted:
			b.WriteString(fmt.Sprintf("  %s %s %s\n", spin, v.runningStyle.Render(label), v.pendingStyle.Render("working...")))
		case pipeline.StatusDone:
			b.WriteString(fmt.Sprintf("  %s %s %s\n", v.doneStyle.Render("✓"), label, v.pendingStyle.Render(formatElapsed(st.elapsed))))
		case pipeline.StatusFailed:
			b.WriteString(fmt.Sprintf("  %s %s %s\n", v.failedStyle.Render("✗"), v.failedStyle.Render(label), v.pendingStyle.Render(formatElapsed(st.elapsed))))
		default:
			b.WriteString(fmt.Sprintf("  %s %s\n", v.pendingStyle.Render("·"), v.pendingStyle.Render(label)))
		}
	}

	b.WriteString("\n")
	pct := float64(v.Completed()) / float64(len(v.stages)) * 100
	b.WriteString(v.renderProgressBar(pct, 30))
	return b.String()
}

// renderProgressBar renders a progress bar.
func (v *ProgressView) renderProgressBar(pct float64, width int) string {
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}

	filled := int(pct / 100 * float64(width))
	empty := width - filled

	bar := v.progressFull.Render(strings.Repeat("█", filled)) +
		v.progressEmpty.Render(strings.Repeat("░", empty))

	return fmt.Sprintf("  %s %.0f%%", bar, pct)
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
