package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/curricula/internal/curriculum"
	"github.com/ShayCichocki/curricula/internal/pipeline"
)

// Generator runs one generation and reports progress through observe.
type Generator func(ctx context.Context, req pipeline.Request, observe pipeline.Observer) (*pipeline.Result, error)

// Exporter writes a package to disk and returns a short status line.
type Exporter func(pkg *curriculum.Package) (string, error)

type screen int

const (
	screenForm screen = iota
	screenGenerating
	screenResult
)

// stageEventMsg carries one pipeline event into the update loop.
type stageEventMsg struct {
	event pipeline.Event
}

// GenerationDoneMsg is sent when a generation finishes.
type GenerationDoneMsg struct {
	Result *pipeline.Result
	Err    error
}

// ExportDoneMsg is sent when an export finishes.
type ExportDoneMsg struct {
	Status string
	Err    error
}

// App is the bubbletea model for interactive mode.
type App struct {
	generate Generator
	export   Exporter
	render   curriculum.RenderOptions

	screen   screen
	idea     *InputField
	audience *InputField
	progress *ProgressView
	spinner  spinner.Model
	viewport viewport.Model

	result *pipeline.Result
	events chan pipeline.Event
	cancel context.CancelFunc
	status string
	err    error

	width    int
	height   int
	quitting bool

	titleStyle  lipgloss.Style
	hintStyle   lipgloss.Style
	errorStyle  lipgloss.Style
	statusStyle lipgloss.Style
	passStyle   lipgloss.Style
	failStyle   lipgloss.Style
}

// NewApp creates an App. export may be nil, in which case ctrl+s reports
// that exporting is unavailable.
func NewApp(generate Generator, export Exporter) *App {
	idea := NewInputField("Course idea", "e.g. Introduction to Photography")
	audience := NewInputField("Target audience", "e.g. Retirees with a new camera")
	idea.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &App{
		generate: generate,
		export:   export,
		render:   curriculum.DefaultRenderOptions(),
		screen:   screenForm,
		idea:     idea,
		audience: audience,
		progress: NewProgressView(),
		spinner:  s,
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),

		hintStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),

		statusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")),

		passStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true),

		failStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
	}
}

// SetRenderOptions controls the sections shown in the result view.
func (a *App) SetRenderOptions(opts curriculum.RenderOptions) {
	a.render = opts
}

// SetInputs pre-fills the form.
func (a *App) SetInputs(idea, audience string) {
	a.idea.SetValue(idea)
	a.audience.SetValue(audience)
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.idea.Focus())
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateSizes()
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.quitting = true
			if a.cancel != nil {
				a.cancel()
			}
			return a, tea.Quit
		}
		switch a.screen {
		case screenForm:
			return a.updateForm(msg)
		case screenGenerating:
			if msg.String() == "esc" && a.cancel != nil {
				a.cancel()
			}
			return a, nil
		case screenResult:
			return a.updateResult(msg)
		}

	case spinner.TickMsg:
		if a.screen != screenGenerating {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case stageEventMsg:
		a.progress.Apply(msg.event)
		return a, waitForEvent(a.events)

	case GenerationDoneMsg:
		return a.finishGeneration(msg)

	case ExportDoneMsg:
		if msg.Err != nil {
			a.err = msg.Err
			a.status = ""
		} else {
			a.err = nil
			a.status = msg.Status
		}
		return a, nil
	}

	if a.screen == screenForm {
		return a.forwardToFocused(msg)
	}
	return a, nil
}

func (a *App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		return a, a.toggleFocus()
	case "enter":
		if a.idea.Focused() && strings.TrimSpace(a.audience.Value()) == "" {
			return a, a.toggleFocus()
		}
		return a.startGeneration()
	case "esc":
		a.err = nil
		a.status = ""
		return a, nil
	}
	return a.forwardToFocused(msg)
}

func (a *App) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		a.quitting = true
		return a, tea.Quit
	case "ctrl+s":
		return a, a.exportCmd()
	case "n":
		a.screen = screenForm
		a.result = nil
		a.status = ""
		a.err = nil
		a.idea.Reset()
		a.audience.Reset()
		a.audience.Blur()
		return a, a.idea.Focus()
	}
	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a *App) forwardToFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if a.audience.Focused() {
		a.audience, cmd = a.audience.Update(msg)
	} else {
		a.idea, cmd = a.idea.Update(msg)
	}
	return a, cmd
}

func (a *App) toggleFocus() tea.Cmd {
	if a.idea.Focused() {
		a.idea.Blur()
		return a.audience.Focus()
	}
	a.audience.Blur()
	return a.idea.Focus()
}

func (a *App) startGeneration() (tea.Model, tea.Cmd) {
	req := pipeline.Request{CourseIdea: a.idea.Value(), Audience: a.audience.Value()}
	if err := req.Validate(); err != nil {
		a.err = errors.New("both a course idea and a target audience are required")
		return a, nil
	}
	if a.generate == nil {
		a.err = errors.New("generation is not configured")
		return a, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	// Four stages, two events each.
	events := make(chan pipeline.Event, 2*len(a.progress.stages))

	a.screen = screenGenerating
	a.cancel = cancel
	a.events = events
	a.err = nil
	a.status = ""
	a.progress.Reset()

	generate := a.generate
	run := func() tea.Msg {
		defer close(events)
		res, err := generate(ctx, req, func(e pipeline.Event) {
			select {
			case events <- e:
			case <-ctx.Done():
			}
		})
		return GenerationDoneMsg{Result: res, Err: err}
	}

	return a, tea.Batch(run, waitForEvent(events), a.spinner.Tick)
}

func (a *App) finishGeneration(msg GenerationDoneMsg) (tea.Model, tea.Cmd) {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}

	if msg.Err != nil {
		a.screen = screenForm
		if errors.Is(msg.Err, context.Canceled) {
			a.err = errors.New("generation cancelled")
		} else {
			a.err = msg.Err
		}
		return a, a.focusCurrent()
	}
	if msg.Result == nil || msg.Result.Package == nil {
		a.screen = screenForm
		a.err = errors.New("generation returned no curriculum")
		return a, a.focusCurrent()
	}

	a.screen = screenResult
	a.result = msg.Result
	a.err = nil
	a.viewport.SetContent(a.wrap(msg.Result.Package.MarkdownWith(a.render)))
	a.viewport.GotoTop()
	return a, nil
}

func (a *App) focusCurrent() tea.Cmd {
	if a.audience.Focused() {
		return a.audience.Focus()
	}
	return a.idea.Focus()
}

func (a *App) exportCmd() tea.Cmd {
	if a.result == nil || a.result.Package == nil {
		return nil
	}
	export := a.export
	pkg := a.result.Package
	return func() tea.Msg {
		if export == nil {
			return ExportDoneMsg{Err: errors.New("export is not configured")}
		}
		status, err := export(pkg)
		return ExportDoneMsg{Status: status, Err: err}
	}
}

func waitForEvent(ch <-chan pipeline.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return stageEventMsg{event: e}
	}
}

// updateSizes recomputes child sizes from the terminal size.
func (a *App) updateSizes() {
	a.idea.SetWidth(a.width)
	a.audience.SetWidth(a.width)
	a.progress.SetWidth(a.width)

	// title, blank line, footer, status
	vpHeight := a.height - 5
	if vpHeight < 3 {
		vpHeight = 3
	}
	a.viewport.Width = a.width
	a.viewport.Height = vpHeight
	if a.result != nil && a.result.Package != nil {
		a.viewport.SetContent(a.wrap(a.result.Package.MarkdownWith(a.render)))
	}
}

func (a *App) wrap(s string) string {
	if a.width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(a.width).Render(s)
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(a.titleStyle.Render("curricula"))
	b.WriteString("\n\n")

	switch a.screen {
	case screenForm:
		b.WriteString(a.idea.View())
		b.WriteString("\n")
		b.WriteString(a.audience.View())
		b.WriteString("\n\n")
		b.WriteString(a.hintStyle.Render("tab switch field • enter generate • ctrl+c quit"))

	case screenGenerating:
		fmt.Fprintf(&b, "Designing %q for %s\n\n", a.idea.Value(), a.audience.Value())
		b.WriteString(a.progress.View(a.spinner.View()))
		b.WriteString("\n\n")
		b.WriteString(a.hintStyle.Render("esc cancel • ctrl+c quit"))

	case screenResult:
		b.WriteString(a.viewport.View())
		b.WriteString("\n")
		b.WriteString(a.resultFooter())
	}

	if a.err != nil {
		b.WriteString("\n")
		b.WriteString(a.errorStyle.Render("Error: " + a.err.Error()))
	} else if a.status != "" {
		b.WriteString("\n")
		b.WriteString(a.statusStyle.Render(a.status))
	}
	b.WriteString("\n")
	return b.String()
}

func (a *App) resultFooter() string {
	review := a.result.Review
	verdict := a.passStyle.Render("PASS")
	if !review.Passed {
		verdict = a.failStyle.Render("FAIL")
	}
	usage := a.result.Usage
	info := fmt.Sprintf(" • %d lessons • %s • %d in / %d out tokens",
		len(a.result.Lessons), formatElapsed(a.result.Elapsed), usage.InputTokens, usage.OutputTokens)
	return verdict + a.hintStyle.Render(info) + "\n" +
		a.hintStyle.Render("↑/↓ scroll • ctrl+s export JSON • n new course • q quit")
}
