package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// InputField is a labelled single-line text input.
type InputField struct {
	label string
	input textinput.Model
	width int

	labelStyle   lipgloss.Style
	focusedStyle lipgloss.Style
	blurredStyle lipgloss.Style
}

// NewInputField creates a new InputField.
func NewInputField(label, placeholder string) *InputField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 500
	ti.Width = 60

	return &InputField{
		label: label,
		input: ti,
		width: 80,

		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),

		focusedStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1),

		blurredStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
	}
}

// SetWidth sets the width of the input field.
func (f *InputField) SetWidth(width int) {
	f.width = width
	f.input.Width = width - 4 // prompt and padding
}

// Update forwards messages to the text input.
func (f *InputField) Update(msg tea.Msg) (*InputField, tea.Cmd) {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

// View renders the label and the boxed input.
func (f *InputField) View() string {
	style := f.blurredStyle
	if f.input.Focused() {
		style = f.focusedStyle
	}
	promptStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Bold(true)
	f.input.Prompt = promptStyle.Render("> ")

	return f.labelStyle.Render(f.label) + "\n" +
		style.Width(f.width-2).Render(f.input.View())
}

// Value returns the current text.
func (f *InputField) Value() string {
	return f.input.Value()
}

// SetValue replaces the current text.
func (f *InputField) SetValue(s string) {
	f.input.SetValue(s)
}

// Reset clears the input.
func (f *InputField) Reset() {
	f.input.Reset()
}

// Focused reports whether the field has focus.
func (f *InputField) Focused() bool {
	return f.input.Focused()
}

// Focus sets focus on the input field.
func (f *InputField) Focus() tea.Cmd {
	return f.input.Focus()
}

// Blur removes focus from the input field.
func (f *InputField) Blur() {
	f.input.Blur()
}
