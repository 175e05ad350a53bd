// Package tui provides the interactive terminal front-end for curricula.
//
// The App model walks through three screens:
//   - a form with two inputs, course idea and target audience
//   - per-stage progress with a spinner while the pipeline runs
//   - a scrollable Markdown view of the finished syllabus
//
// Generation and export are injected as functions so the model never builds
// its own LLM client:
//
//	app := tui.NewApp(generate, export)
//	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
//	    return err
//	}
//
// Errors from either function are shown in the UI and the user can try
// again. Only ctrl+c (or q on the result screen) exits.
package tui
