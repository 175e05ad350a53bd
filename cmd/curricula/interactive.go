package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/curricula/internal/curriculum"
	"github.com/ShayCichocki/curricula/internal/pipeline"
	"github.com/ShayCichocki/curricula/internal/tui"
)

var (
	interactiveIdea     string
	interactiveAudience string
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Open the interactive terminal form",
	Long: `Open a terminal form for the course idea and target audience.

While generating, each agent's progress is shown. The finished syllabus is
shown in a scrollable view; press ctrl+s to save syllabus.json (and the
Markdown report when output.markdown_path is set).`,
	Args: cobra.NoArgs,
	RunE: runInteractive,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, interactiveCmd} {
		c.Flags().StringVar(&interactiveIdea, "idea", "", "Pre-fill the course idea")
		c.Flags().StringVar(&interactiveAudience, "audience", "", "Pre-fill the target audience")
	}
}

func runInteractive(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	renderOpts := curriculum.DefaultRenderOptions()
	renderOpts.IncludeAssessments = s.cfg.Output.IncludeAssessments

	app := tui.NewApp(s.generator(), s.exporter(renderOpts))
	app.SetRenderOptions(renderOpts)
	app.SetInputs(interactiveIdea, interactiveAudience)

	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run interactive UI: %w", err)
	}
	return nil
}

// generator adapts the session to the TUI. Each call builds a Runner so the
// observer is scoped to that generation.
func (s *session) generator() tui.Generator {
	return func(ctx context.Context, req pipeline.Request, observe pipeline.Observer) (*pipeline.Result, error) {
		result, err := pipeline.New(s.completer, s.pipelineOptions(observe)...).Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		s.record(result)
		return result, nil
	}
}

// exporter writes the configured outputs and reports what was saved.
func (s *session) exporter(opts curriculum.RenderOptions) tui.Exporter {
	return func(pkg *curriculum.Package) (string, error) {
		jsonPath := s.cfg.Output.JSONPath
		if jsonPath == "" {
			jsonPath = "syllabus.json"
		}
		if err := pkg.WriteJSON(jsonPath); err != nil {
			return "", err
		}
		status := "Saved " + jsonPath

		if mdPath := s.cfg.Output.MarkdownPath; mdPath != "" {
			if err := pkg.WriteMarkdown(mdPath, opts); err != nil {
				return "", err
			}
			status += " and " + mdPath
		}
		return status, nil
	}
}
