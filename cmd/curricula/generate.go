package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/curricula/internal/api"
	"github.com/ShayCichocki/curricula/internal/brief"
	"github.com/ShayCichocki/curricula/internal/curriculum"
	"github.com/ShayCichocki/curricula/internal/pipeline"
	"github.com/ShayCichocki/curricula/pkg/models"
)

var (
	genIdea        string
	genAudience    string
	genJSONOut     string
	genMarkdownOut string
	genRequirePass bool
	genBrief       string
	genWatch       bool
	genQuiet       bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a curriculum package",
	Long: `Generate a curriculum from a course idea and a target audience.

The Markdown syllabus is printed to stdout and the JSON document is written
to syllabus.json (or output.json_path / --json-out). Progress goes to stderr.

Inputs can come from flags or from a YAML brief:

  course_idea: Intro to Photography
  audience: Retirees with a new camera

With --watch the brief is regenerated every time the file changes, until
interrupted.

Exit status is 1 on any error. With --require-pass, a FAIL review verdict
exits with status 2 after the outputs are written.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genIdea, "idea", "", "Course idea")
	generateCmd.Flags().StringVar(&genAudience, "audience", "", "Target audience")
	generateCmd.Flags().StringVar(&genJSONOut, "json-out", "", "Path for the JSON document (default output.json_path)")
	generateCmd.Flags().StringVar(&genMarkdownOut, "markdown-out", "", "Also write the Markdown report to this path")
	generateCmd.Flags().BoolVar(&genRequirePass, "require-pass", false, "Exit with status 2 when the review verdict is FAIL")
	generateCmd.Flags().StringVar(&genBrief, "brief", "", "Read the course idea and audience from a YAML brief")
	generateCmd.Flags().BoolVar(&genWatch, "watch", false, "Regenerate whenever the brief changes (requires --brief)")
	generateCmd.Flags().BoolVarP(&genQuiet, "quiet", "q", false, "Do not print the Markdown report to stdout")
}

// genRequest is one resolved generation request with its output paths.
type genRequest struct {
	req          pipeline.Request
	limits       *models.ObjectiveRange
	mcqs         int
	jsonPath     string
	markdownPath string
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if genWatch && genBrief == "" {
		return fmt.Errorf("--watch requires --brief")
	}
	if genBrief != "" && (genIdea != "" || genAudience != "") {
		return fmt.Errorf("--brief cannot be combined with --idea or --audience")
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nReceived interrupt, stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	if !genWatch {
		gr, err := resolveRequest(s)
		if err != nil {
			return err
		}
		return generateOnce(ctx, s, gr, stdout, stderr)
	}

	run := func() {
		gr, err := resolveRequest(s)
		if err == nil {
			err = generateOnce(ctx, s, gr, stdout, stderr)
		}
		if err != nil && ctx.Err() == nil {
			reportError(stderr, err)
		}
		if ctx.Err() == nil {
			fmt.Fprintf(stderr, "%s watching %s for changes (ctrl+c to stop)\n", color.CyanString("…"), genBrief)
		}
	}

	run()
	if err := brief.Watch(ctx, genBrief, brief.DefaultDebounce, run); err != nil {
		return err
	}
	return nil
}

// resolveRequest combines flags, the optional brief and configuration.
func resolveRequest(s *session) (genRequest, error) {
	gr := genRequest{
		req:          pipeline.Request{CourseIdea: genIdea, Audience: genAudience},
		jsonPath:     s.cfg.Output.JSONPath,
		markdownPath: s.cfg.Output.MarkdownPath,
	}

	if genBrief != "" {
		b, err := brief.Load(genBrief)
		if err != nil {
			return gr, err
		}
		gr.req = pipeline.Request{CourseIdea: b.CourseIdea, Audience: b.Audience}
		if b.Objectives != nil {
			r := b.ObjectiveRange(s.cfg.ObjectiveRange())
			gr.limits = &r
		}
		gr.mcqs = b.MCQsPerLesson
		if b.Output.JSON != "" {
			gr.jsonPath = b.Output.JSON
		}
		if b.Output.Markdown != "" {
			gr.markdownPath = b.Output.Markdown
		}
	}

	if genJSONOut != "" {
		gr.jsonPath = genJSONOut
	}
	if genMarkdownOut != "" {
		gr.markdownPath = genMarkdownOut
	}
	return gr, gr.req.Validate()
}

// generateOnce runs the pipeline, prints the report and writes the exports.
func generateOnce(ctx context.Context, s *session, gr genRequest, stdout, stderr io.Writer) error {
	opts := s.pipelineOptions(progressPrinter(stderr))
	if gr.limits != nil {
		opts = append(opts, pipeline.WithObjectiveRange(*gr.limits))
	}
	if gr.mcqs > 0 {
		opts = append(opts, pipeline.WithMCQsPerLesson(gr.mcqs))
	}

	fmt.Fprintf(stderr, "Designing %s for %s\n", color.New(color.Bold).Sprint(gr.req.CourseIdea), gr.req.Audience)

	result, err := pipeline.New(s.completer, opts...).Generate(ctx, gr.req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("generation cancelled")
		}
		return err
	}
	pkg := result.Package

	renderOpts := curriculum.DefaultRenderOptions()
	renderOpts.IncludeAssessments = s.cfg.Output.IncludeAssessments

	if !genQuiet {
		fmt.Fprint(stdout, pkg.MarkdownWith(renderOpts))
	}

	if gr.jsonPath != "" {
		if err := pkg.WriteJSON(gr.jsonPath); err != nil {
			return err
		}
		printStatus(stderr, "✓", "Saved "+gr.jsonPath, color.FgGreen)
	}
	if gr.markdownPath != "" {
		if err := pkg.WriteMarkdown(gr.markdownPath, renderOpts); err != nil {
			return err
		}
		printStatus(stderr, "✓", "Saved "+gr.markdownPath, color.FgGreen)
	}

	if run := s.record(result); run != nil {
		printStatus(stderr, "✓", "History id "+run.ShortID(), color.FgGreen)
	}

	printSummary(stderr, result)

	if genRequirePass && !pkg.Review.Passed {
		return &exitError{code: 2, err: fmt.Errorf("review verdict is %s", pkg.Review.Label())}
	}
	return nil
}

// progressPrinter reports stage events on w.
func progressPrinter(w io.Writer) pipeline.Observer {
	return func(e pipeline.Event) {
		switch e.Status {
		case pipeline.StatusStarted:
			printStatus(w, "●", fmt.Sprintf("%s...", e.Stage), color.FgCyan)
		case pipeline.StatusDone:
			printStatus(w, "✓", fmt.Sprintf("%s (%s)", e.Stage, e.Elapsed.Round(100*time.Millisecond)), color.FgGreen)
		case pipeline.StatusFailed:
			printStatus(w, "✗", fmt.Sprintf("%s failed after %s", e.Stage, e.Elapsed.Round(100*time.Millisecond)), color.FgRed)
		}
	}
}

func printSummary(w io.Writer, result *pipeline.Result) {
	review := result.Review
	verdict := color.GreenString(review.Label())
	if !review.Passed {
		verdict = color.YellowString(review.Label())
	}
	fmt.Fprintf(w, "\nReview: %s  •  %d lessons, %d minutes  •  %d in / %d out tokens (~$%.4f)  •  %s\n",
		verdict, len(result.Lessons), result.Package.TotalMinutes(),
		result.Usage.InputTokens, result.Usage.OutputTokens,
		api.EstimateCost(result.Usage.InputTokens, result.Usage.OutputTokens),
		result.Elapsed.Round(100*time.Millisecond))
	for _, c := range review.Concerns {
		fmt.Fprintf(w, "  %s %s\n", color.YellowString("!"), c)
	}
}

// printStatus prints a status line with color
func printStatus(w io.Writer, symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Fprintf(w, "%s %s\n", c.Sprint(symbol), message)
}
