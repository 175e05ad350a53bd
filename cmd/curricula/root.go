package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/curricula/internal/curriculum"
	"github.com/ShayCichocki/curricula/internal/extract"
	"github.com/ShayCichocki/curricula/internal/pipeline"
)

// exitError carries a process exit status other than 1.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

var rootCmd = &cobra.Command{
	Use:   "curricula",
	Short: "Multi-agent curriculum generator",
	Long: `curricula turns a course idea and a target audience into a complete
curriculum package.

Four specialised agents run in sequence:
  - objectives:  writes 3-5 measurable learning objectives
  - lessons:     designs one lesson per objective
  - assessments: writes quiz questions and a short-answer task per lesson
  - review:      checks alignment and returns PASS or FAIL

The result is printed as a Markdown syllabus and saved as syllabus.json.

With no arguments, launches an interactive terminal form.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd, args)
	},
}

// Execute runs the root command and exits with its status.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(reportError(os.Stderr, err))
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(interactiveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(versionCmd)
}

// reportError prints err as a readable message and returns the exit status.
func reportError(w io.Writer, err error) int {
	code := 1
	var ee *exitError
	if errors.As(err, &ee) {
		code = ee.code
	}

	fmt.Fprintf(w, "%s %v\n", color.RedString("Error:"), err)
	if h := hint(err); h != "" {
		fmt.Fprintf(w, "  %s\n", color.New(color.Faint).Sprint(h))
	}
	return code
}

// hint suggests a next step for well-known failures.
func hint(err error) string {
	var (
		extractErr *extract.Error
		validErr   *curriculum.ValidationError
		exportErr  *curriculum.ExportError
	)
	switch {
	case errors.Is(err, pipeline.ErrInvalidRequest):
		return "Both --idea and --audience must be non-empty."
	case errors.As(err, &extractErr):
		return "The model's reply could not be used. Run again or check the log file for the full output."
	case errors.As(err, &validErr):
		return "The stage outputs did not fit together. Run again to regenerate."
	case errors.As(err, &exportErr):
		return "Check that the output directory is writable or pass a different --json-out."
	}
	return ""
}
