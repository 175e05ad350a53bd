package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/curricula/internal/config"
)

var personasVerbose bool

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List the agent personas used for each stage",
	Long: `List the four agent personas in pipeline order.

Persona text can be overridden with a YAML file named by
pipeline.personas_file:

  personas:
    review:
      goal: Be strict about alignment with the audience`,
	Args: cobra.NoArgs,
	RunE: runPersonas,
}

func init() {
	personasCmd.Flags().BoolVarP(&personasVerbose, "verbose", "v", false, "Show the full system prompt for each persona")
}

func runPersonas(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	for i, p := range registry.All() {
		fmt.Fprintf(out, "%d. %s  %s\n", i+1, bold.Sprint(p.Name), p.Role)
		if personasVerbose {
			fmt.Fprintf(out, "\n%s\n\n", p.SystemPrompt())
		} else {
			fmt.Fprintf(out, "   %s\n", p.Goal)
		}
	}
	return nil
}
