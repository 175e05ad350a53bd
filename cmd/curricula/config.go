package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/curricula/internal/config"
)

var configProject bool

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify curricula configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/curricula/config.yaml
Project-specific overrides can be placed in .curricula.yaml (use --project).
The API key is always shown masked.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configProject, "project", false, "Write to .curricula.yaml in the current directory")
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 2 {
		path := config.GetUserConfigPath()
		if configProject {
			path = config.ProjectConfigName
		}
		if err := config.SetInFile(path, strings.ToLower(args[0]), args[1]); err != nil {
			return err
		}
		shown := args[1]
		if strings.EqualFold(args[0], "anthropic.api_key") {
			shown = config.MaskAPIKey(shown)
		}
		fmt.Fprintf(out, "Set %s = %s (%s)\n", args[0], shown, path)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	values := cfg.DisplayValues()

	if len(args) == 1 {
		value, ok := values[strings.ToLower(args[0])]
		if !ok {
			return fmt.Errorf("unknown configuration key: %s", args[0])
		}
		fmt.Fprintln(out, value)
		return nil
	}

	for _, key := range config.Keys() {
		fmt.Fprintf(out, "%s: %s\n", key, values[key])
	}
	fmt.Fprintf(out, "\napi key source: %s\n", config.GetAPIKeySource(cfg))
	if err := config.CheckAPIKeyFormat(cfg); err != nil {
		fmt.Fprintf(out, "warning: %v\n", err)
	}
	return nil
}
