package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/curricula/internal/config"
	"github.com/ShayCichocki/curricula/internal/curriculum"
	"github.com/ShayCichocki/curricula/internal/store"
)

var (
	historyLimit int
	historyJSON  bool
	historyOut   string
	historyDel   bool
	historyPrune time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "List or show previously generated curricula",
	Long: `Without arguments, lists recent generations, newest first.

With an id (or a unique prefix of one), prints that curriculum as Markdown,
or as the JSON document with --json. --out writes it to a file instead.

--delete removes the given run; --prune removes every run older than the
given age (for example 720h).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to list (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the JSON document instead of Markdown")
	historyCmd.Flags().StringVarP(&historyOut, "out", "o", "", "Write the curriculum to this file")
	historyCmd.Flags().BoolVar(&historyDel, "delete", false, "Delete the given run")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "Delete runs older than this age")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	path := cfg.HistoryPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "No history yet. Run 'curricula generate' to create a curriculum.")
		return nil
	}

	db, err := store.OpenMigrated(path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer db.Close()

	if historyPrune > 0 {
		n, err := db.Purge(historyPrune)
		if err != nil {
			return err
		}
		printStatus(cmd.ErrOrStderr(), "✓", fmt.Sprintf("Pruned %d run(s) older than %s", n, historyPrune), color.FgGreen)
		return nil
	}

	if historyDel && len(args) == 0 {
		return fmt.Errorf("--delete needs a run id")
	}

	if len(args) == 0 {
		runs, err := db.List(historyLimit)
		if err != nil {
			return err
		}
		printRuns(cmd, runs)
		return nil
	}

	run, err := db.Get(args[0])
	if err != nil {
		return err
	}
	if historyDel {
		if err := db.Delete(run.ID); err != nil {
			return err
		}
		printStatus(cmd.ErrOrStderr(), "✓", "Deleted "+run.ShortID(), color.FgGreen)
		return nil
	}
	pkg, err := run.Package()
	if err != nil {
		return err
	}
	return showPackage(cmd, pkg, cfg)
}

func printRuns(cmd *cobra.Command, runs []store.Run) {
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No history yet.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tREVIEW\tCOURSE\tAUDIENCE")
	for _, r := range runs {
		verdict := color.GreenString(r.Verdict)
		if !r.Passed {
			verdict = color.YellowString(r.Verdict)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.ShortID(), r.CreatedAt.Local().Format("2006-01-02 15:04"), verdict,
			truncate(r.CourseIdea, 40), truncate(r.Audience, 30))
	}
	w.Flush()
}

func showPackage(cmd *cobra.Command, pkg *curriculum.Package, cfg *config.Config) error {
	renderOpts := curriculum.DefaultRenderOptions()
	renderOpts.IncludeAssessments = cfg.Output.IncludeAssessments

	if historyOut != "" {
		var err error
		if historyJSON {
			err = pkg.WriteJSON(historyOut)
		} else {
			err = pkg.WriteMarkdown(historyOut, renderOpts)
		}
		if err != nil {
			return err
		}
		printStatus(cmd.ErrOrStderr(), "✓", "Saved "+historyOut, color.FgGreen)
		return nil
	}

	if historyJSON {
		data, err := pkg.JSON()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), pkg.MarkdownWith(renderOpts))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
