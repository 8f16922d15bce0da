package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/windowlog/windowlog/internal/config"
	"github.com/windowlog/windowlog/internal/database"
	"github.com/windowlog/windowlog/internal/tracker"
	"github.com/windowlog/windowlog/pkg/utils"
)

const (
	defaultHistoryCount = 5
	historyTopEntries   = 3
)

var historyCmd = &cobra.Command{
	Use:     "history [n]",
	Short:   "List the last n archived reports",
	Example: "  windowlog history\n  windowlog history 10",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func parseCount(args []string) (int, error) {
	if len(args) == 0 {
		return defaultHistoryCount, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid count %q: want a positive number", args[0])
	}
	return n, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	n, err := parseCount(args)
	if err != nil {
		return err
	}

	db, err := openDatabase(config.New())
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer db.Close()

	runs, err := database.NewRepository(db).RecentRuns(n)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No archived reports.")
		return nil
	}

	bold := color.New(color.Bold).SprintFunc()
	for _, run := range runs {
		fmt.Fprintf(out, "%s  %s  %s  (%s, %s)\n",
			bold(fmt.Sprintf("#%d", run.ID)),
			run.EndedAt.Local().Format("2006-01-02 15:04"),
			utils.FormatElapsed(run.Duration()),
			run.FileName,
			run.Backend)

		for i, e := range run.Entries {
			if i == historyTopEntries {
				fmt.Fprintf(out, "    ... %d more\n", len(run.Entries)-i)
				break
			}
			label := tracker.Bucket{Label: e.Label, Idle: e.IsIdle}.String()
			fmt.Fprintf(out, "    %s %10s\n", utils.FitWidth(label, tracker.LabelWidth), utils.FormatElapsed(e.Duration()))
		}
	}
	return nil
}
