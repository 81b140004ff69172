package cli

import (
	"fmt"

	"github.com/ariel-frischer/newsmerge/internal/history"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:          "history",
	Short:        "View merge history",
	Long:         `View a log of newsmerge merge runs with timestamp, version, fragment count, commit, exit code, and duration.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runHistory,
}

func init() {
	historyCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 0, "Limit to last N entries (most recent)")
	historyCmd.Flags().Bool("clear", false, "Clear all history")
}

func runHistory(cmd *cobra.Command, args []string) error {
	conf, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return runHistoryWithStateDir(cmd, conf.StateDir)
}

// runHistoryWithStateDir runs the history command with a custom state directory.
func runHistoryWithStateDir(cmd *cobra.Command, stateDir string) error {
	clearFlag, _ := cmd.Flags().GetBool("clear")
	limit, _ := cmd.Flags().GetInt("limit")

	if limit < 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}

	if clearFlag {
		n, err := history.ClearHistory(stateDir)
		if err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "History cleared (%d entries removed).\n", n)
		return nil
	}

	histFile, err := history.LoadHistory(stateDir)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	entries := histFile.Recent(limit)
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history available.")
		return nil
	}

	displayEntries(cmd, entries)
	return nil
}

// displayEntries formats and displays history entries, newest first.
func displayEntries(cmd *cobra.Command, entries []history.HistoryEntry) {
	out := cmd.OutOrStdout()

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	for _, entry := range entries {
		timestamp := entry.Timestamp.Format("2006-01-02 15:04:05")

		exitCodeStr := fmt.Sprintf("%d", entry.ExitCode)
		if entry.ExitCode == 0 {
			exitCodeStr = green(exitCodeStr)
		} else {
			exitCodeStr = red(exitCodeStr)
		}

		version := entry.Version
		if version == "" {
			version = "-"
		}
		if entry.DryRun {
			version += " (dry run)"
		}

		commit := entry.RevisionAfter
		if commit == "" {
			commit = "-"
		}

		fmt.Fprintf(out, "%s  %-22s  %3d fragment(s)  commit=%-7s  exit=%s  %s\n",
			cyan(timestamp),
			version,
			entry.Fragments,
			commit,
			exitCodeStr,
			entry.Duration,
		)
		if isVerbose(cmd) {
			fmt.Fprintf(out, "    %s\n", dim("run "+entry.RunID))
			for _, p := range entry.Deleted {
				fmt.Fprintf(out, "    %s\n", dim("removed "+p))
			}
			for _, w := range entry.Warnings {
				fmt.Fprintf(out, "    %s\n", red("warning: "+w))
			}
		}
	}
}
