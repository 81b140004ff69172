package cli

import (
	"fmt"

	"github.com/ariel-frischer/newsmerge/internal/lint"
	"github.com/ariel-frischer/newsmerge/internal/progress"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check news fragments for mistakes",
	Long: `Check every news fragment for problems that would silently drop entries:

  - no recognized category header (error)
  - a header-looking line naming an unknown category (error)
  - no entries left after removing placeholders and none markers (warning)

Exits non-zero when any error is found, so it can guard CI.`,
	Example: `  newsmerge check
  newsmerge check --jobs 4`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.GroupID = GroupFragments
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().IntP("jobs", "j", 0, "Fragments checked concurrently (default: number of CPUs)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	jobs, _ := cmd.Flags().GetInt("jobs")
	reports, err := lint.CheckDir(commandContext(cmd), cfg, lint.Options{Concurrency: jobs})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(reports) == 0 {
		fmt.Fprintf(out, "No news fragments in %s.\n", cfg.NewsDir)
		return nil
	}

	symbols := progress.SelectSymbols(progress.DetectTerminalCapabilities())
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	var errs, warns int
	for _, r := range reports {
		if r.OK() {
			if isVerbose(cmd) {
				fmt.Fprintf(out, "%s %s (%d entries)\n", green(symbols.Checkmark), r.Path, r.Entries)
			}
			continue
		}
		for _, is := range r.Issues {
			label := yellow(is.Severity.String())
			if is.Severity == lint.Error {
				label = red(is.Severity.String())
				errs++
			} else {
				warns++
			}
			if is.Line > 0 {
				fmt.Fprintf(out, "%s:%d: %s: %s\n", r.Path, is.Line, label, is.Message)
			} else {
				fmt.Fprintf(out, "%s: %s: %s\n", r.Path, label, is.Message)
			}
		}
	}

	fmt.Fprintf(out, "Checked %d fragment(s): %d error(s), %d warning(s)\n", len(reports), errs, warns)
	if lint.HasErrors(reports) {
		return NewExitError(ExitValidationFailed)
	}
	return nil
}
