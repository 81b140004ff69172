package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ariel-frischer/newsmerge/internal/changelog"
	"github.com/ariel-frischer/newsmerge/internal/config"
	clierrors "github.com/ariel-frischer/newsmerge/internal/errors"
	"github.com/ariel-frischer/newsmerge/internal/git"
	"github.com/ariel-frischer/newsmerge/internal/history"
	"github.com/ariel-frischer/newsmerge/internal/progress"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <version>",
	Short: "Merge news fragments into the changelog",
	Long: `Merge all news fragments into a new changelog entry for <version>.

The entry is inserted above the anchor line of the changelog. Fragments are
removed after the changelog is written; the template file is kept. Failures
to remove a fragment are reported as warnings.

The release date defaults to today. Use --date or release_date in the config
to pin it.`,
	Example: `  newsmerge merge 1.4.0
  newsmerge merge 1.4.0 --date 2024-06-01
  newsmerge merge 1.4.0 --dry-run
  newsmerge merge 1.4.0 --commit`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 || args[0] == "" {
			return clierrors.MissingVersion()
		}
		return nil
	},
	RunE: runMerge,
}

func init() {
	mergeCmd.GroupID = GroupRelease
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().String("date", "", "Release date (YYYY-MM-DD, default today)")
	mergeCmd.Flags().Bool("dry-run", false, "Show the new entry without writing or deleting anything")
	mergeCmd.Flags().Bool("no-authors", false, "Skip the contributors section")
	mergeCmd.Flags().Bool("commit", false, "Commit the changelog and removed fragments (overrides config)")
	mergeCmd.Flags().Bool("progress", false, "Show progress indicators (spinners) during execution")
}

// mergeFlags are the parsed merge command flags.
type mergeFlags struct {
	date      string
	dryRun    bool
	noAuthors bool
	commit    bool
	progress  bool
}

func readMergeFlags(cmd *cobra.Command, conf *config.Configuration) mergeFlags {
	f := mergeFlags{}
	f.date, _ = cmd.Flags().GetString("date")
	f.dryRun, _ = cmd.Flags().GetBool("dry-run")
	f.noAuthors, _ = cmd.Flags().GetBool("no-authors")
	f.progress, _ = cmd.Flags().GetBool("progress")

	f.commit = conf.Commit
	if cmd.Flags().Changed("commit") {
		f.commit, _ = cmd.Flags().GetBool("commit")
	}
	if f.date == "" {
		f.date = conf.ReleaseDate
	}
	return f
}

func runMerge(cmd *cobra.Command, args []string) error {
	start := time.Now()
	version := args[0]

	conf, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := readMergeFlags(cmd, conf)

	entry := history.HistoryEntry{
		Timestamp: start,
		Command:   "merge",
		Version:   version,
		DryRun:    flags.dryRun,
	}
	writer := history.NewWriter(conf.StateDir, conf.MaxHistoryEntries)
	writer.Warn = cmd.ErrOrStderr()

	res, err := executeMerge(cmd, cfg, conf, version, flags, &entry)

	entry.Duration = time.Since(start).Round(time.Millisecond).String()
	if err != nil {
		entry.ExitCode = ExitCode(err)
	}
	if res != nil {
		entry.ReleaseDate = res.Date
		entry.Fragments = len(res.Fragments)
		entry.Deleted = res.Deleted
		for _, w := range res.Warnings {
			entry.Warnings = append(entry.Warnings, w.Error())
		}
	}
	writer.LogEntry(entry)

	return err
}

func executeMerge(cmd *cobra.Command, cfg *changelog.Config, conf *config.Configuration, version string, flags mergeFlags, entry *history.HistoryEntry) (*changelog.Result, error) {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	if flags.date != "" {
		if _, err := time.Parse("2006-01-02", flags.date); err != nil {
			return nil, clierrors.NewArgumentError(
				fmt.Sprintf("invalid release date %q", flags.date),
				"Use the YYYY-MM-DD format, e.g.: --date 2024-06-01",
			)
		}
	}

	if _, err := os.Stat(cfg.Filename); errors.Is(err, os.ErrNotExist) {
		return nil, clierrors.ChangelogNotFound(cfg.Filename)
	}

	repo, err := openRepoFor(cfg, flags)
	if err != nil {
		return nil, err
	}
	if repo != nil {
		entry.Branch, _ = repo.CurrentBranch()
		entry.RevisionBefore, _ = repo.HeadRevision()
	}

	opts := changelog.MergeOptions{
		Version: version,
		Date:    flags.date,
		DryRun:  flags.dryRun,
	}
	if repo != nil && !flags.noAuthors {
		opts.Authors = repo
	}

	var display *progress.Display
	if flags.progress {
		display = progress.NewDisplay(errOut, progress.DetectTerminalCapabilities())
	}

	display.Start("Merging news fragments")
	res, err := changelog.Merge(cfg, opts)
	if err != nil {
		display.Fail(err)
		return nil, err
	}
	display.Done(fmt.Sprintf("%d fragment(s)", len(res.Fragments)))

	fmt.Fprintln(out, changelog.FormatSummary(res))
	if flags.dryRun {
		fmt.Fprintln(out)
		fmt.Fprint(out, res.Block)
		return res, nil
	}

	if isVerbose(cmd) {
		for _, p := range res.Deleted {
			fmt.Fprintf(out, "  removed %s\n", p)
		}
	}
	warn := color.New(color.FgYellow).SprintFunc()
	for _, w := range res.Warnings {
		fmt.Fprintf(errOut, "%s %v\n", warn("Warning:"), w)
	}

	if flags.commit {
		display.Start("Committing changelog")
		rev, err := repo.Commit(res.ChangedPaths(cfg.Filename), conf.CommitMessageFor(res.Version, res.Date))
		if err != nil {
			display.Fail(err)
			return res, fmt.Errorf("committing changelog: %w", err)
		}
		display.Done(rev)
		entry.RevisionAfter = rev
		fmt.Fprintf(out, "Committed %s\n", rev)
	}

	return res, nil
}

// openRepoFor opens the git repository when the run needs it. A commit
// requires a repository; the authors section only degrades without one.
func openRepoFor(cfg *changelog.Config, flags mergeFlags) (*git.Repo, error) {
	wantAuthors := cfg.AuthorsTitle != "" && !flags.noAuthors
	needCommit := flags.commit && !flags.dryRun
	if !wantAuthors && !needCommit {
		return nil, nil
	}

	repo, err := git.Open("")
	if err != nil {
		if needCommit {
			return nil, clierrors.GitNotRepository()
		}
		return nil, nil
	}
	return repo, nil
}
