package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ariel-frischer/newsmerge/internal/changelog"
	"github.com/ariel-frischer/newsmerge/internal/git"
	"github.com/ariel-frischer/newsmerge/internal/watch"
	"github.com/spf13/cobra"
)

// unreleasedVersion is shown when preview is run without a version.
const unreleasedVersion = "UNRELEASED"

var previewCmd = &cobra.Command{
	Use:   "preview [version]",
	Short: "Show the entry the next merge would produce",
	Long: `Show the pending news entries grouped by category, or with --raw the exact
text a merge would insert into the changelog. Nothing is written or deleted.

With --watch the preview is printed again whenever a fragment or the
changelog changes, until interrupted.`,
	Example: `  newsmerge preview
  newsmerge preview 1.4.0 --raw
  newsmerge preview --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.GroupID = GroupRelease
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().Bool("watch", false, "Re-render when fragments change")
	previewCmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period before re-rendering in watch mode")
	previewCmd.Flags().Bool("plain", false, "Plain text output (no colors)")
	previewCmd.Flags().Bool("raw", false, "Print the exact text that would be inserted")
	previewCmd.Flags().String("date", "", "Release date (YYYY-MM-DD, default today)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	conf, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := changelog.MergeOptions{Version: unreleasedVersion, Date: conf.ReleaseDate}
	if len(args) == 1 {
		opts.Version = args[0]
	}
	if date, _ := cmd.Flags().GetString("date"); date != "" {
		opts.Date = date
	}
	if cfg.AuthorsTitle != "" {
		if repo, err := git.Open(""); err == nil {
			opts.Authors = repo
		}
	}

	render := func() error {
		return renderPreview(cmd, cfg, opts)
	}

	watchMode, _ := cmd.Flags().GetBool("watch")
	if !watchMode {
		return render()
	}

	debounce, _ := cmd.Flags().GetDuration("debounce")
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchPreview(ctx, cmd, cfg, debounce, render)
}

// renderPreview prints one preview of the pending release.
func renderPreview(cmd *cobra.Command, cfg *changelog.Config, opts changelog.MergeOptions) error {
	res, err := changelog.Preview(cfg, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		fmt.Fprint(out, res.Block)
		return nil
	}

	plain, _ := cmd.Flags().GetBool("plain")
	if err := changelog.FormatAggregate(res, out, changelog.FormatOptions{Plain: plain}); err != nil {
		return err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", w)
	}
	return nil
}

// watchPreview renders once, then again after every burst of changes to the
// news directory or the changelog. Render errors are printed, not fatal.
func watchPreview(ctx context.Context, cmd *cobra.Command, cfg *changelog.Config, debounce time.Duration, render func() error) error {
	newsDir := filepath.Clean(cfg.NewsDir)
	logFile := filepath.Clean(cfg.Filename)

	dirs := []string{newsDir}
	if dir := filepath.Dir(logFile); dir != newsDir {
		dirs = append(dirs, dir)
	}

	w, err := watch.New(debounce, dirs...)
	if err != nil {
		return err
	}
	defer w.Close()
	w.Filter = func(path string) bool {
		return path == logFile || filepath.Dir(path) == newsDir && !strings.HasPrefix(filepath.Base(path), ".")
	}

	rerender := func() {
		if err := render(); err != nil {
			printError(cmd.ErrOrStderr(), err)
		}
	}

	rerender()
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes (Ctrl+C to stop)\n", newsDir)
	return w.Run(ctx, func() {
		fmt.Fprintf(cmd.OutOrStdout(), "\n--- %s ---\n", time.Now().Format("15:04:05"))
		rerender()
	})
}

// commandContext returns the command's context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
