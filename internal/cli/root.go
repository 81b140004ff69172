// Package cli implements the newsmerge command line interface with cobra.
// Commands register themselves on rootCmd from init functions.
package cli

import (
	"io"
	"log"

	"github.com/ariel-frischer/newsmerge/internal/changelog"
	"github.com/ariel-frischer/newsmerge/internal/config"
	"github.com/ariel-frischer/newsmerge/internal/git"
	"github.com/ariel-frischer/newsmerge/internal/watch"
	"github.com/spf13/cobra"
)

// Command groups shown in help output.
const (
	GroupGettingStarted = "getting-started"
	GroupRelease        = "release"
	GroupFragments      = "fragments"
	GroupConfiguration  = "configuration"
)

var rootCmd = &cobra.Command{
	Use:   "newsmerge",
	Short: "Assemble release changelogs from news fragments",
	Long: `newsmerge assembles a release changelog from news fragments.

Contributors drop small fragment files into the news directory while they
work. At release time 'newsmerge merge <version>' groups their entries by
category, renders a dated entry, inserts it into the changelog above the
anchor line and removes the consumed fragments. The template file stays.

Source: https://github.com/ariel-frischer/newsmerge`,
	Example: `  # Scaffold the news directory and changelog
  newsmerge setup

  # Start a fragment for your change
  newsmerge new fix-parser

  # See what the next release entry will look like
  newsmerge preview

  # Release
  newsmerge merge 1.4.0 --commit`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		configureDebugLogging(cmd.ErrOrStderr(), debug)
	},
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupGettingStarted, Title: "Getting Started:"},
		&cobra.Group{ID: GroupRelease, Title: "Release:"},
		&cobra.Group{ID: GroupFragments, Title: "Fragments:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"},
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "Project config file (default .newsmerge/config.yml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Print debug logs to stderr")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show more detail in command output")
}

// Execute runs the root command and prints any error it returns.
// Use ExitCode to turn the returned error into a process exit status.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// configureDebugLogging points every package debug hook at w, or turns them off.
func configureDebugLogging(w io.Writer, enabled bool) {
	var logf func(format string, args ...any)
	if enabled {
		logf = log.New(w, "", log.Ltime|log.Lmicroseconds).Printf
	}
	changelog.SetDebugLogger(logf)
	git.SetDebugLogger(logf)
	watch.SetDebugLogger(logf)
}

// loadConfig loads the layered configuration and converts it for the engine.
func loadConfig(cmd *cobra.Command) (*config.Configuration, *changelog.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	conf, err := config.LoadWithOptions(config.LoadOptions{
		ProjectConfigPath: path,
		WarningWriter:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, nil, err
	}

	cfg, err := conf.Changelog()
	if err != nil {
		return nil, nil, err
	}
	return conf, cfg, nil
}

// isVerbose reports whether --verbose was given.
func isVerbose(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("verbose")
	return v
}
