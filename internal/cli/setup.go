package cli

import (
	"fmt"

	"github.com/ariel-frischer/newsmerge/internal/changelog"
	"github.com/ariel-frischer/newsmerge/internal/git"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the news directory, fragment template and changelog",
	Long: `Create the news directory with a fragment template listing every
configured category, and a changelog holding the anchor line.

Existing files are never overwritten, so setup is safe to run again.
When state_dir lies inside the git working tree it is added to .gitignore.`,
	Example: `  newsmerge setup`,
	Args:    cobra.NoArgs,
	RunE:    runSetup,
}

func init() {
	setupCmd.GroupID = GroupGettingStarted
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	conf, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	created, err := changelog.Setup(cfg)
	if err != nil {
		return fmt.Errorf("setting up: %w", err)
	}

	ignored, err := ignoreStateDir(conf.StateDir)
	if err != nil {
		return fmt.Errorf("setting up: %w", err)
	}

	out := cmd.OutOrStdout()
	if ignored {
		fmt.Fprintf(out, "Added %s to .gitignore\n", conf.StateDir)
	}
	if len(created) == 0 && !ignored {
		fmt.Fprintln(out, "Already set up; nothing to create.")
		return nil
	}
	for _, p := range created {
		fmt.Fprintf(out, "Created %s\n", p)
	}
	return nil
}

// ignoreStateDir keeps the merge history out of commits when state_dir is
// inside the repository. Outside a repository there is nothing to do.
func ignoreStateDir(stateDir string) (bool, error) {
	if stateDir == "" || !git.IsGitRepository("") {
		return false, nil
	}
	repo, err := git.Open("")
	if err != nil {
		return false, err
	}
	return repo.IgnorePath(stateDir)
}
