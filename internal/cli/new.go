package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ariel-frischer/newsmerge/internal/changelog"
	clierrors "github.com/ariel-frischer/newsmerge/internal/errors"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Start a news fragment from the template",
	Long: `Copy the fragment template into a new fragment file in the news directory.
The template's extension is added when <name> has none. Existing files are
never overwritten.`,
	Example: `  newsmerge new fix-parser
  newsmerge new add-watch-mode.rst`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 || args[0] == "" {
			return clierrors.MissingFragmentName()
		}
		return nil
	},
	RunE: runNew,
}

func init() {
	newCmd.GroupID = GroupFragments
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	name := fragmentName(args[0], cfg.Template)
	path, err := changelog.NewFragment(cfg, name)
	if errors.Is(err, changelog.ErrFragmentExists) {
		return clierrors.FragmentExists(filepath.Join(cfg.NewsDir, name))
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}

// fragmentName adds the template's extension to names that have none.
func fragmentName(name, template string) string {
	if filepath.Ext(name) == "" {
		return name + filepath.Ext(template)
	}
	return name
}
