package cli

import (
	"fmt"
	"runtime"

	"github.com/ariel-frischer/newsmerge/internal/build"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information (v)",
	Long:    "Display version, commit, build date, and Go version information for newsmerge",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "newsmerge %s\n", build.Version)
		fmt.Fprintf(out, "commit: %s\n", build.Commit)
		fmt.Fprintf(out, "built: %s\n", build.BuildDate)
		fmt.Fprintf(out, "go: %s\n", runtime.Version())
		fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		if build.IsDevBuild() {
			fmt.Fprintln(out, "development build")
		}
	},
}

func init() {
	versionCmd.GroupID = GroupGettingStarted
	rootCmd.AddCommand(versionCmd)
}
