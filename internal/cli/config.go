package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ariel-frischer/newsmerge/internal/config"
	clierrors "github.com/ariel-frischer/newsmerge/internal/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage newsmerge configuration",
	Long: `Manage newsmerge configuration settings.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (NEWSMERGE_*, lists comma separated)
  2. Project config (.newsmerge/config.yml)
  3. User config (~/.config/newsmerge/config.yml)
  4. Built-in defaults`,
	Example: `  # Show the effective configuration
  newsmerge config show

  # List every key with its type and default
  newsmerge config keys

  # Create .newsmerge/config.yml
  newsmerge config init`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(conf)
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configuration keys with type, default and description",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		defaults := config.GetDefaults()
		for _, key := range config.SortedKeys() {
			schema := config.KnownKeys[key]
			typ := schema.Type.String()
			if len(schema.AllowedValues) > 0 {
				typ = fmt.Sprintf("%s(%v)", typ, schema.AllowedValues)
			}
			fmt.Fprintf(out, "%-20s %-30s default=%q\n", key, typ, fmt.Sprint(defaults[key]))
			fmt.Fprintf(out, "%-20s %s\n", "", schema.Description)
		}
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented config file",
	Long: `Write a fully commented config file with the default values.
By default the project config (.newsmerge/config.yml) is written; use --user
for the user config. An existing file is kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Convert a legacy JSON config to YAML",
	Long: `Convert .newsmerge/config.json (--project) or ~/.newsmerge/config.json
(--user) to the YAML format. The JSON file is renamed to .bak afterwards.`,
	Args: cobra.NoArgs,
	RunE: runConfigMigrate,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := loadConfig(cmd); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid.")
		return nil
	},
}

func init() {
	configCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configKeysCmd, configInitCmd, configMigrateCmd, configValidateCmd)

	configInitCmd.Flags().Bool("user", false, "Write the user config instead of the project config")
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	configMigrateCmd.Flags().Bool("user", false, "Migrate the user config")
	configMigrateCmd.Flags().Bool("project", false, "Migrate the project config")
	configMigrateCmd.Flags().Bool("dry-run", false, "Report what would change without writing")
	configMigrateCmd.MarkFlagsMutuallyExclusive("user", "project")
	configMigrateCmd.MarkFlagsOneRequired("user", "project")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetBool("user")
	force, _ := cmd.Flags().GetBool("force")

	path := config.ProjectConfigPath()
	if user {
		var err error
		if path, err = config.UserConfigPath(); err != nil {
			return fmt.Errorf("getting user config path: %w", err)
		}
	}

	if _, err := os.Stat(path); err == nil && !force {
		return clierrors.NewConfigError(
			fmt.Sprintf("config file already exists: %s", path),
			"Use --force to overwrite it",
			"Or edit the file directly",
		)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}

func runConfigMigrate(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetBool("user")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var result *config.MigrationResult
	var err error
	if user {
		result, err = config.MigrateUserConfig(dryRun)
	} else {
		result, err = config.MigrateProjectConfig(dryRun)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	if !result.Success || dryRun {
		return nil
	}

	if err := config.RemoveLegacyConfig(result.SourcePath, false); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Backed up %s to %s.bak\n", result.SourcePath, result.SourcePath)
	return nil
}
