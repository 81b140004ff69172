package errors

import "fmt"

// Common error messages for the newsmerge CLI.
// These templates ensure consistent, actionable error messages.

// MissingVersion creates an error for a merge without a version argument.
func MissingVersion() *CLIError {
	return NewArgumentErrorWithUsage(
		"version is required",
		"newsmerge merge <version>",
		"Provide the release version, e.g.: newsmerge merge 1.4.0",
	)
}

// MissingFragmentName creates an error for 'new' without a name.
func MissingFragmentName() *CLIError {
	return NewArgumentErrorWithUsage(
		"fragment name is required",
		"newsmerge new <name>",
		"Name the fragment after your branch or change, e.g.: newsmerge new fix-parser",
	)
}

// AnchorNotFound creates an error when the changelog lacks the insertion anchor.
func AnchorNotFound(path, pattern string) *CLIError {
	return NewRuntimeError(
		fmt.Sprintf("anchor %q not found in %s", pattern, path),
		"Add a line containing the anchor where new entries belong",
		"Or set 'pattern' in .newsmerge/config.yml to text the changelog already contains",
		"Run 'newsmerge setup' to create a changelog skeleton",
	)
}

// NewsDirNotFound creates an error for a missing news directory.
func NewsDirNotFound(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("news directory not found: %s", path),
		"Run 'newsmerge setup' to create it with a fragment template",
		"Or set 'news_dir' in .newsmerge/config.yml",
	)
}

// ChangelogNotFound creates an error for a missing changelog file.
func ChangelogNotFound(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("changelog not found: %s", path),
		"Run 'newsmerge setup' to create a changelog skeleton",
		"Or set 'filename' in .newsmerge/config.yml",
	)
}

// MalformedFragment creates an error for a fragment that cannot be parsed.
func MalformedFragment(err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		"malformed news fragment",
		"Run 'newsmerge check' to see which fragment is affected",
		"Compare the fragment with the template in the news directory",
	)
}

// InvalidConfig creates an error for configuration that fails validation.
func InvalidConfig(err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		"invalid configuration",
		"Run 'newsmerge config show' to inspect the effective configuration",
		"Run 'newsmerge config keys' to list valid keys and types",
	)
}

// ConfigFileNotFound creates an error for missing config file.
func ConfigFileNotFound(path string) *CLIError {
	return NewConfigError(
		fmt.Sprintf("config file not found: %s", path),
		"Run 'newsmerge config init' to create default configuration",
		"Or create the file manually with required settings",
	)
}

// FragmentExists creates an error when 'new' would overwrite a fragment.
func FragmentExists(path string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("fragment already exists: %s", path),
		"Edit the existing fragment instead",
		"Or choose a different name",
	)
}

// InvalidFlagCombination creates an error for incompatible flag combinations.
func InvalidFlagCombination(flags string, reason string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid flag combination: %s", flags),
		reason,
		"Use 'newsmerge <command> --help' to see valid options",
	)
}

// SweepIncomplete creates an error when some merged fragments could not be removed.
func SweepIncomplete(err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		"changelog updated but some fragments were not removed",
		"Delete the listed fragments by hand before the next merge",
		"Check file permissions in the news directory",
	)
}

// GitNotRepository creates an error when not in a git repository.
func GitNotRepository() *CLIError {
	return NewPrerequisiteError(
		"not a git repository",
		"Initialize with: git init",
		"Or run without --commit",
	)
}
