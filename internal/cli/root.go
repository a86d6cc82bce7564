// Package cli implements the cobra-based CLI commands for pkgscripts.
//
// Each subcommand (add-package, update-all-packages, versions) is defined in
// its own file within this package. This file defines the root command that
// serves as the parent for all subcommands and handles global flags.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/pkgscripts/internal/executor"
	"github.com/shinji-kodama/pkgscripts/internal/manifest"
	"github.com/shinji-kodama/pkgscripts/internal/model"
	"github.com/shinji-kodama/pkgscripts/internal/scripts"
	"github.com/shinji-kodama/pkgscripts/internal/versiontable"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	jsonOutput bool

	// verbose enables [verbose] diagnostics on stderr.
	verbose bool

	// packageManager is the binary every command is built for.
	packageManager string

	// versionsFile is the path to the version lookup table.
	versionsFile string

	// manifestFile is the path to the project's package.json.
	manifestFile string
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// newRunner returns the Runner used to execute package manager commands.
// Tests replace it with a recording fake.
var newRunner = func() scripts.Runner {
	return executor.New()
}

// NewRootCommand creates and configures the root cobra command.
//
// The root command only carries help text and global flags; the work is
// done by the subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pkgscripts",
		Short: "Add pinned packages and bulk-upgrade dependencies via the package manager",
		Long: `pkgscripts wraps two package manager chores.

add-package adds one dependency at a version specifier looked up from a
local version table. update-all-packages upgrades every dev dependency in
package.json, and production dependencies too when given +prod.

Commands run one at a time in the current directory and stop at the first
failure.`,

		// We print errors ourselves (text or JSON based on --json).
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&packageManager, "package-manager", scripts.DefaultPackageManager,
		"Package manager binary used to build commands")
	rootCmd.PersistentFlags().StringVar(&versionsFile, "versions-file", versiontable.DefaultPath,
		"Path to the version lookup table (JSON or YAML)")
	rootCmd.PersistentFlags().StringVar(&manifestFile, "manifest", manifest.DefaultPath,
		"Path to the project's package.json")

	rootCmd.AddCommand(NewAddPackageCommand())
	rootCmd.AddCommand(NewUpdateAllPackagesCommand())
	rootCmd.AddCommand(NewVersionsCommand())

	return rootCmd
}

// Execute runs the root command and exits with the code that matches the
// error, if any. Cancelling ctx kills a running package manager command.
func Execute(ctx context.Context, rootCmd *cobra.Command) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		os.Exit(int(model.ExitCodeFor(err)))
	}
}

// printError outputs an error in the format selected by --json.
func printError(err error) {
	message := err.Error()
	var underlying error
	if cliErr, ok := err.(*model.CLIError); ok {
		message = cliErr.Message
		underlying = cliErr.Err
	}

	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
				"code":    int(model.ExitCodeFor(err)),
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// stdout is reserved for successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
		return
	}

	if underlying != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}

func scriptOptions() scripts.Options {
	return scripts.Options{PackageManager: packageManager}
}

// printJSON writes v as indented JSON to cmd's output stream.
func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
