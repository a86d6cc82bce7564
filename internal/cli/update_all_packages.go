// Package cli: update_all_packages.go implements
// "pkgscripts update-all-packages".
//
// Dev dependencies are upgraded one at a time in package.json order. With
// the literal "+prod" argument, production dependencies follow. The first
// failing upgrade ends the run.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/pkgscripts/internal/manifest"
	"github.com/shinji-kodama/pkgscripts/internal/model"
	"github.com/shinji-kodama/pkgscripts/internal/scripts"
)

// updateAllPackagesFlags holds the flag values for update-all-packages.
type updateAllPackagesFlags struct {
	// dryRun prints the planned commands instead of running them.
	dryRun bool
}

// NewUpdateAllPackagesCommand creates the "update-all-packages" cobra command.
func NewUpdateAllPackagesCommand() *cobra.Command {
	flags := &updateAllPackagesFlags{}

	cmd := &cobra.Command{
		Use:   "update-all-packages [+prod]",
		Short: "Upgrade all dev dependencies, and production ones with +prod",
		Long: `Upgrade every dependency declared in package.json, one at a time.

Without arguments only devDependencies are upgraded. Pass +prod to upgrade
dependencies as well, after the dev dependencies. The run stops at the
first upgrade that fails.

Examples:
  pkgscripts update-all-packages
  pkgscripts update-all-packages +prod
  pkgscripts update-all-packages +prod --dry-run --json`,

		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return model.NewCLIError(model.ExitGeneralError,
					fmt.Sprintf("update-all-packages accepts at most one argument (%s), got %d", scripts.ProdFlag, len(args)))
			}
			return nil
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdateAllPackages(cmd.Context(), cmd, flags, args)
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print the commands instead of running them")

	return cmd
}

// updateResultJSON is the --json output of update-all-packages.
type updateResultJSON struct {
	IncludeProd bool                `json:"includeProd"`
	DryRun      bool                `json:"dryRun"`
	Commands    []updateCommandJSON `json:"commands"`
}

type updateCommandJSON struct {
	Command  string `json:"command"`
	ExitCode int    `json:"exitCode"`
}

func runUpdateAllPackages(ctx context.Context, cmd *cobra.Command, flags *updateAllPackagesFlags, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	includeProd := scripts.IncludeProd(args)
	if len(args) > 0 && !includeProd {
		VerboseLog("Ignoring argument %q: only %s widens the upgrade", args[0], scripts.ProdFlag)
	}

	m, err := manifest.Load(manifestFile)
	if err != nil {
		return err
	}
	VerboseLog("Loaded %d dev and %d production dependencies from %s",
		len(m.DevDependencies), len(m.Dependencies), manifestFile)

	opts := scriptOptions()

	if flags.dryRun {
		steps := scripts.PlanUpdateAllPackages(m, opts, includeProd)
		if IsJSONOutput() {
			result := updateResultJSON{IncludeProd: includeProd, DryRun: true, Commands: make([]updateCommandJSON, 0, len(steps))}
			for _, s := range steps {
				result.Commands = append(result.Commands, updateCommandJSON{Command: s.Command})
			}
			return printJSON(cmd, result)
		}
		for _, c := range scripts.Commands(steps) {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	}

	done, runErr := scripts.UpdateAllPackages(ctx, m, newRunner(), opts, includeProd)

	if IsJSONOutput() {
		result := updateResultJSON{IncludeProd: includeProd, Commands: make([]updateCommandJSON, 0, len(done))}
		for _, inv := range done {
			result.Commands = append(result.Commands, updateCommandJSON{Command: inv.Command, ExitCode: inv.ExitCode})
		}
		if err := printJSON(cmd, result); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	if !IsJSONOutput() {
		fmt.Fprintf(cmd.OutOrStdout(), "Upgraded %d package(s)\n", len(done))
	}
	return nil
}
