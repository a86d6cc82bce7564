// Package cli: add_package.go implements "pkgscripts add-package".
//
// The command looks up a version specifier for the package in the version
// table and runs "<pm> add <name><specifier>" once. Lookup misses fail
// before anything runs.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/pkgscripts/internal/model"
	"github.com/shinji-kodama/pkgscripts/internal/scripts"
	"github.com/shinji-kodama/pkgscripts/internal/versiontable"
)

// addPackageFlags holds the flag values for the add-package command.
type addPackageFlags struct {
	// dryRun prints the command instead of running it.
	dryRun bool
}

// NewAddPackageCommand creates the "add-package" cobra command.
func NewAddPackageCommand() *cobra.Command {
	flags := &addPackageFlags{}

	cmd := &cobra.Command{
		Use:   "add-package <packageName> <versionIdentifier>",
		Short: "Add a package at the version recorded in the version table",
		Long: `Add a package at the version specifier recorded for it in the version table.

The specifier is appended to the package name verbatim, so a table entry
{"lodash": {"latest": "^4.17.21"}} produces "yarn add lodash^4.17.21".

Examples:
  pkgscripts add-package lodash latest
  pkgscripts add-package react next --dry-run
  pkgscripts add-package zod stable --versions-file versions.yaml`,

		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return model.NewCLIError(model.ExitGeneralError,
					fmt.Sprintf("add-package requires <packageName> and <versionIdentifier>, got %d argument(s)", len(args)))
			}
			return nil
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddPackage(cmd.Context(), cmd, flags, args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print the command instead of running it")

	return cmd
}

// addPackageResultJSON is the --json output of add-package.
type addPackageResultJSON struct {
	Package           string `json:"package"`
	VersionIdentifier string `json:"versionIdentifier"`
	Command           string `json:"command"`
	DryRun            bool   `json:"dryRun"`
}

// runAddPackage loads the version table, resolves the command, and runs it
// unless --dry-run is set.
func runAddPackage(ctx context.Context, cmd *cobra.Command, flags *addPackageFlags, packageName, versionIdentifier string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	table, err := versiontable.Load(versionsFile)
	if err != nil {
		return err
	}
	VerboseLog("Loaded %d packages from %s", len(table), versionsFile)

	opts := scriptOptions()

	var inv *model.CommandInvocation
	if flags.dryRun {
		inv, err = scripts.PlanAddPackage(table, opts, packageName, versionIdentifier)
	} else {
		VerboseLog("Adding %s (%s)", packageName, versionIdentifier)
		inv, err = scripts.AddPackage(ctx, table, newRunner(), opts, packageName, versionIdentifier)
	}
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return printJSON(cmd, addPackageResultJSON{
			Package:           packageName,
			VersionIdentifier: versionIdentifier,
			Command:           inv.Command,
			DryRun:            flags.dryRun,
		})
	}

	if flags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), inv.Command)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", packageName, versionIdentifier)
	return nil
}
