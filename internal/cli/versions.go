// Package cli: versions.go implements "pkgscripts versions", which lists
// the entries of the version table.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/pkgscripts/internal/versiontable"
)

// NewVersionsCommand creates the "versions" cobra command.
func NewVersionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "versions [packageName]",
		Short: "List the version table",
		Long: `List the packages, identifiers and specifiers recorded in the version table.

Each specifier is shown with its kind: "constraint" for semver ranges,
"tag" for anything else such as @next, and "none" for an empty specifier.

Examples:
  pkgscripts versions
  pkgscripts versions lodash --json`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			packageName := ""
			if len(args) == 1 {
				packageName = args[0]
			}
			return runVersions(cmd, packageName)
		},
	}
}

func runVersions(cmd *cobra.Command, packageName string) error {
	table, err := versiontable.Load(versionsFile)
	if err != nil {
		return err
	}

	entries, err := versiontable.Entries(table, packageName)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		type resultJSON struct {
			Entries []versiontable.Entry `json:"entries"`
		}
		return printJSON(cmd, resultJSON{Entries: entries})
	}

	printVersionsText(cmd, entries)
	return nil
}

// printVersionsText prints entries as an aligned table:
//
//	PACKAGE              IDENTIFIER      SPECIFIER            KIND
//	lodash               latest          ^4.17.21             constraint
//	react                next            @next                tag
func printVersionsText(cmd *cobra.Command, entries []versiontable.Entry) {
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No versions recorded.")
		return
	}

	fmt.Fprintf(out, "%-20s %-15s %-20s %s\n", "PACKAGE", "IDENTIFIER", "SPECIFIER", "KIND")
	for _, e := range entries {
		spec := e.Specifier
		if spec == "" {
			spec = "-"
		}
		fmt.Fprintf(out, "%-20s %-15s %-20s %s\n", e.Package, e.Identifier, spec, e.Kind)
	}
}
