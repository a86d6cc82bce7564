// Package scripts implements the add-package and update-all-packages
// operations.
//
// Both operations take their inputs (a loaded version table or manifest)
// as explicit values and delegate every package manager call to a Runner,
// so they can be exercised without touching the filesystem or spawning
// processes. Calls are strictly sequential: the package manager guards
// its cache and lockfile with its own locking, which is not safe to race.
package scripts

import (
	"context"
	"errors"
	"fmt"

	"github.com/shinji-kodama/pkgscripts/internal/model"
)

// DefaultPackageManager is the package manager binary commands are built for.
const DefaultPackageManager = "yarn"

// ProdFlag is the literal argument that extends update-all-packages to
// production dependencies.
const ProdFlag = "+prod"

// Runner runs one shell command and blocks until it exits.
// *executor.Executor is the production implementation.
type Runner interface {
	Run(ctx context.Context, command string) error
}

// Options configures how commands are built.
type Options struct {
	// PackageManager is the binary placed at the start of every command.
	// Defaults to DefaultPackageManager when empty.
	PackageManager string
}

func (o Options) packageManager() string {
	if o.PackageManager == "" {
		return DefaultPackageManager
	}
	return o.PackageManager
}

// AddCommand builds "<pm> add <packageName><versionSpecifier>". The
// specifier is appended verbatim.
func AddCommand(opts Options, packageName, versionSpecifier string) string {
	return fmt.Sprintf("%s add %s%s", opts.packageManager(), packageName, versionSpecifier)
}

// UpgradeCommand builds "<pm> upgrade <dependency>".
func UpgradeCommand(opts Options, dependency string) string {
	return fmt.Sprintf("%s upgrade %s", opts.packageManager(), dependency)
}

// AddPackage looks up the specifier for packageName under versionIdentifier
// and runs one add command for it.
//
// Lookup failures are returned before anything runs. An ExecutionError from
// the runner is returned unchanged. The returned invocation is nil only when
// the lookup failed.
func AddPackage(
	ctx context.Context,
	table model.VersionTable,
	runner Runner,
	opts Options,
	packageName, versionIdentifier string,
) (*model.CommandInvocation, error) {
	plan, err := PlanAddPackage(table, opts, packageName, versionIdentifier)
	if err != nil {
		return nil, err
	}

	inv := invoke(ctx, runner, plan.Command)
	return &inv, inv.Err
}

// PlanAddPackage resolves the add command without running it.
func PlanAddPackage(
	table model.VersionTable,
	opts Options,
	packageName, versionIdentifier string,
) (*model.CommandInvocation, error) {
	specifier, err := table.Lookup(packageName, versionIdentifier)
	if err != nil {
		return nil, err
	}
	return &model.CommandInvocation{Command: AddCommand(opts, packageName, specifier)}, nil
}

// UpdateAllPackages upgrades every dev dependency in manifest order, then
// every production dependency when includeProd is set.
//
// The first failure stops the run: later dependencies are not attempted.
// The returned slice holds the invocations made so far, including the
// failed one, and the error names the dependency that failed.
func UpdateAllPackages(
	ctx context.Context,
	manifest *model.DependencyManifest,
	runner Runner,
	opts Options,
	includeProd bool,
) ([]model.CommandInvocation, error) {
	plan := PlanUpdateAllPackages(manifest, opts, includeProd)

	done := make([]model.CommandInvocation, 0, len(plan))
	for _, step := range plan {
		if err := ctx.Err(); err != nil {
			return done, err
		}

		inv := invoke(ctx, runner, step.Command)
		done = append(done, inv)
		if inv.Err != nil {
			return done, fmt.Errorf("upgrade %s: %w", step.Dependency, inv.Err)
		}
	}
	return done, nil
}

// Step is one planned upgrade.
type Step struct {
	Dependency string `json:"dependency"`
	Command    string `json:"command"`
}

// PlanUpdateAllPackages lists the upgrade commands in the order they would run.
func PlanUpdateAllPackages(manifest *model.DependencyManifest, opts Options, includeProd bool) []Step {
	if manifest == nil {
		return nil
	}

	names := append([]string{}, manifest.DevDependencies...)
	if includeProd {
		names = append(names, manifest.Dependencies...)
	}

	steps := make([]Step, 0, len(names))
	for _, name := range names {
		steps = append(steps, Step{Dependency: name, Command: UpgradeCommand(opts, name)})
	}
	return steps
}

// Commands returns the command strings of a plan.
func Commands(steps []Step) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Command)
	}
	return out
}

// IncludeProd reports whether the update-all-packages arguments ask for
// production dependencies. Only the literal ProdFlag as the first argument
// counts.
func IncludeProd(args []string) bool {
	return len(args) > 0 && args[0] == ProdFlag
}

func invoke(ctx context.Context, runner Runner, command string) model.CommandInvocation {
	inv := model.CommandInvocation{Command: command}
	if err := runner.Run(ctx, command); err != nil {
		inv.Err = err
		inv.ExitCode = -1
		var execErr *model.ExecutionError
		if errors.As(err, &execErr) {
			inv.ExitCode = execErr.ExitCode
		}
	}
	return inv
}
