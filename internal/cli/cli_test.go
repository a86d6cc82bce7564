// Package cli: cli_test.go drives the cobra commands end to end with a
// recording runner in place of the real executor, so no package manager
// is ever spawned.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/pkgscripts/internal/model"
	"github.com/shinji-kodama/pkgscripts/internal/scripts"
)

// fakeRunner records commands and fails those listed in failOn.
type fakeRunner struct {
	calls  []string
	failOn map[string]bool
}

func (f *fakeRunner) Run(_ context.Context, command string) error {
	f.calls = append(f.calls, command)
	if f.failOn[command] {
		return &model.ExecutionError{Command: command, ExitCode: 1}
	}
	return nil
}

// useFakeRunner swaps newRunner for the duration of the test.
func useFakeRunner(t *testing.T, r *fakeRunner) {
	t.Helper()

	orig := newRunner
	newRunner = func() scripts.Runner { return r }
	t.Cleanup(func() { newRunner = orig })
}

// setupProject writes a version table and package.json into a temp dir and
// returns their paths.
func setupProject(t *testing.T) (versionsPath, manifestPath string) {
	t.Helper()

	dir := t.TempDir()
	versionsPath = filepath.Join(dir, "package_versions.json")
	manifestPath = filepath.Join(dir, "package.json")

	require.NoError(t, os.WriteFile(versionsPath, []byte(`{
  "lodash": {"latest": "^4.17.21"},
  "react": {"next": "@next"}
}`), 0644))
	require.NoError(t, os.WriteFile(manifestPath, []byte(`{
  "dependencies": {"react": "*"},
  "devDependencies": {"eslint": "*"}
}`), 0644))

	return versionsPath, manifestPath
}

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAddPackageCommand(t *testing.T) {
	versionsPath, _ := setupProject(t)
	runner := &fakeRunner{}
	useFakeRunner(t, runner)

	out, err := run(t, "add-package", "lodash", "latest", "--versions-file", versionsPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"yarn add lodash^4.17.21"}, runner.calls)
	assert.Contains(t, out, "Added lodash (latest)")
}

func TestAddPackageCommand_PackageManagerFlag(t *testing.T) {
	versionsPath, _ := setupProject(t)
	runner := &fakeRunner{}
	useFakeRunner(t, runner)

	_, err := run(t, "add-package", "react", "next", "--versions-file", versionsPath, "--package-manager", "pnpm")
	require.NoError(t, err)
	assert.Equal(t, []string{"pnpm add react@next"}, runner.calls)
}

// TestAddPackageCommand_LookupErrors verifies exit codes for lookup misses
// and that nothing is run.
func TestAddPackageCommand_LookupErrors(t *testing.T) {
	versionsPath, _ := setupProject(t)

	tests := []struct {
		name string
		args []string
		want model.ExitCode
	}{
		{"unknown package", []string{"left-pad", "latest"}, model.ExitUnknownPackage},
		{"unknown identifier", []string{"lodash", "beta"}, model.ExitUnknownVersionIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			useFakeRunner(t, runner)

			args := append([]string{"add-package"}, tt.args...)
			args = append(args, "--versions-file", versionsPath)
			_, err := run(t, args...)

			require.Error(t, err)
			assert.Equal(t, tt.want, model.ExitCodeFor(err))
			assert.Empty(t, runner.calls)
		})
	}
}

func TestAddPackageCommand_MissingTable(t *testing.T) {
	useFakeRunner(t, &fakeRunner{})

	_, err := run(t, "add-package", "lodash", "latest", "--versions-file", filepath.Join(t.TempDir(), "none.json"))
	assert.Equal(t, model.ExitFileNotFound, model.ExitCodeFor(err))
}

func TestAddPackageCommand_WrongArgCount(t *testing.T) {
	useFakeRunner(t, &fakeRunner{})

	_, err := run(t, "add-package", "lodash")
	require.Error(t, err)
	assert.Equal(t, model.ExitGeneralError, model.ExitCodeFor(err))
}

func TestAddPackageCommand_ExecutionFailure(t *testing.T) {
	versionsPath, _ := setupProject(t)
	useFakeRunner(t, &fakeRunner{failOn: map[string]bool{"yarn add lodash^4.17.21": true}})

	_, err := run(t, "add-package", "lodash", "latest", "--versions-file", versionsPath)
	assert.Equal(t, model.ExitCommandFailed, model.ExitCodeFor(err))
}

func TestAddPackageCommand_DryRunJSON(t *testing.T) {
	versionsPath, _ := setupProject(t)
	runner := &fakeRunner{}
	useFakeRunner(t, runner)

	out, err := run(t, "add-package", "lodash", "latest", "--versions-file", versionsPath, "--dry-run", "--json")
	require.NoError(t, err)
	assert.Empty(t, runner.calls)

	var result addPackageResultJSON
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "yarn add lodash^4.17.21", result.Command)
	assert.True(t, result.DryRun)
}

// TestUpdateAllPackagesCommand verifies the eslint/react scenario through
// the CLI, with and without +prod.
func TestUpdateAllPackagesCommand(t *testing.T) {
	_, manifestPath := setupProject(t)

	t.Run("dev only", func(t *testing.T) {
		runner := &fakeRunner{}
		useFakeRunner(t, runner)

		out, err := run(t, "update-all-packages", "--manifest", manifestPath)
		require.NoError(t, err)
		assert.Equal(t, []string{"yarn upgrade eslint"}, runner.calls)
		assert.Contains(t, out, "Upgraded 1 package(s)")
	})

	t.Run("with prod", func(t *testing.T) {
		runner := &fakeRunner{}
		useFakeRunner(t, runner)

		_, err := run(t, "update-all-packages", "+prod", "--manifest", manifestPath)
		require.NoError(t, err)
		assert.Equal(t, []string{"yarn upgrade eslint", "yarn upgrade react"}, runner.calls)
	})

	t.Run("other token is not prod", func(t *testing.T) {
		runner := &fakeRunner{}
		useFakeRunner(t, runner)

		_, err := run(t, "update-all-packages", "prod", "--manifest", manifestPath)
		require.NoError(t, err)
		assert.Equal(t, []string{"yarn upgrade eslint"}, runner.calls)
	})
}

func TestUpdateAllPackagesCommand_Failure(t *testing.T) {
	_, manifestPath := setupProject(t)
	runner := &fakeRunner{failOn: map[string]bool{"yarn upgrade eslint": true}}
	useFakeRunner(t, runner)

	_, err := run(t, "update-all-packages", "+prod", "--manifest", manifestPath)
	require.Error(t, err)
	assert.Equal(t, model.ExitCommandFailed, model.ExitCodeFor(err))
	assert.Equal(t, []string{"yarn upgrade eslint"}, runner.calls)

	var execErr *model.ExecutionError
	assert.True(t, errors.As(err, &execErr))
}

func TestUpdateAllPackagesCommand_TooManyArgs(t *testing.T) {
	useFakeRunner(t, &fakeRunner{})

	_, err := run(t, "update-all-packages", "+prod", "extra")
	assert.Equal(t, model.ExitGeneralError, model.ExitCodeFor(err))
}

func TestUpdateAllPackagesCommand_DryRun(t *testing.T) {
	_, manifestPath := setupProject(t)
	runner := &fakeRunner{}
	useFakeRunner(t, runner)

	out, err := run(t, "update-all-packages", "+prod", "--manifest", manifestPath, "--dry-run")
	require.NoError(t, err)
	assert.Empty(t, runner.calls)
	assert.Equal(t, "yarn upgrade eslint\nyarn upgrade react\n", out)
}

func TestUpdateAllPackagesCommand_JSON(t *testing.T) {
	_, manifestPath := setupProject(t)
	useFakeRunner(t, &fakeRunner{})

	out, err := run(t, "update-all-packages", "+prod", "--manifest", manifestPath, "--json")
	require.NoError(t, err)

	var result updateResultJSON
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.IncludeProd)
	assert.False(t, result.DryRun)
	assert.Equal(t, []updateCommandJSON{
		{Command: "yarn upgrade eslint"},
		{Command: "yarn upgrade react"},
	}, result.Commands)
}

func TestUpdateAllPackagesCommand_MissingManifest(t *testing.T) {
	useFakeRunner(t, &fakeRunner{})

	_, err := run(t, "update-all-packages", "--manifest", filepath.Join(t.TempDir(), "package.json"))
	assert.Equal(t, model.ExitFileNotFound, model.ExitCodeFor(err))
}

func TestVersionsCommand(t *testing.T) {
	versionsPath, _ := setupProject(t)

	out, err := run(t, "versions", "--versions-file", versionsPath)
	require.NoError(t, err)

	assert.Contains(t, out, "PACKAGE")
	assert.Regexp(t, `lodash\s+latest\s+\^4\.17\.21\s+constraint`, out)
	assert.Regexp(t, `react\s+next\s+@next\s+tag`, out)
}

func TestVersionsCommand_JSONSinglePackage(t *testing.T) {
	versionsPath, _ := setupProject(t)

	out, err := run(t, "versions", "react", "--versions-file", versionsPath, "--json")
	require.NoError(t, err)

	var result struct {
		Entries []struct {
			Package string `json:"package"`
			Kind    string `json:"kind"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "react", result.Entries[0].Package)
	assert.Equal(t, "tag", result.Entries[0].Kind)
}

func TestVersionsCommand_UnknownPackage(t *testing.T) {
	versionsPath, _ := setupProject(t)

	_, err := run(t, "versions", "left-pad", "--versions-file", versionsPath)
	assert.Equal(t, model.ExitUnknownPackage, model.ExitCodeFor(err))
}
