package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// VersionTable maps a package name to its recorded version specifiers,
// keyed by a short version identifier (a channel or tag such as "latest").
//
// Example JSON form:
//
//	{"lodash": {"latest": "^4.17.21", "legacy": "@3.10.1"}}
type VersionTable map[string]map[string]string

// Lookup returns the version specifier recorded for packageName under
// versionIdentifier.
//
// A missing package yields *UnknownPackageError and a missing identifier
// yields *UnknownVersionIdentifierError. An empty specifier is a valid
// value: it adds the package without a version suffix.
func (t VersionTable) Lookup(packageName, versionIdentifier string) (string, error) {
	versions, ok := t[packageName]
	if !ok {
		return "", &UnknownPackageError{PackageName: packageName}
	}
	specifier, ok := versions[versionIdentifier]
	if !ok {
		return "", &UnknownVersionIdentifierError{
			PackageName:       packageName,
			VersionIdentifier: versionIdentifier,
			Known:             sortedKeys(versions),
		}
	}
	return specifier, nil
}

// PackageNames returns all package names in the table, sorted.
func (t VersionTable) PackageNames() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Identifiers returns the version identifiers recorded for packageName,
// sorted. Returns nil for an unknown package.
func (t VersionTable) Identifiers(packageName string) []string {
	versions, ok := t[packageName]
	if !ok {
		return nil
	}
	return sortedKeys(versions)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DependencyManifest holds the dependency names declared in a project's
// package.json. Both slices keep the order in which the names appear
// in the file.
type DependencyManifest struct {
	// Dependencies are the production dependency names ("dependencies").
	Dependencies []string `json:"dependencies"`

	// DevDependencies are the development dependency names ("devDependencies").
	DevDependencies []string `json:"devDependencies"`
}

// CommandInvocation is a single package manager command and its outcome.
type CommandInvocation struct {
	// Command is the full shell command string, e.g. "yarn upgrade eslint".
	Command string `json:"command"`

	// ExitCode is the child's exit status. Zero until the command has run.
	ExitCode int `json:"exitCode"`

	// Err is the executor failure, if any.
	Err error `json:"-"`
}

// Succeeded reports whether the invocation completed with a zero exit status.
func (c *CommandInvocation) Succeeded() bool {
	return c.Err == nil && c.ExitCode == 0
}

// UnknownPackageError is returned when a package name is absent from the
// version table.
type UnknownPackageError struct {
	PackageName string
}

func (e *UnknownPackageError) Error() string {
	return fmt.Sprintf("unknown package %q: not present in the version table", e.PackageName)
}

// UnknownVersionIdentifierError is returned when a package exists in the
// version table but has no entry for the requested identifier.
type UnknownVersionIdentifierError struct {
	PackageName       string
	VersionIdentifier string

	// Known lists the identifiers that are recorded for the package.
	Known []string
}

func (e *UnknownVersionIdentifierError) Error() string {
	msg := fmt.Sprintf("unknown version identifier %q for package %q", e.VersionIdentifier, e.PackageName)
	if len(e.Known) > 0 {
		msg += fmt.Sprintf(" (known: %s)", strings.Join(e.Known, ", "))
	}
	return msg
}

// ExecutionError is returned when a package manager command exits with a
// non-zero status, is killed by a signal, or cannot be started.
type ExecutionError struct {
	// Command is the shell command that failed.
	Command string

	// ExitCode is the child's exit status, or -1 when the process was
	// terminated by a signal or never started.
	ExitCode int

	// Stderr is the captured standard error output, trimmed.
	Stderr string

	// Err is the underlying error from os/exec.
	Err error
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("command %q failed", e.Command)
	if e.ExitCode >= 0 {
		msg = fmt.Sprintf("%s with exit code %d", msg, e.ExitCode)
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Stderr != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Stderr)
	}
	return msg
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ExitCode defines the process exit codes of the pkgscripts CLI.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error, such as bad arguments
	// or a malformed input file.
	ExitGeneralError ExitCode = 1

	// ExitFileNotFound indicates the version table or manifest file is missing.
	ExitFileNotFound ExitCode = 2

	// ExitUnknownPackage indicates a package name absent from the version table.
	ExitUnknownPackage ExitCode = 3

	// ExitUnknownVersionIdentifier indicates an identifier absent under a
	// known package.
	ExitUnknownVersionIdentifier ExitCode = 4

	// ExitCommandFailed indicates the package manager command failed.
	ExitCommandFailed ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// ExitCodeFor maps an error to the process exit code it should produce.
// An explicit CLIError code wins; otherwise the first domain error found
// in the chain decides. Unrecognized errors map to ExitGeneralError.
func ExitCodeFor(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}

	var unknownPkg *UnknownPackageError
	if errors.As(err, &unknownPkg) {
		return ExitUnknownPackage
	}

	var unknownID *UnknownVersionIdentifierError
	if errors.As(err, &unknownID) {
		return ExitUnknownVersionIdentifier
	}

	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return ExitCommandFailed
	}

	return ExitGeneralError
}
