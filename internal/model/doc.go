// Package model defines the domain types for the pkgscripts CLI.
//
// The version table and dependency manifest are loaded once per process
// and never mutated. Lookups on the version table are fallible and fail
// with typed errors before any package manager command is built.
//
// ExitCode and CLIError let the CLI layer translate domain failures into
// process exit codes.
package model
