// Package versiontable loads the version lookup table used by the
// add-package command.
//
// The table is a two-level mapping from package name to version identifier
// to version specifier. It is read from JSON (comments and trailing commas
// allowed, via github.com/tidwall/jsonc) or from YAML when the file has a
// .yaml or .yml extension.
//
// Specifiers are opaque strings handed to the package manager. Classify
// only inspects them for display in the versions listing.
package versiontable
