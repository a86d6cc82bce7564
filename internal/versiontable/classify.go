package versiontable

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/shinji-kodama/pkgscripts/internal/model"
)

// Kind describes what a version specifier looks like.
type Kind string

const (
	// KindConstraint is a semver range such as "^4.17.21" or "@1.2.3".
	KindConstraint Kind = "constraint"

	// KindTag is anything else the package manager may accept, such as
	// "@next" or a git URL.
	KindTag Kind = "tag"

	// KindNone is an empty specifier: the package is added unversioned.
	KindNone Kind = "none"
)

// Classify reports the kind of a version specifier. A leading "@" is
// ignored since yarn accepts both "name@range" and "name" + range forms.
func Classify(specifier string) Kind {
	s := strings.TrimPrefix(strings.TrimSpace(specifier), "@")
	if s == "" {
		return KindNone
	}
	if _, err := semver.NewConstraint(s); err != nil {
		return KindTag
	}
	return KindConstraint
}

// Entry is one flattened row of a version table.
type Entry struct {
	Package    string `json:"package"`
	Identifier string `json:"identifier"`
	Specifier  string `json:"specifier"`
	Kind       Kind   `json:"kind"`
}

// Entries flattens table into rows sorted by package then identifier.
// When packageName is non-empty only that package is listed, and an
// unknown name fails with *model.UnknownPackageError.
func Entries(table model.VersionTable, packageName string) ([]Entry, error) {
	names := table.PackageNames()
	if packageName != "" {
		if _, ok := table[packageName]; !ok {
			return nil, &model.UnknownPackageError{PackageName: packageName}
		}
		names = []string{packageName}
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		for _, id := range table.Identifiers(name) {
			spec := table[name][id]
			entries = append(entries, Entry{
				Package:    name,
				Identifier: id,
				Specifier:  spec,
				Kind:       Classify(spec),
			})
		}
	}
	return entries, nil
}
