package versiontable

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/pkgscripts/internal/model"
)

// DefaultPath is where the version table lives relative to the project root.
const DefaultPath = "scripts/resources/package_versions.json"

// Load reads the version table at path.
//
// Returns a CLIError with ExitFileNotFound if the file does not exist.
func Load(path string) (model.VersionTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitFileNotFound,
				fmt.Sprintf("version table not found: %s", path),
				err,
			)
		}
		return nil, fmt.Errorf("failed to read version table: %w", err)
	}

	return Parse(data, formatFor(path))
}

// Format is the encoding of a version table file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func formatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes a version table from data.
//
// An empty document yields an empty, non-nil table. A package whose value
// is null is kept with no identifiers, so lookups against it report an
// unknown identifier rather than an unknown package.
func Parse(data []byte, format Format) (model.VersionTable, error) {
	var raw map[string]map[string]string

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse version table: %w", err)
		}
	case FormatJSON:
		clean := jsonc.ToJSON(data)
		if len(strings.TrimSpace(string(clean))) == 0 {
			break
		}
		if err := json.Unmarshal(clean, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse version table: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported version table format %q", format)
	}

	table := make(model.VersionTable, len(raw))
	for name, versions := range raw {
		if versions == nil {
			versions = map[string]string{}
		}
		table[name] = versions
	}
	return table, nil
}
