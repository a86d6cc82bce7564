// Package manifest reads the dependency names declared in a project's
// package.json.
//
// encoding/json decodes objects into Go maps, which lose the key order of
// the file. The upgrade order must follow the manifest, so the dependency
// objects are walked with github.com/buger/jsonparser, which visits keys
// in document order. Comments and trailing commas are stripped first with
// github.com/tidwall/jsonc.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/buger/jsonparser"
	"github.com/tidwall/jsonc"

	"github.com/shinji-kodama/pkgscripts/internal/model"
)

// DefaultPath is the manifest location relative to the project root.
const DefaultPath = "package.json"

const (
	fieldDependencies    = "dependencies"
	fieldDevDependencies = "devDependencies"
)

// Load reads the manifest at path.
//
// Returns a CLIError with ExitFileNotFound if the file does not exist.
func Load(path string) (*model.DependencyManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitFileNotFound,
				fmt.Sprintf("package.json not found: %s", path),
				err,
			)
		}
		return nil, fmt.Errorf("failed to read package.json: %w", err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse package.json at %s: %w", path, err)
	}
	return m, nil
}

// Parse extracts the production and development dependency names from
// package.json contents, preserving declaration order.
//
// A missing or null dependency field yields an empty list.
func Parse(data []byte) (*model.DependencyManifest, error) {
	clean := jsonc.ToJSON(data)
	if !json.Valid(clean) {
		return nil, errors.New("invalid JSON")
	}

	deps, err := objectKeys(clean, fieldDependencies)
	if err != nil {
		return nil, err
	}
	devDeps, err := objectKeys(clean, fieldDevDependencies)
	if err != nil {
		return nil, err
	}

	return &model.DependencyManifest{
		Dependencies:    deps,
		DevDependencies: devDeps,
	}, nil
}

// objectKeys returns the keys of the top-level object field in file order.
func objectKeys(data []byte, field string) ([]string, error) {
	value, dataType, _, err := jsonparser.Get(data, field)
	if err != nil {
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%s: %w", field, err)
	}

	switch dataType {
	case jsonparser.Null:
		return []string{}, nil
	case jsonparser.Object:
	default:
		return nil, fmt.Errorf("%s: expected an object, got %s", field, dataType)
	}

	keys := []string{}
	// ObjectEach hands over keys already unescaped.
	err = jsonparser.ObjectEach(value, func(key []byte, _ []byte, _ jsonparser.ValueType, _ int) error {
		keys = append(keys, string(key))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return keys, nil
}
