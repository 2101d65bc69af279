package catalog

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// SupportedFileVersion is the only catalog file schema version this
// build understands.
const SupportedFileVersion = 1

// File is the on-disk shape of a pattern catalog
type File struct {
	// Version is the schema version of the file, currently always 1
	Version int `yaml:"version" json:"version"`

	// Patterns are the pattern definitions in catalog order
	Patterns []Definition `yaml:"patterns" json:"patterns"`
}

// Validate checks the file's schema version and every definition
func (f *File) Validate() error {
	if f.Version != SupportedFileVersion {
		return fmt.Errorf("unsupported catalog file version %d (supported: %d)", f.Version, SupportedFileVersion)
	}
	if len(f.Patterns) == 0 {
		return fmt.Errorf("catalog file must contain at least one pattern")
	}
	seen := make(map[string]struct{}, len(f.Patterns))
	for i, def := range f.Patterns {
		if err := def.Validate(); err != nil {
			return fmt.Errorf("pattern %d: %w", i, err)
		}
		if _, dup := seen[def.ID]; dup {
			return fmt.Errorf("duplicate pattern id %q", def.ID)
		}
		seen[def.ID] = struct{}{}
	}
	return nil
}

// LoadFile loads and validates a pattern catalog file using koanf.
//
// Error cases:
//   - File not found or cannot be read
//   - Invalid YAML syntax
//   - Schema validation failure (unsupported version, missing required
//     fields, duplicate ids, uncompilable matchers)
func LoadFile(path string) (*File, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load pattern catalog from %q: %w", path, err)
	}

	var f File
	if err := k.UnmarshalWithConf("", &f, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to parse pattern catalog from %q: %w", path, err)
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("pattern catalog validation failed for %q: %w", path, err)
	}

	// Matcher expressions must compile; compile() re-checks this at
	// catalog construction but a load should fail early.
	for _, def := range f.Patterns {
		if _, err := NewRegexMatcher(def.Matcher); err != nil {
			return nil, fmt.Errorf("pattern catalog validation failed for %q: pattern %q: %w", path, def.ID, err)
		}
	}

	return &f, nil
}

// NewFromFile builds a catalog directly from a catalog file on disk
func NewFromFile(path string) (*Catalog, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(f.Patterns)
}
