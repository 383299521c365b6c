package yaml

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/0xalexb/hjarta-config/config/parser"
)

// Parser implements config.Parser interface for YAML data.
// It uses goccy/go-yaml PathString for efficient path navigation.
type Parser struct{}

// NewParser creates a new YAML parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses YAML data and assigns it to the target.
// The path parameter is a dot-separated prefix selecting a nested mapping.
// Empty path parses the entire document; an empty document is an empty
// mapping.
func (p *Parser) Parse(data []byte, target any, path string) error {
	var raw any

	switch {
	case parser.EmptyDocument(data):
		raw = map[string]any{}
	case path == "":
		err := yaml.Unmarshal(data, &raw)
		if err != nil {
			return fmt.Errorf("unmarshal error: %w", err)
		}

		if raw == nil {
			raw = map[string]any{}
		}
	default:
		pathObj, err := yaml.PathString(convertToYAMLPath(path))
		if err != nil {
			return fmt.Errorf("invalid path %q: %w", path, err)
		}

		err = pathObj.Read(bytes.NewReader(data), &raw)
		if err != nil {
			if isKeyNotFoundError(err) {
				return fmt.Errorf("%w: %s", parser.ErrPathNotFound, path)
			}

			return fmt.Errorf("reading path %q: %w", path, err)
		}
	}

	return parser.Assign(parser.Normalize(raw), target)
}

// convertToYAMLPath converts a dot-separated prefix to goccy/go-yaml PathString format.
// Examples:
//   - "key" -> "$.key"
//   - "api.permissions" -> "$.api.permissions"
func convertToYAMLPath(path string) string {
	return "$." + path
}

// isKeyNotFoundError checks if the error indicates a key was not found.
func isKeyNotFoundError(err error) bool {
	return yaml.IsNotFoundNodeError(err)
}

// Format returns the format name the loader uses for line lookups.
func (p *Parser) Format() string {
	return "yaml"
}
