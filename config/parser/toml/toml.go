package toml

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/0xalexb/hjarta-config/config/parser"
)

// Parser implements config.Parser for TOML documents.
type Parser struct{}

// NewParser creates a new TOML parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes TOML data, selects the subtree at the dot-separated path
// and assigns it to the target. Dates and times become RFC 3339 strings.
func (p *Parser) Parse(data []byte, target any, path string) error {
	raw := map[string]any{}

	if err := toml.Unmarshal(data, &raw); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, column := decodeErr.Position()

			return fmt.Errorf("unmarshal error at line %d, column %d: %w", row, column, err)
		}

		return fmt.Errorf("unmarshal error: %w", err)
	}

	tree, err := parser.Navigate(parser.Normalize(raw), path)
	if err != nil {
		return err
	}

	return parser.Assign(tree, target)
}

// Format returns the format name the loader uses for line lookups.
func (p *Parser) Format() string {
	return "toml"
}
