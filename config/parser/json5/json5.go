package json5

import (
	"fmt"

	"github.com/yosuke-furukawa/json5/encoding/json5"

	"github.com/0xalexb/hjarta-config/config/parser"
)

// Parser implements config.Parser for JSON5 documents.
type Parser struct{}

// NewParser creates a new JSON5 parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes JSON5 data, selects the subtree at the dot-separated path
// and assigns it to the target.
func (p *Parser) Parse(data []byte, target any, path string) error {
	if parser.EmptyDocument(data) {
		return parser.Assign(map[string]any{}, target)
	}

	var raw any

	if err := json5.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}

	tree, err := parser.Navigate(parser.Normalize(integral(raw)), path)
	if err != nil {
		return err
	}

	return parser.Assign(tree, target)
}

// integral turns whole floats into int64, since JSON5 decodes every number
// as float64.
func integral(value any) any {
	switch typed := value.(type) {
	case float64:
		if typed == float64(int64(typed)) && typed >= -1<<53 && typed <= 1<<53 {
			return int64(typed)
		}

		return typed
	case map[string]any:
		for key, child := range typed {
			typed[key] = integral(child)
		}

		return typed
	case []any:
		for i, child := range typed {
			typed[i] = integral(child)
		}

		return typed
	default:
		return value
	}
}

// Format returns the format name the loader uses for line lookups.
func (p *Parser) Format() string {
	return "json5"
}
