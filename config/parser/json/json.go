package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/0xalexb/hjarta-config/config/parser"
)

// ErrTrailingData is returned when a document holds more than one value.
var ErrTrailingData = errors.New("unexpected data after top-level value")

// Parser implements config.Parser for JSON documents.
type Parser struct{}

// NewParser creates a new JSON parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes JSON data, selects the subtree at the dot-separated path
// and assigns it to the target. Integers stay exact.
func (p *Parser) Parse(data []byte, target any, path string) error {
	if parser.EmptyDocument(data) {
		return parser.Assign(map[string]any{}, target)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw any

	if err := decoder.Decode(&raw); err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}

	tree, err := parser.Navigate(parser.Normalize(raw), path)
	if err != nil {
		return err
	}

	return parser.Assign(tree, target)
}

// Format returns the format name the loader uses for line lookups.
func (p *Parser) Format() string {
	return "json"
}
