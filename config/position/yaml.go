package position

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAML indexes the first document of a YAML stream.
//
// A mapping or sequence value spans from its key to the last non-blank line
// before the next sibling key, or before the end of its parent. Block
// scalars and other values starting below their key span the same way;
// plain values on the key line span that line. Sequence items are indexed
// by position.
func YAML(content []byte) (LineMap, error) {
	var document yaml.Node

	if err := yaml.Unmarshal(content, &document); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	lines := make(LineMap)

	if document.Kind != yaml.DocumentNode || len(document.Content) == 0 {
		return lines, nil
	}

	indexer := yamlIndexer{
		source: strings.Split(string(content), "\n"),
		lines:  lines,
	}

	root := document.Content[0]
	end := indexer.lastNonBlank(len(indexer.source), root.Line-1)

	switch root.Kind {
	case yaml.MappingNode:
		indexer.mapping(root, nil, end)
	case yaml.SequenceNode:
		indexer.sequence(root, nil, end)
	default:
	}

	return lines, nil
}

type yamlIndexer struct {
	source []string
	lines  LineMap
}

// lastNonBlank returns the 1-based number of the last non-blank line in
// source[after:before], or after+1 when all are blank.
func (y *yamlIndexer) lastNonBlank(before, after int) int {
	before = min(before, len(y.source))

	for i := before - 1; i >= after && i >= 0; i-- {
		if strings.TrimSpace(y.source[i]) != "" {
			return i + 1
		}
	}

	return after + 1
}

// spanEnd computes where an entry starting at startLine ends: before the
// next sibling at nextLine, or at the parent end when nextLine is zero.
func (y *yamlIndexer) spanEnd(startLine, nextLine, parentEnd int) int {
	if nextLine > 0 {
		return y.lastNonBlank(nextLine-1, startLine-1)
	}

	return y.lastNonBlank(parentEnd, startLine-1)
}

func (y *yamlIndexer) mapping(node *yaml.Node, parent []string, parentEnd int) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Value == "<<" {
			continue
		}

		path := append(append([]string(nil), parent...), key.Value)

		nextLine := 0
		if i+2 < len(node.Content) {
			nextLine = node.Content[i+2].Line
		}

		y.entry(path, key.Line, value, nextLine, parentEnd)
	}
}

func (y *yamlIndexer) sequence(node *yaml.Node, parent []string, parentEnd int) {
	for index, item := range node.Content {
		path := append(append([]string(nil), parent...), strconv.Itoa(index))

		nextLine := 0
		if index+1 < len(node.Content) {
			nextLine = node.Content[index+1].Line
		}

		y.entry(path, item.Line, item, nextLine, parentEnd)
	}
}

func (y *yamlIndexer) entry(path []string, startLine int, value *yaml.Node, nextLine, parentEnd int) {
	if value.Kind == yaml.AliasNode && value.Alias != nil {
		value = value.Alias
	}

	switch value.Kind {
	case yaml.MappingNode:
		end := y.spanEnd(startLine, nextLine, parentEnd)
		y.lines.set(path, startLine, end)
		y.mapping(value, path, end)
	case yaml.SequenceNode:
		end := y.spanEnd(startLine, nextLine, parentEnd)
		y.lines.set(path, startLine, end)
		y.sequence(value, path, end)
	default:
		block := value.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0 || strings.Contains(value.Value, "\n")
		if value.Line == startLine && !block {
			y.lines.set(path, startLine, startLine)

			return
		}

		y.lines.set(path, startLine, y.spanEnd(startLine, nextLine, parentEnd))
	}
}
