package ini

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/0xalexb/hjarta-config/config/parser"
)

// Parser implements config.Parser for INI documents.
type Parser struct{}

// NewParser creates a new INI parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes INI data into a value tree and assigns the subtree at the
// dot-separated path to the target.
//
// Section and option names are lower-cased. A dotted section name nests:
// [db.primary] becomes db -> primary. Options before the first section sit
// at the root. Indented lines continue the previous value. All values are
// strings.
func (p *Parser) Parse(data []byte, target any, path string) error {
	file, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:                true,
		AllowPythonMultilineValues: true,
		SpaceBeforeInlineComment:   true,
	}, data)
	if err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}

	root := map[string]any{}

	for _, section := range file.Sections() {
		node := root

		if !strings.EqualFold(section.Name(), ini.DefaultSection) {
			node = sectionNode(root, strings.Split(section.Name(), "."))
		}

		for _, key := range section.Keys() {
			if _, isSection := node[key.Name()].(map[string]any); isSection {
				continue
			}

			node[key.Name()] = key.String()
		}
	}

	tree, err := parser.Navigate(root, path)
	if err != nil {
		return err
	}

	return parser.Assign(tree, target)
}

// sectionNode returns the mapping for a section path, creating it. A
// section replaces a plain option of the same name.
func sectionNode(root map[string]any, path []string) map[string]any {
	node := root

	for _, segment := range path {
		child, ok := node[segment].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[segment] = child
		}

		node = child
	}

	return node
}

// Format returns the format name the loader uses for line lookups.
func (p *Parser) Format() string {
	return "ini"
}
