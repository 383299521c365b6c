package env

import (
	"fmt"
	"slices"
	"strings"

	"github.com/joho/godotenv"

	"github.com/0xalexb/hjarta-config/config/parser"
)

// DefaultSeparator joins nested keys in variable names.
const DefaultSeparator = "__"

// Parser implements config.Parser for dotenv files.
//
// The path argument of Parse is a variable name prefix rather than a
// document path: only variables starting with it are kept, and the rest
// of each name is split on Separator into a nested key.
type Parser struct {
	Separator string
}

// NewParser creates a dotenv parser using sep to split nested keys.
func NewParser(sep string) *Parser {
	return &Parser{Separator: sep}
}

// Parse decodes dotenv data and assigns the variables selected by prefix to
// the target. References like ${VAR} inside the file are expanded by the
// dotenv reader against earlier lines of the same file.
func (p *Parser) Parse(data []byte, target any, prefix string) error {
	vars, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}

	return parser.Assign(Nest(vars, prefix, p.separator()), target)
}

func (p *Parser) separator() string {
	if p.Separator == "" {
		return DefaultSeparator
	}

	return p.Separator
}

// FromEnviron nests process environment entries in KEY=value form.
func FromEnviron(environ []string, prefix, sep string) map[string]any {
	vars := make(map[string]string, len(environ))

	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || name == "" {
			continue
		}

		vars[name] = value
	}

	return Nest(vars, prefix, sep)
}

// Nest turns flat variables into a value tree. Names must start with
// prefix, compared case-insensitively. The remainder is lower-cased and
// split on sep. When a name is both a value and a parent of other names,
// the mapping is kept.
func Nest(vars map[string]string, prefix, sep string) map[string]any {
	if sep == "" {
		sep = DefaultSeparator
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}

	slices.Sort(names)

	root := map[string]any{}
	upperPrefix := strings.ToUpper(prefix)

	for _, name := range names {
		if !strings.HasPrefix(strings.ToUpper(name), upperPrefix) {
			continue
		}

		key := strings.ToLower(name[len(prefix):])
		if key == "" {
			continue
		}

		insert(root, splitKey(key, strings.ToLower(sep)), vars[name])
	}

	return root
}

func splitKey(key, sep string) []string {
	segments := make([]string, 0, strings.Count(key, sep)+1)

	for _, segment := range strings.Split(key, sep) {
		if segment != "" {
			segments = append(segments, segment)
		}
	}

	return segments
}

func insert(root map[string]any, path []string, value string) {
	if len(path) == 0 {
		return
	}

	node := root

	for _, segment := range path[:len(path)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[segment] = child
		}

		node = child
	}

	last := path[len(path)-1]
	if _, isMapping := node[last].(map[string]any); isMapping {
		return
	}

	node[last] = value
}

// Format returns the format name the loader uses for line lookups.
func (p *Parser) Format() string {
	return "envfile"
}
