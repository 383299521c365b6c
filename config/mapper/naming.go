package mapper

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
)

// ErrUnknownNameStyle is returned when a name style cannot be parsed.
var ErrUnknownNameStyle = errors.New("unknown name style")

// NameStyle converts Go field names into source keys.
type NameStyle string

// Supported name styles. The empty style behaves as LowerSnake.
const (
	LowerSnake NameStyle = "lower_snake"
	UpperSnake NameStyle = "upper_snake"
	LowerCamel NameStyle = "lower_camel"
	UpperCamel NameStyle = "upper_camel"
	LowerKebab NameStyle = "lower_kebab"
	UpperKebab NameStyle = "upper_kebab"
)

// ParseNameStyle validates a style name.
func ParseNameStyle(name string) (NameStyle, error) {
	style := NameStyle(strings.ToLower(strings.TrimSpace(name)))

	switch style {
	case "":
		return LowerSnake, nil
	case LowerSnake, UpperSnake, LowerCamel, UpperCamel, LowerKebab, UpperKebab:
		return style, nil
	default:
		return LowerSnake, fmt.Errorf("%w: %q", ErrUnknownNameStyle, name)
	}
}

// Apply converts a Go identifier to this style.
func (s NameStyle) Apply(name string) string {
	switch s {
	case UpperSnake:
		return strcase.ToScreamingSnake(name)
	case LowerCamel:
		return strcase.ToLowerCamel(name)
	case UpperCamel:
		return strcase.ToCamel(name)
	case LowerKebab:
		return strcase.ToKebab(name)
	case UpperKebab:
		return strcase.ToScreamingKebab(name)
	case LowerSnake, "":
		return strcase.ToSnake(name)
	default:
		return strcase.ToSnake(name)
	}
}

// Naming decides the source key of every struct field.
//
// A `conf:"name"` tag wins over Style. Mapping then overrides individual
// fields; its keys are Go field names joined by dots, e.g. "Database.Host".
type Naming struct {
	Style   NameStyle
	Mapping map[string]string
}

func (n Naming) cacheKey() string {
	if len(n.Mapping) == 0 {
		return string(n.Style)
	}

	paths := make([]string, 0, len(n.Mapping))
	for path := range n.Mapping {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	var builder strings.Builder

	builder.WriteString(string(n.Style))

	for _, path := range paths {
		builder.WriteString("\x00")
		builder.WriteString(path)
		builder.WriteString("=")
		builder.WriteString(n.Mapping[path])
	}

	return builder.String()
}
