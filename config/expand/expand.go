package expand

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/0xalexb/hjarta-config/config/merge"
)

// ErrUnknownMode is returned when parsing an unsupported mode name.
var ErrUnknownMode = errors.New("unknown expansion mode")

// Mode selects what happens to environment variable references.
type Mode string

const (
	// Default replaces set variables and keeps unresolved references as written.
	Default Mode = "default"
	// Disabled leaves every value untouched.
	Disabled Mode = "disabled"
	// Empty replaces unresolved references with an empty string.
	Empty Mode = "empty"
	// Strict reports every unresolved reference as an error.
	Strict Mode = "strict"
)

// ParseMode parses a mode name. The empty string is Default.
func ParseMode(name string) (Mode, error) {
	switch mode := Mode(strings.ToLower(name)); mode {
	case "":
		return Default, nil
	case Default, Disabled, Empty, Strict:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}

	*m = mode

	return nil
}

//nolint:gochecknoglobals // compiled once.
var reference = regexp.MustCompile(`\$\$|\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// Missing is one unresolved reference.
type Missing struct {
	Path []string
	Var  string
}

// MissingError lists the unresolved references found in Strict mode.
type MissingError struct {
	Missing []Missing
}

func (e *MissingError) Error() string {
	names := make([]string, len(e.Missing))
	for i, missing := range e.Missing {
		names[i] = fmt.Sprintf("%s (%s)", missing.Var, merge.JoinPath(missing.Path))
	}

	return "missing environment variables: " + strings.Join(names, ", ")
}

// Lookup resolves one variable.
type Lookup func(name string) (string, bool)

// Tree expands references in every string leaf of tree and returns a copy.
// A nil lookup reads the process environment. In Strict mode the returned
// error is a *MissingError listing every unresolved reference with the path
// of its value.
func Tree(tree any, mode Mode, lookup Lookup) (any, error) {
	if mode == Disabled {
		return tree, nil
	}

	if lookup == nil {
		lookup = os.LookupEnv
	}

	expander := treeExpander{mode: mode, lookup: lookup}
	expanded := expander.node(tree, nil)

	if len(expander.missing) > 0 {
		sort.SliceStable(expander.missing, func(i, j int) bool {
			return merge.JoinPath(expander.missing[i].Path) < merge.JoinPath(expander.missing[j].Path)
		})

		return expanded, &MissingError{Missing: expander.missing}
	}

	return expanded, nil
}

// String expands the references of one value.
func String(value string, mode Mode, lookup Lookup) (string, error) {
	expanded, err := Tree(value, mode, lookup)
	if err != nil {
		return value, err
	}

	return expanded.(string), nil //nolint:forcetypeassert // strings expand to strings
}

type treeExpander struct {
	mode    Mode
	lookup  Lookup
	missing []Missing
}

func (e *treeExpander) node(tree any, path []string) any {
	switch node := tree.(type) {
	case map[string]any:
		expanded := make(map[string]any, len(node))
		for key, value := range node {
			expanded[key] = e.node(value, append(append([]string(nil), path...), key))
		}

		return expanded
	case []any:
		expanded := make([]any, len(node))
		for i, value := range node {
			expanded[i] = e.node(value, append(append([]string(nil), path...), fmt.Sprint(i)))
		}

		return expanded
	case string:
		return e.text(node, path)
	default:
		return tree
	}
}

func (e *treeExpander) text(value string, path []string) string {
	if !strings.Contains(value, "$") {
		return value
	}

	return reference.ReplaceAllStringFunc(value, func(match string) string {
		if match == "$$" {
			return "$"
		}

		groups := reference.FindStringSubmatch(match)

		name := groups[1]
		if name == "" {
			name = groups[4]
		}

		resolved, ok := e.lookup(name)
		if ok && (resolved != "" || groups[2] == "") {
			return resolved
		}

		if groups[2] != "" {
			return groups[3]
		}

		switch e.mode {
		case Empty:
			return ""
		case Strict:
			e.missing = append(e.missing, Missing{Path: path, Var: name})

			return match
		default:
			return match
		}
	})
}
