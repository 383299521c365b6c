package merge

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ErrUnknownFieldRule is returned when a field rule name cannot be parsed.
var ErrUnknownFieldRule = errors.New("unknown field rule")

// FieldRule overrides the strategy for a single dot-path.
type FieldRule int

const (
	// FieldLastWins takes the value of the last source that sets the path.
	FieldLastWins FieldRule = iota
	// FieldFirstWins takes the value of the first source that sets the path.
	FieldFirstWins
	// FieldAppend concatenates list values in source order.
	FieldAppend
	// FieldAppendUnique concatenates list values in source order, dropping repeats.
	FieldAppendUnique
	// FieldPrepend concatenates list values in reverse source order.
	FieldPrepend
)

// String returns the canonical name of the rule.
func (r FieldRule) String() string {
	switch r {
	case FieldLastWins:
		return "last_wins"
	case FieldFirstWins:
		return "first_wins"
	case FieldAppend:
		return "append"
	case FieldAppendUnique:
		return "append_unique"
	case FieldPrepend:
		return "prepend"
	default:
		return fmt.Sprintf("field_rule(%d)", int(r))
	}
}

// ParseFieldRule converts a rule name into a FieldRule.
func ParseFieldRule(name string) (FieldRule, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "last_wins":
		return FieldLastWins, nil
	case "first_wins":
		return FieldFirstWins, nil
	case "append":
		return FieldAppend, nil
	case "append_unique":
		return FieldAppendUnique, nil
	case "prepend":
		return FieldPrepend, nil
	default:
		return FieldLastWins, fmt.Errorf("%w: %q", ErrUnknownFieldRule, name)
	}
}

// ApplyRules rewrites merged at every rule path using the per-source values
// found in trees. Paths no source sets are left alone.
func ApplyRules(merged any, trees []any, rules map[string]FieldRule) any {
	paths := make([]string, 0, len(rules))
	for path := range rules {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	result := merged

	for _, dotPath := range paths {
		path := SplitPath(dotPath)

		var values []any

		for _, tree := range trees {
			if value, ok := Lookup(tree, path); ok {
				values = append(values, value)
			}
		}

		if len(values) == 0 {
			continue
		}

		result = Set(result, path, combine(values, rules[dotPath]))
	}

	return result
}

// Covers reports whether dotPath equals a rule path or lies beneath one.
func Covers(rules map[string]FieldRule, dotPath string) bool {
	for rulePath := range rules {
		if dotPath == rulePath || strings.HasPrefix(dotPath, rulePath+".") {
			return true
		}
	}

	return false
}

func combine(values []any, rule FieldRule) any {
	switch rule {
	case FieldFirstWins:
		return values[0]
	case FieldAppend:
		return concat(values)
	case FieldAppendUnique:
		return unique(concat(values))
	case FieldPrepend:
		reversed := make([]any, len(values))
		for i, value := range values {
			reversed[len(values)-1-i] = value
		}

		return concat(reversed)
	default:
		return values[len(values)-1]
	}
}

func concat(values []any) []any {
	var result []any

	for _, value := range values {
		if list, ok := value.([]any); ok {
			result = append(result, list...)

			continue
		}

		result = append(result, value)
	}

	if result == nil {
		result = []any{}
	}

	return result
}

func unique(values []any) []any {
	result := make([]any, 0, len(values))

	for _, value := range values {
		duplicate := false

		for _, kept := range result {
			if reflect.DeepEqual(kept, value) {
				duplicate = true

				break
			}
		}

		if !duplicate {
			result = append(result, value)
		}
	}

	return result
}
