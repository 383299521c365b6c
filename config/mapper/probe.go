package mapper

import (
	"errors"
	"reflect"
	"sort"
	"strings"
)

// Walk visits every leaf failure of err depth-first with its full path.
// Groups contribute their trails; the leaf's own trail is included.
func Walk(err error, visit func(path []string, leaf error)) {
	walk(err, nil, visit)
}

func walk(err error, prefix []string, visit func(path []string, leaf error)) {
	group, ok := err.(*Group) //nolint:errorlint // only direct groups are expanded
	if !ok {
		visit(append(cloneTrail(prefix), leafTrail(err)...), err)

		return
	}

	path := append(cloneTrail(prefix), group.Trail...)
	for _, member := range group.Errors {
		walk(member, path, visit)
	}
}

func cloneTrail(trail []string) []string {
	return append([]string(nil), trail...)
}

func leafTrail(err error) Trail {
	switch leaf := err.(type) { //nolint:errorlint // leaves are never wrapped
	case *MissingFieldsError:
		return leaf.Trail
	case *TypeError:
		return leaf.Trail
	case *ValueError:
		return leaf.Trail
	case *ValidationError:
		return leaf.Trail
	case *ExtraFieldsError:
		return leaf.Trail
	case *BadVariantError:
		return leaf.Trail
	default:
		return nil
	}
}

// Probe reports the dot-paths of values in tree that cannot be coerced to
// the fields of typ. Missing and unknown keys are not coercion failures.
func Probe(tree any, typ reflect.Type, naming Naming) ([]string, error) {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	target := reflect.New(typ)

	err := Decode(tree, target.Interface(), Options{Naming: naming, SkipValidation: true})
	if err == nil {
		return nil, nil
	}

	var group *Group
	if !errors.As(err, &group) {
		return nil, err
	}

	var invalid []string

	Walk(group, func(path []string, leaf error) {
		switch leaf.(type) { //nolint:errorlint // leaves are never wrapped
		case *TypeError, *ValueError, *BadVariantError:
			if len(path) > 0 {
				invalid = append(invalid, strings.Join(path, "."))
			}
		}
	})

	sort.Strings(invalid)

	return invalid, nil
}

// FilterInvalid returns tree without the values Probe rejects, and the
// dot-paths that were removed. A failure inside a list removes the whole
// list, since list items cannot be dropped without shifting the others.
func FilterInvalid(tree any, typ reflect.Type, naming Naming) (any, []string, error) {
	invalid, err := Probe(tree, typ, naming)
	if err != nil || len(invalid) == 0 {
		return tree, nil, err
	}

	removed := make([]string, 0, len(invalid))
	seen := make(map[string]bool, len(invalid))

	for _, dotPath := range invalid {
		path := removablePath(tree, strings.Split(dotPath, "."))
		if len(path) == 0 {
			continue
		}

		key := strings.Join(path, ".")
		if seen[key] {
			continue
		}

		seen[key] = true
		removed = append(removed, key)
		tree = without(tree, path)
	}

	return tree, removed, nil
}

// removablePath trims path to the deepest mapping key not inside a list.
func removablePath(tree any, path []string) []string {
	current := tree

	for depth, segment := range path {
		switch node := current.(type) {
		case map[string]any:
			current = node[segment]
		case []any:
			return path[:depth]
		default:
			return path[:depth]
		}
	}

	return path
}

// without returns a copy of tree with the key at path deleted.
func without(tree any, path []string) any {
	node, ok := tree.(map[string]any)
	if !ok || len(path) == 0 {
		return tree
	}

	result := make(map[string]any, len(node))
	for key, value := range node {
		result[key] = value
	}

	if len(path) == 1 {
		delete(result, path[0])

		return result
	}

	if child, exists := node[path[0]]; exists {
		result[path[0]] = without(child, path[1:])
	}

	return result
}
