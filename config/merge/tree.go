package merge

import (
	"sort"
	"strconv"
	"strings"
)

// JoinPath renders a field path as a dot-path.
func JoinPath(path []string) string {
	return strings.Join(path, ".")
}

// SplitPath splits a dot-path into its segments. An empty dot-path has no segments.
func SplitPath(dotPath string) []string {
	if dotPath == "" {
		return nil
	}

	return strings.Split(dotPath, ".")
}

// Lookup walks tree along path. Numeric segments index into lists.
func Lookup(tree any, path []string) (any, bool) {
	current := tree

	for _, segment := range path {
		switch node := current.(type) {
		case map[string]any:
			value, ok := node[segment]
			if !ok {
				return nil, false
			}

			current = value
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return nil, false
			}

			current = node[index]
		default:
			return nil, false
		}
	}

	return current, true
}

// Set returns a copy of tree with value stored at path. Mappings along the
// path are copied, missing ones are created, and the input is left untouched.
func Set(tree any, path []string, value any) any {
	if len(path) == 0 {
		return value
	}

	node, _ := tree.(map[string]any)

	result := make(map[string]any, len(node)+1)
	for key, existing := range node {
		result[key] = existing
	}

	result[path[0]] = Set(node[path[0]], path[1:], value)

	return result
}

// Leaf is one flattened (dot-path, value) pair.
type Leaf struct {
	Key   string
	Value any
}

// Flatten lists the leaves of tree in key order. Mappings are recursed;
// lists and scalars are leaves. A non-mapping root has no leaves.
func Flatten(tree any) []Leaf {
	var leaves []Leaf

	flattenInto(tree, "", &leaves)

	return leaves
}

func flattenInto(tree any, prefix string, leaves *[]Leaf) {
	node, ok := tree.(map[string]any)
	if !ok {
		return
	}

	for _, key := range SortedKeys(node) {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		value := node[key]
		if _, isMap := value.(map[string]any); isMap {
			flattenInto(value, fullKey, leaves)

			continue
		}

		*leaves = append(*leaves, Leaf{Key: fullKey, Value: value})
	}
}

// SortedKeys returns the keys of a mapping in lexical order.
func SortedKeys(node map[string]any) []string {
	keys := make([]string, 0, len(node))
	for key := range node {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
