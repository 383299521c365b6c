package masking

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/0xalexb/hjarta-config/config/fields"
	"github.com/0xalexb/hjarta-config/config/mapper"
	"github.com/0xalexb/hjarta-config/config/merge"
)

// PathSet answers whether a dot-path is secret.
type PathSet interface {
	Has(dotPath string) bool
}

// Wildcard is the path segment standing for any list index or map key.
const Wildcard = "*"

// Paths is a set of secret dot-paths. Fields inside list items and map
// values are stored with a Wildcard segment in place of the index or key.
type Paths map[string]struct{}

// NewPaths builds a set from dot-paths.
func NewPaths(dotPaths ...string) Paths {
	paths := make(Paths, len(dotPaths))
	for _, dotPath := range dotPaths {
		paths[dotPath] = struct{}{}
	}

	return paths
}

// Has reports whether dotPath is in the set, either literally or through
// Wildcard segments.
func (p Paths) Has(dotPath string) bool {
	if _, ok := p[dotPath]; ok {
		return true
	}

	var segments []string

	for member := range p {
		if !strings.Contains(member, Wildcard) {
			continue
		}

		if segments == nil {
			segments = merge.SplitPath(dotPath)
		}

		if matchSegments(merge.SplitPath(member), segments) {
			return true
		}
	}

	return false
}

// Covers reports whether the field at path is secret.
func (p Paths) Covers(path []string) bool {
	return p.Has(merge.JoinPath(path))
}

// Expand adds the concrete paths of tree that the set covers, with real
// list indices and map keys, so they can be looked up in a source file.
func (p Paths) Expand(tree any) Paths {
	expanded := p.Union(nil)
	p.expand(tree, "", expanded)

	return expanded
}

func (p Paths) expand(tree any, prefix string, expanded Paths) {
	visit := func(segment string, value any) {
		fullPath := joinSegment(prefix, segment)
		if p.Has(fullPath) {
			expanded[fullPath] = struct{}{}

			return
		}

		p.expand(value, fullPath, expanded)
	}

	switch node := tree.(type) {
	case map[string]any:
		for key, value := range node {
			visit(key, value)
		}
	case []any:
		for i, item := range node {
			visit(strconv.Itoa(i), item)
		}
	}
}

// Sorted lists the set in lexical order.
func (p Paths) Sorted() []string {
	sorted := make([]string, 0, len(p))
	for dotPath := range p {
		sorted = append(sorted, dotPath)
	}

	sort.Strings(sorted)

	return sorted
}

// Union returns a new set with the members of both.
func (p Paths) Union(other Paths) Paths {
	union := make(Paths, len(p)+len(other))
	for dotPath := range p {
		union[dotPath] = struct{}{}
	}

	for dotPath := range other {
		union[dotPath] = struct{}{}
	}

	return union
}

// Everything treats every path as secret.
type Everything struct{}

// Has always reports true.
func (Everything) Has(string) bool { return true }

func matchSegments(pattern, segments []string) bool {
	if len(pattern) != len(segments) {
		return false
	}

	for i, segment := range pattern {
		if segment != Wildcard && segment != segments[i] {
			return false
		}
	}

	return true
}

func joinSegment(prefix, segment string) string {
	if prefix == "" {
		return segment
	}

	return prefix + "." + segment
}

//nolint:gochecknoglobals // reflect types resolved once.
var secretType = reflect.TypeFor[fields.Secret]()

type secretKey struct {
	typ      reflect.Type
	naming   string
	patterns string
}

//nolint:gochecknoglobals // process-wide cache of immutable sets.
var secretCache sync.Map

// SecretPaths lists the dot-paths of typ's fields that hold secrets: fields
// whose type implements fields.Secret, and fields whose key or Go name
// contains one of patterns, case-insensitively. Nested records, including
// those reached through lists and maps, are included with a Wildcard
// segment per container; a self-referencing record is walked once. Non-struct types have no secret paths.
func SecretPaths(typ reflect.Type, naming mapper.Naming, patterns []string) Paths {
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if typ == nil || !mapper.IsRecord(typ) {
		return Paths{}
	}

	lowered := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if pattern = strings.ToLower(strings.TrimSpace(pattern)); pattern != "" {
			lowered = append(lowered, pattern)
		}
	}

	key := secretKey{typ: typ, naming: namingKey(naming), patterns: strings.Join(lowered, "\x00")}
	if cached, ok := secretCache.Load(key); ok {
		return cached.(Paths) //nolint:forcetypeassert // only Paths are stored
	}

	schema, err := mapper.Describe(typ, naming)
	if err != nil {
		return Paths{}
	}

	result := make(Paths)
	walker := secretWalker{naming: naming, patterns: lowered, result: result, active: map[reflect.Type]bool{}}
	walker.walk(schema, "")

	actual, _ := secretCache.LoadOrStore(key, result)

	return actual.(Paths) //nolint:forcetypeassert // only Paths are stored
}

func namingKey(naming mapper.Naming) string {
	keys := make([]string, 0, len(naming.Mapping))
	for goPath, alias := range naming.Mapping {
		keys = append(keys, goPath+"="+alias)
	}

	sort.Strings(keys)

	return string(naming.Style) + "\x00" + strings.Join(keys, "\x00")
}

type secretWalker struct {
	naming   mapper.Naming
	patterns []string
	result   Paths
	active   map[reflect.Type]bool
}

func (w *secretWalker) walk(schema *mapper.Schema, prefix string) {
	if w.active[schema.Type] {
		return
	}

	w.active[schema.Type] = true
	defer delete(w.active, schema.Type)

	for _, field := range schema.Fields {
		fullPath := joinSegment(prefix, field.Key)

		if isSecretType(field.Type) || w.matches(field.Key) || w.matches(field.Name) {
			w.result[fullPath] = struct{}{}
		}

		if field.Nested != nil {
			w.walk(field.Nested, fullPath)

			continue
		}

		for _, element := range mapper.ElementRecords(field.Type) {
			nested, err := mapper.Describe(element.Type, mapper.Naming{Style: w.naming.Style})
			if err != nil {
				continue
			}

			elementPath := fullPath
			for range element.Depth {
				elementPath += "." + Wildcard
			}

			w.walk(nested, elementPath)
		}
	}
}

func (w *secretWalker) matches(name string) bool {
	lower := strings.ToLower(name)

	for _, pattern := range w.patterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}

	return false
}

func isSecretType(typ reflect.Type) bool {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	return typ.Implements(secretType) || reflect.PointerTo(typ).Implements(secretType)
}

// NamePaths lists the dot-paths of tree whose last key contains one of
// patterns. It serves trees that have no record type to describe them.
func NamePaths(tree any, patterns []string) Paths {
	walker := secretWalker{result: make(Paths)}

	for _, pattern := range patterns {
		if pattern = strings.ToLower(strings.TrimSpace(pattern)); pattern != "" {
			walker.patterns = append(walker.patterns, pattern)
		}
	}

	walker.walkTree(tree, "")

	return walker.result
}

func (w *secretWalker) walkTree(tree any, prefix string) {
	switch node := tree.(type) {
	case map[string]any:
		for key, value := range node {
			fullPath := joinSegment(prefix, key)

			if w.matches(key) {
				w.result[fullPath] = struct{}{}
			}

			w.walkTree(value, fullPath)
		}
	case []any:
		for _, item := range node {
			w.walkTree(item, joinSegment(prefix, Wildcard))
		}
	}
}
