package mapper

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrNotStruct is returned when the decode target is not a pointer to a struct.
	ErrNotStruct = errors.New("target must be a pointer to a struct")
	// ErrUnknownField is returned when a field mapping names a field that does not exist.
	ErrUnknownField = errors.New("field path does not resolve to a struct field")
	// ErrNotPointer is returned when the decode target is not a non-nil pointer.
	ErrNotPointer = errors.New("target must be a non-nil pointer")
)

const (
	tagName        = "conf"
	defaultTagName = "default"
	optionalOption = "optional"
)

//nolint:gochecknoglobals // reflect types resolved once.
var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

// Field describes one decodable struct field.
type Field struct {
	// Name is the Go field name.
	Name string
	// Key is the source key after tags, style and mapping.
	Key        string
	Index      []int
	Type       reflect.Type
	Required   bool
	Default    string
	HasDefault bool
	// Nested is set when the field (through pointers) is itself a record.
	Nested *Schema
}

// Schema is the decoding description of a struct type.
type Schema struct {
	Type   reflect.Type
	Fields []Field
}

// Field finds a field by its Go name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}

	return Field{}, false
}

// allOptional reports whether every field can be left out of the input.
func (s *Schema) allOptional() bool {
	for _, field := range s.Fields {
		if field.Required {
			return false
		}
	}

	return true
}

type schemaKey struct {
	typ    reflect.Type
	naming string
}

//nolint:gochecknoglobals // process-wide cache of immutable schemas.
var schemaCache sync.Map

// Describe builds, or returns the cached, schema of struct type typ.
// Pointer types are dereferenced.
func Describe(typ reflect.Type, naming Naming) (*Schema, error) {
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if typ == nil || !IsRecord(typ) {
		return nil, ErrNotStruct
	}

	key := schemaKey{typ: typ, naming: naming.cacheKey()}
	if cached, ok := schemaCache.Load(key); ok {
		return cached.(*Schema), nil //nolint:forcetypeassert // only *Schema is stored
	}

	used := make(map[string]bool)

	schema := describe(typ, naming, "", used, map[reflect.Type]*Schema{})

	var unknown []string

	for path := range naming.Mapping {
		if !used[path] {
			unknown = append(unknown, path)
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)

		return nil, fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(unknown, ", "))
	}

	actual, _ := schemaCache.LoadOrStore(key, schema)

	return actual.(*Schema), nil //nolint:forcetypeassert // only *Schema is stored
}

// describe builds the schema of typ. Types already being described higher up
// the stack are reused, so self-referencing records terminate.
func describe(typ reflect.Type, naming Naming, prefix string, used map[string]bool, inProgress map[reflect.Type]*Schema) *Schema {
	if existing, ok := inProgress[typ]; ok {
		return existing
	}

	schema := &Schema{Type: typ}
	inProgress[typ] = schema

	collectFields(typ, nil, naming, prefix, used, inProgress, schema)

	delete(inProgress, typ)

	return schema
}

func collectFields(
	typ reflect.Type,
	parentIndex []int,
	naming Naming,
	prefix string,
	used map[string]bool,
	inProgress map[reflect.Type]*Schema,
	schema *Schema,
) {
	for i := range typ.NumField() {
		structField := typ.Field(i)
		index := append(append([]int(nil), parentIndex...), i)

		tag := structField.Tag.Get(tagName)
		if tag == "-" {
			continue
		}

		name, options, _ := strings.Cut(tag, ",")

		if structField.Anonymous && name == "" {
			embedded := structField.Type
			if embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}

			if IsRecord(embedded) {
				collectFields(embedded, index, naming, prefix, used, inProgress, schema)

				continue
			}
		}

		if !structField.IsExported() {
			continue
		}

		goPath := structField.Name
		if prefix != "" {
			goPath = prefix + "." + structField.Name
		}

		key := name
		if key == "" {
			key = naming.Style.Apply(structField.Name)
		}

		if mapped, ok := naming.Mapping[goPath]; ok {
			key = mapped
			used[goPath] = true
		}

		defaultValue, hasDefault := structField.Tag.Lookup(defaultTagName)

		field := Field{
			Name:       structField.Name,
			Key:        key,
			Index:      index,
			Type:       structField.Type,
			Default:    defaultValue,
			HasDefault: hasDefault,
			Required: structField.Type.Kind() != reflect.Pointer &&
				!hasDefault &&
				!hasOption(options, optionalOption),
		}

		if nested, ok := directRecord(structField.Type); ok {
			field.Nested = describe(nested, naming, goPath, used, inProgress)

			if structField.Type.Kind() == reflect.Struct && field.Nested.allOptional() {
				field.Required = false
			}
		}

		schema.Fields = append(schema.Fields, field)
	}
}

func hasOption(options, option string) bool {
	for _, candidate := range strings.Split(options, ",") {
		if strings.TrimSpace(candidate) == option {
			return true
		}
	}

	return false
}

// IsRecord reports whether typ decodes field by field: a struct that is not
// decoded from text.
func IsRecord(typ reflect.Type) bool {
	if typ.Kind() != reflect.Struct {
		return false
	}

	return !typ.Implements(textUnmarshalerType) && !reflect.PointerTo(typ).Implements(textUnmarshalerType)
}

func directRecord(typ reflect.Type) (reflect.Type, bool) {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	return typ, IsRecord(typ)
}

// Element is a record type reached through containers. Depth counts the
// slices, arrays and maps on the way, each adding one path segment.
type Element struct {
	Type  reflect.Type
	Depth int
}

// ElementRecords returns the record types reachable from typ through
// pointers, slices, arrays and map values.
func ElementRecords(typ reflect.Type) []Element {
	var records []Element

	queue := []Element{{Type: typ}}

	for len(queue) > 0 {
		current := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		if IsRecord(current.Type) {
			records = append(records, current)

			continue
		}

		switch current.Type.Kind() {
		case reflect.Pointer:
			queue = append(queue, Element{Type: current.Type.Elem(), Depth: current.Depth})
		case reflect.Slice, reflect.Array, reflect.Map:
			queue = append(queue, Element{Type: current.Type.Elem(), Depth: current.Depth + 1})
		default:
		}
	}

	return records
}
