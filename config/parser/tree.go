package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/0xalexb/hjarta-config/config/mapper"
)

var (
	// ErrPathNotFound is returned when a prefix does not exist in the document.
	ErrPathNotFound = errors.New("path not found")
	// ErrNotMapping is returned when a prefix crosses a value that is not a mapping.
	ErrNotMapping = errors.New("value is not a mapping")
)

// Normalize converts decoder output into a value tree of map[string]any,
// []any, string, bool, int64, float64 and nil. Times become RFC 3339
// strings and other named scalars their string form.
//
//nolint:cyclop // one branch per decoder output type.
func Normalize(value any) any {
	switch typed := value.(type) {
	case nil, string, bool, int64, float64:
		return typed
	case map[string]any:
		tree := make(map[string]any, len(typed))
		for key, child := range typed {
			tree[key] = Normalize(child)
		}

		return tree
	case map[any]any:
		tree := make(map[string]any, len(typed))
		for key, child := range typed {
			tree[fmt.Sprint(key)] = Normalize(child)
		}

		return tree
	case []any:
		list := make([]any, len(typed))
		for i, child := range typed {
			list[i] = Normalize(child)
		}

		return list
	case json.Number:
		if number, err := typed.Int64(); err == nil {
			return number
		}

		if number, err := typed.Float64(); err == nil {
			return number
		}

		return typed.String()
	case time.Time:
		return typed.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return typed.String()
	}

	return normalizeReflect(reflect.ValueOf(value))
}

func normalizeReflect(value reflect.Value) any {
	switch value.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if value.Uint() > math.MaxInt64 {
			return float64(value.Uint())
		}

		return int64(value.Uint()) //nolint:gosec // bounds checked above
	case reflect.Float32, reflect.Float64:
		return value.Float()
	case reflect.String:
		return value.String()
	case reflect.Bool:
		return value.Bool()
	case reflect.Slice, reflect.Array:
		list := make([]any, value.Len())
		for i := range list {
			list[i] = Normalize(value.Index(i).Interface())
		}

		return list
	case reflect.Map:
		tree := make(map[string]any, value.Len())
		for iter := value.MapRange(); iter.Next(); {
			tree[fmt.Sprint(iter.Key().Interface())] = Normalize(iter.Value().Interface())
		}

		return tree
	case reflect.Pointer, reflect.Interface:
		if value.IsNil() {
			return nil
		}

		return Normalize(value.Elem().Interface())
	default:
		return fmt.Sprint(value.Interface())
	}
}

// Navigate returns the subtree at a dot-separated prefix. An empty prefix
// returns tree itself.
func Navigate(tree any, prefix string) (any, error) {
	if prefix == "" {
		return tree, nil
	}

	current := tree

	for i, segment := range strings.Split(prefix, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotMapping, strings.Join(strings.Split(prefix, ".")[:i], "."))
		}

		current, ok = node[segment]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, prefix)
		}
	}

	return current, nil
}

// Assign stores tree into target. A *any receives the tree as is; any
// other target is decoded from it.
func Assign(tree any, target any) error {
	if slot, ok := target.(*any); ok {
		*slot = tree

		return nil
	}

	if err := mapper.DecodeValue(tree, target, mapper.Options{}); err != nil {
		return fmt.Errorf("decoding: %w", err)
	}

	return nil
}

// EmptyDocument reports whether data holds nothing but whitespace.
func EmptyDocument(data []byte) bool {
	return len(strings.TrimSpace(string(data))) == 0
}
