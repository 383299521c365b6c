package mapper

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

const badStringFormat = "Bad string format"

// Enumerator is implemented by string types restricted to a fixed set of values.
type Enumerator interface {
	Enum() []string
}

//nolint:gochecknoglobals // reflect types resolved once.
var (
	enumeratorType = reflect.TypeFor[Enumerator]()
	durationType   = reflect.TypeFor[time.Duration]()
)

// Options tune Decode.
type Options struct {
	Naming Naming
	// ForbidExtra reports keys that map to no field instead of ignoring them.
	ForbidExtra bool
	// SkipValidation disables the `validate` tag stage.
	SkipValidation bool
}

// Decode converts a value tree into the struct target points to.
//
// Decoding failures are returned as a *Group holding every failure found,
// each addressed by its trail. Validation runs only after a clean decode.
// Usage errors (ErrNotStruct, ErrUnknownField) are returned as is.
func Decode(tree any, target any, opts Options) error {
	value := reflect.ValueOf(target)
	if value.Kind() != reflect.Pointer || value.IsNil() || !IsRecord(value.Elem().Type()) {
		return ErrNotStruct
	}

	schema, err := Describe(value.Elem().Type(), opts.Naming)
	if err != nil {
		return err
	}

	dec := decoder{opts: opts}

	if err := dec.decodeRecord(tree, value.Elem(), schema); err != nil {
		return asGroup(err)
	}

	if opts.SkipValidation {
		return nil
	}

	return dec.validate(target, schema)
}

// DecodeValue converts a value tree into the value target points to, which
// may be of any decodable type. Records are decoded by Decode.
func DecodeValue(tree any, target any, opts Options) error {
	value := reflect.ValueOf(target)
	if value.Kind() != reflect.Pointer || value.IsNil() {
		return ErrNotPointer
	}

	if IsRecord(value.Elem().Type()) {
		return Decode(tree, target, opts)
	}

	dec := decoder{opts: opts}

	if err := dec.decodeValue(tree, value.Elem(), nil); err != nil {
		return asGroup(err)
	}

	return nil
}

func asGroup(err error) *Group {
	var group *Group
	if errors.As(err, &group) && len(group.Trail) == 0 {
		return group
	}

	return &Group{Errors: []error{err}}
}

type decoder struct {
	opts Options
}

// elementSchema describes records nested in lists and maps. Field mappings
// address direct fields only, so elements use the name style alone.
func (d *decoder) elementSchema(typ reflect.Type) (*Schema, error) {
	return Describe(typ, Naming{Style: d.opts.Naming.Style})
}

func (d *decoder) decodeRecord(input any, out reflect.Value, schema *Schema) error {
	node, ok := input.(map[string]any)
	if !ok {
		return &TypeError{Expected: []string{"map"}, Got: kindName(input), Input: input}
	}

	var (
		errs    []error
		missing []string
	)

	known := make(map[string]bool, len(schema.Fields))

	for _, field := range schema.Fields {
		known[field.Key] = true

		target := fieldByIndex(out, field.Index)

		raw, present := node[field.Key]
		if !present {
			if field.HasDefault {
				if err := d.decodeValue(field.Default, target, field.Nested); err != nil {
					errs = append(errs, withTrail(err, field.Key))
				}

				continue
			}

			if field.Required {
				missing = append(missing, field.Key)

				continue
			}

			if field.Nested != nil && field.Type.Kind() == reflect.Struct && field.Nested.allOptional() {
				if err := d.decodeRecord(map[string]any{}, target, field.Nested); err != nil {
					errs = append(errs, withTrail(err, field.Key))
				}
			}

			continue
		}

		if err := d.decodeValue(raw, target, field.Nested); err != nil {
			errs = append(errs, withTrail(err, field.Key))
		}
	}

	if d.opts.ForbidExtra {
		var extra []string

		for key := range node {
			if !known[key] {
				extra = append(extra, key)
			}
		}

		if len(extra) > 0 {
			sort.Strings(extra)
			errs = append(errs, &ExtraFieldsError{Fields: extra})
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		errs = append(errs, &MissingFieldsError{Fields: missing})
	}

	if len(errs) == 0 {
		return nil
	}

	return &Group{Errors: errs}
}

// fieldByIndex walks index, allocating nil embedded pointers on the way.
func fieldByIndex(value reflect.Value, index []int) reflect.Value {
	for position, i := range index {
		if position > 0 && value.Kind() == reflect.Pointer {
			if value.IsNil() {
				value.Set(reflect.New(value.Type().Elem()))
			}

			value = value.Elem()
		}

		value = value.Field(i)
	}

	return value
}

//nolint:cyclop // one branch per target kind.
func (d *decoder) decodeValue(input any, out reflect.Value, nested *Schema) error {
	typ := out.Type()

	if typ.Kind() == reflect.Pointer {
		if input == nil {
			out.SetZero()

			return nil
		}

		ptr := reflect.New(typ.Elem())
		if err := d.decodeValue(input, ptr.Elem(), nested); err != nil {
			return err
		}

		out.Set(ptr)

		return nil
	}

	if typ.Implements(enumeratorType) && typ.Kind() == reflect.String {
		return d.decodeEnum(input, out)
	}

	if reflect.PointerTo(typ).Implements(textUnmarshalerType) {
		return decodeText(input, out)
	}

	if typ == durationType {
		return decodeDuration(input, out)
	}

	switch typ.Kind() {
	case reflect.Interface:
		return decodeAny(input, out)
	case reflect.Bool:
		return decodeBool(input, out)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decodeInt(input, out)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return decodeUint(input, out)
	case reflect.Float32, reflect.Float64:
		return decodeFloat(input, out)
	case reflect.String:
		return decodeString(input, out)
	case reflect.Slice:
		return d.decodeSlice(input, out)
	case reflect.Array:
		return d.decodeArray(input, out)
	case reflect.Map:
		return d.decodeMap(input, out)
	case reflect.Struct:
		if nested == nil {
			schema, err := d.elementSchema(typ)
			if err != nil {
				return &ValueError{Msg: err.Error(), Input: input}
			}

			nested = schema
		}

		return d.decodeRecord(input, out, nested)
	default:
		return &TypeError{Expected: []string{typ.Kind().String()}, Got: kindName(input), Input: input}
	}
}

func (d *decoder) decodeEnum(input any, out reflect.Value) error {
	text, ok := scalarText(input)
	if !ok {
		return &TypeError{Expected: []string{"string"}, Got: kindName(input), Input: input}
	}

	allowed := out.Interface().(Enumerator).Enum() //nolint:forcetypeassert // checked by the caller
	for _, candidate := range allowed {
		if candidate == text {
			out.SetString(text)

			return nil
		}
	}

	return &BadVariantError{Input: input, Allowed: allowed}
}

func decodeText(input any, out reflect.Value) error {
	text, ok := scalarText(input)
	if !ok {
		return &TypeError{Expected: []string{"string"}, Got: kindName(input), Input: input}
	}

	unmarshaler := out.Addr().Interface().(encoding.TextUnmarshaler) //nolint:forcetypeassert // checked by the caller
	if err := unmarshaler.UnmarshalText([]byte(text)); err != nil {
		return &ValueError{Msg: err.Error(), Input: input}
	}

	return nil
}

func decodeDuration(input any, out reflect.Value) error {
	if text, ok := input.(string); ok {
		duration, err := time.ParseDuration(strings.TrimSpace(text))
		if err != nil {
			return &ValueError{Msg: badStringFormat, Input: input}
		}

		out.SetInt(int64(duration))

		return nil
	}

	return decodeInt(input, out)
}

func decodeAny(input any, out reflect.Value) error {
	if input == nil {
		out.SetZero()

		return nil
	}

	value := reflect.ValueOf(input)
	if !value.Type().AssignableTo(out.Type()) {
		return &TypeError{Expected: []string{out.Type().String()}, Got: kindName(input), Input: input}
	}

	out.Set(value)

	return nil
}

func decodeBool(input any, out reflect.Value) error {
	switch value := input.(type) {
	case bool:
		out.SetBool(value)

		return nil
	case string:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "t", "true", "yes", "y", "on":
			out.SetBool(true)
		case "0", "f", "false", "no", "n", "off":
			out.SetBool(false)
		default:
			return &ValueError{Msg: badStringFormat, Input: input}
		}

		return nil
	default:
		return &TypeError{Expected: []string{"bool", "string"}, Got: kindName(input), Input: input}
	}
}

//nolint:gochecknoglobals // immutable.
var intExpected = []string{"int", "float", "string"}

func decodeInt(input any, out reflect.Value) error {
	var number int64

	switch value := normalizeNumber(input).(type) {
	case int64:
		number = value
	case uint64:
		if value > math.MaxInt64 {
			return &ValueError{Msg: "Value out of range", Input: input}
		}

		number = int64(value)
	case float64:
		if value != math.Trunc(value) {
			return &ValueError{Msg: "Value is not an integer", Input: input}
		}

		if value < math.MinInt64 || value >= math.MaxInt64 {
			return &ValueError{Msg: "Value out of range", Input: input}
		}

		number = int64(value)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return &ValueError{Msg: "Value out of range", Input: input}
			}

			return &ValueError{Msg: badStringFormat, Input: input}
		}

		number = parsed
	default:
		return &TypeError{Expected: intExpected, Got: kindName(input), Input: input}
	}

	if out.OverflowInt(number) {
		return &ValueError{Msg: "Value out of range", Input: input}
	}

	out.SetInt(number)

	return nil
}

func decodeUint(input any, out reflect.Value) error {
	var number uint64

	switch value := normalizeNumber(input).(type) {
	case int64:
		if value < 0 {
			return &ValueError{Msg: "Value out of range", Input: input}
		}

		number = uint64(value)
	case uint64:
		number = value
	case float64:
		if value != math.Trunc(value) {
			return &ValueError{Msg: "Value is not an integer", Input: input}
		}

		if value < 0 || value >= math.MaxUint64 {
			return &ValueError{Msg: "Value out of range", Input: input}
		}

		number = uint64(value)
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return &ValueError{Msg: "Value out of range", Input: input}
			}

			return &ValueError{Msg: badStringFormat, Input: input}
		}

		number = parsed
	default:
		return &TypeError{Expected: intExpected, Got: kindName(input), Input: input}
	}

	if out.OverflowUint(number) {
		return &ValueError{Msg: "Value out of range", Input: input}
	}

	out.SetUint(number)

	return nil
}

func decodeFloat(input any, out reflect.Value) error {
	var number float64

	switch value := normalizeNumber(input).(type) {
	case int64:
		number = float64(value)
	case uint64:
		number = float64(value)
	case float64:
		number = value
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return &ValueError{Msg: badStringFormat, Input: input}
		}

		number = parsed
	default:
		return &TypeError{Expected: []string{"float", "int", "string"}, Got: kindName(input), Input: input}
	}

	if out.OverflowFloat(number) {
		return &ValueError{Msg: "Value out of range", Input: input}
	}

	out.SetFloat(number)

	return nil
}

func decodeString(input any, out reflect.Value) error {
	text, ok := scalarText(input)
	if !ok {
		return &TypeError{Expected: []string{"string"}, Got: kindName(input), Input: input}
	}

	out.SetString(text)

	return nil
}

func (d *decoder) decodeSlice(input any, out reflect.Value) error {
	if input == nil {
		out.SetZero()

		return nil
	}

	if text, ok := input.(string); ok && out.Type().Elem().Kind() == reflect.Uint8 {
		out.SetBytes([]byte(text))

		return nil
	}

	items, err := listItems(input)
	if err != nil {
		return err
	}

	result := reflect.MakeSlice(out.Type(), len(items), len(items))
	if err := d.decodeItems(items, result); err != nil {
		return err
	}

	out.Set(result)

	return nil
}

func (d *decoder) decodeArray(input any, out reflect.Value) error {
	items, err := listItems(input)
	if err != nil {
		return err
	}

	if len(items) != out.Len() {
		return &ValueError{Msg: fmt.Sprintf("Expected %d items, got %d", out.Len(), len(items)), Input: input}
	}

	return d.decodeItems(items, out)
}

func (d *decoder) decodeItems(items []any, out reflect.Value) error {
	var errs []error

	for i, item := range items {
		if err := d.decodeValue(item, out.Index(i), nil); err != nil {
			errs = append(errs, withTrail(err, strconv.Itoa(i)))
		}
	}

	if len(errs) == 0 {
		return nil
	}

	return &Group{Errors: errs}
}

// listItems accepts a list, a JSON array string or a comma-separated string.
func listItems(input any) ([]any, error) {
	switch value := input.(type) {
	case []any:
		return value, nil
	case string:
		trimmed := strings.TrimSpace(value)

		if strings.HasPrefix(trimmed, "[") {
			var items []any
			if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
				return nil, &ValueError{Msg: badStringFormat, Input: input}
			}

			return items, nil
		}

		if trimmed == "" {
			return []any{}, nil
		}

		parts := strings.Split(trimmed, ",")

		items := make([]any, 0, len(parts))
		for _, part := range parts {
			items = append(items, strings.TrimSpace(part))
		}

		return items, nil
	default:
		return nil, &TypeError{Expected: []string{"list"}, Got: kindName(input), Input: input}
	}
}

func (d *decoder) decodeMap(input any, out reflect.Value) error {
	if input == nil {
		out.SetZero()

		return nil
	}

	node, ok := input.(map[string]any)
	if text, isText := input.(string); isText && strings.HasPrefix(strings.TrimSpace(text), "{") {
		if err := json.Unmarshal([]byte(text), &node); err != nil {
			return &ValueError{Msg: badStringFormat, Input: input}
		}

		ok = true
	}

	if !ok {
		return &TypeError{Expected: []string{"map"}, Got: kindName(input), Input: input}
	}

	typ := out.Type()
	result := reflect.MakeMapWithSize(typ, len(node))

	var errs []error

	for _, key := range sortedKeys(node) {
		keyValue := reflect.New(typ.Key()).Elem()
		if err := d.decodeValue(key, keyValue, nil); err != nil {
			errs = append(errs, withTrail(err, key))

			continue
		}

		itemValue := reflect.New(typ.Elem()).Elem()
		if err := d.decodeValue(node[key], itemValue, nil); err != nil {
			errs = append(errs, withTrail(err, key))

			continue
		}

		result.SetMapIndex(keyValue, itemValue)
	}

	if len(errs) > 0 {
		return &Group{Errors: errs}
	}

	out.Set(result)

	return nil
}

func sortedKeys(node map[string]any) []string {
	keys := make([]string, 0, len(node))
	for key := range node {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// normalizeNumber folds every Go numeric type into int64, uint64 or float64.
func normalizeNumber(input any) any {
	value := reflect.ValueOf(input)

	switch value.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return value.Uint()
	case reflect.Float32, reflect.Float64:
		return value.Float()
	default:
		return input
	}
}

// scalarText renders strings, numbers and booleans as text.
func scalarText(input any) (string, bool) {
	switch value := normalizeNumber(input).(type) {
	case string:
		return value, true
	case bool:
		return strconv.FormatBool(value), true
	case int64:
		return strconv.FormatInt(value, 10), true
	case uint64:
		return strconv.FormatUint(value, 10), true
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), true
	default:
		return "", false
	}
}

// kindName names the shape of a value-tree node.
func kindName(input any) string {
	switch normalizeNumber(input).(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int64, uint64:
		return "int"
	case float64:
		return "float"
	case map[string]any:
		return "map"
	case []any:
		return "list"
	default:
		return fmt.Sprintf("%T", input)
	}
}
