package mapper

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

//nolint:gochecknoglobals // validator caches struct metadata and is safe for concurrent use.
var structValidator = validator.New(validator.WithRequiredStructEnabled())

// validate runs the `validate` struct tags of target and addresses every
// failure by source keys.
func (d *decoder) validate(target any, schema *Schema) error {
	err := structValidator.Struct(target)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return &Group{Errors: []error{&ValidationError{Msg: err.Error()}}}
	}

	group := &Group{}

	for _, fieldError := range fieldErrors {
		group.Errors = append(group.Errors, &ValidationError{
			Trail: d.namespaceTrail(fieldError.StructNamespace(), schema),
			Tag:   fieldError.Tag(),
			Msg:   validationMessage(fieldError),
			Input: fieldError.Value(),
		})
	}

	return group
}

// namespaceTrail converts a validator namespace such as
// "Config.Servers[0].Port" into source keys such as [servers 0 port].
func (d *decoder) namespaceTrail(namespace string, schema *Schema) Trail {
	parts := strings.Split(namespace, ".")
	if len(parts) > 0 {
		parts = parts[1:]
	}

	var trail Trail

	current := schema

	for _, part := range parts {
		name, indices := splitIndices(part)

		if current == nil {
			trail = append(trail, name)
			trail = append(trail, indices...)

			continue
		}

		field, ok := current.Field(name)
		if !ok {
			if structField, found := current.Type.FieldByName(name); found && structField.Anonymous {
				continue
			}

			trail = append(trail, name)
			trail = append(trail, indices...)
			current = nil

			continue
		}

		trail = append(trail, field.Key)
		trail = append(trail, indices...)

		if len(indices) == 0 {
			current = field.Nested

			continue
		}

		current = d.indexedSchema(field.Type, len(indices))
	}

	return trail
}

func (d *decoder) indexedSchema(typ reflect.Type, depth int) *Schema {
	for range depth {
		for typ.Kind() == reflect.Pointer {
			typ = typ.Elem()
		}

		switch typ.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			typ = typ.Elem()
		default:
			return nil
		}
	}

	record, ok := directRecord(typ)
	if !ok {
		return nil
	}

	schema, err := d.elementSchema(record)
	if err != nil {
		return nil
	}

	return schema
}

// splitIndices splits "Servers[0][1]" into "Servers" and ["0", "1"].
func splitIndices(part string) (string, []string) {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		return part, nil
	}

	name := part[:open]

	var indices []string

	for rest := part[open:]; strings.HasPrefix(rest, "["); {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}

		indices = append(indices, rest[1:end])
		rest = rest[end+1:]
	}

	return name, indices
}

func validationMessage(fieldError validator.FieldError) string {
	param := fieldError.Param()

	switch fieldError.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return fmt.Sprintf("Must be at least %s%s", param, sizeUnit(fieldError))
	case "max":
		return fmt.Sprintf("Must be at most %s%s", param, sizeUnit(fieldError))
	case "len":
		return fmt.Sprintf("Must be exactly %s%s", param, sizeUnit(fieldError))
	case "gte":
		return "Must be greater than or equal to " + param
	case "lte":
		return "Must be less than or equal to " + param
	case "gt":
		return "Must be greater than " + param
	case "lt":
		return "Must be less than " + param
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "email":
		return "Must be a valid email address"
	case "url":
		return "Must be a valid URL"
	case "hostname":
		return "Must be a valid hostname"
	case "ip":
		return "Must be a valid IP address"
	default:
		return fmt.Sprintf("Failed '%s' validation", fieldError.Tag())
	}
}

func sizeUnit(fieldError validator.FieldError) string {
	switch fieldError.Kind() {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	default:
		return ""
	}
}
