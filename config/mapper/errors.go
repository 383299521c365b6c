package mapper

import (
	"fmt"
	"strings"
)

// Trail is the sequence of keys and list indices leading from the enclosing
// error to the failing value.
type Trail []string

func (t *Trail) prepend(segment string) {
	*t = append([]string{segment}, *t...)
}

type trailed interface {
	prependTrail(segment string)
}

// Group collects the failures found below one position of the value tree.
type Group struct {
	Trail  Trail
	Errors []error
}

func (g *Group) Error() string {
	messages := make([]string, 0, len(g.Errors))
	for _, err := range g.Errors {
		messages = append(messages, err.Error())
	}

	return fmt.Sprintf("%d decoding error(s): %s", g.count(), strings.Join(messages, "; "))
}

// Unwrap exposes the member errors to errors.Is and errors.As.
func (g *Group) Unwrap() []error {
	return g.Errors
}

func (g *Group) count() int {
	total := 0

	for _, err := range g.Errors {
		if nested, ok := err.(*Group); ok {
			total += nested.count()

			continue
		}

		total++
	}

	return total
}

func (g *Group) prependTrail(segment string) { g.Trail.prepend(segment) }

// MissingFieldsError lists the required keys absent from one record.
type MissingFieldsError struct {
	Trail  Trail
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Missing required field(s): " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) prependTrail(segment string) { e.Trail.prepend(segment) }

// TypeError reports a value whose shape cannot be converted to the field type.
type TypeError struct {
	Trail    Trail
	Expected []string
	Got      string
	Input    any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("Expected %s, got %s", strings.Join(e.Expected, " | "), e.Got)
}

func (e *TypeError) prependTrail(segment string) { e.Trail.prepend(segment) }

// ValueError reports a value of the right shape that could not be converted,
// such as a string that does not parse as a number.
type ValueError struct {
	Trail Trail
	Msg   string
	Input any
}

func (e *ValueError) Error() string {
	return e.Msg
}

func (e *ValueError) prependTrail(segment string) { e.Trail.prepend(segment) }

// ValidationError reports a failed `validate` struct tag.
type ValidationError struct {
	Trail Trail
	Tag   string
	Msg   string
	Input any
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) prependTrail(segment string) { e.Trail.prepend(segment) }

// ExtraFieldsError lists keys of one record that map to no field.
type ExtraFieldsError struct {
	Trail  Trail
	Fields []string
}

func (e *ExtraFieldsError) Error() string {
	return "Unknown field(s): " + strings.Join(e.Fields, ", ")
}

func (e *ExtraFieldsError) prependTrail(segment string) { e.Trail.prepend(segment) }

// BadVariantError reports a value outside an enumeration.
type BadVariantError struct {
	Trail   Trail
	Input   any
	Allowed []string
}

func (e *BadVariantError) Error() string {
	return fmt.Sprintf("Invalid variant: %q", fmt.Sprint(e.Input))
}

func (e *BadVariantError) prependTrail(segment string) { e.Trail.prepend(segment) }

// withTrail places err one level deeper, under segment.
func withTrail(err error, segment string) error {
	if node, ok := err.(trailed); ok {
		node.prependTrail(segment)

		return err
	}

	return &Group{Trail: Trail{segment}, Errors: []error{err}}
}
