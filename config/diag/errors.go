package diag

import (
	"fmt"
	"strings"
)

// Messages shared between extraction and enrichment.
const (
	MsgMissingField = "Missing required field"
	MsgConflict     = "Conflicting values in multiple sources"
)

const contentIndent = "       "

// Display limits how much source content an error shows per field.
type Display struct {
	MaxVisibleLines int `conf:"max_visible_lines" default:"3" validate:"min=1"`
	MaxLineLength   int `conf:"max_line_length" default:"80" validate:"min=4"`
}

// DefaultDisplay shows up to three lines of at most 80 characters.
func DefaultDisplay() Display {
	return Display{MaxVisibleLines: 3, MaxLineLength: 80}
}

func (d Display) normalized() Display {
	defaults := DefaultDisplay()

	if d.MaxVisibleLines < 1 {
		d.MaxVisibleLines = defaults.MaxVisibleLines
	}

	if d.MaxLineLength < 4 {
		d.MaxLineLength = defaults.MaxLineLength
	}

	return d
}

// FieldError is one failure of one field.
type FieldError struct {
	Path     []string        `json:"field_path"`
	Message  string          `json:"message"`
	Input    any             `json:"input_value,omitempty"`
	Location *SourceLocation `json:"location,omitempty"`
}

func (e FieldError) Error() string {
	return "[" + displayPath(e.Path) + "] " + e.Message
}

// LoadError aggregates the field errors of one failed load.
type LoadError struct {
	TypeName string
	Errors   []FieldError
	Display  Display
}

func (e *LoadError) Error() string {
	return renderReport(fmt.Sprintf("%s loading errors (%d)", e.TypeName, len(e.Errors)), e.Errors, e.Display)
}

// Unwrap exposes the field errors to errors.As.
func (e *LoadError) Unwrap() []error {
	return fieldErrors(e.Errors)
}

// Conflict is one field set by several sources under the raise-on-conflict
// strategy, with one location per contributing source.
type Conflict struct {
	Path      []string
	Locations []SourceLocation
}

// ConflictError aggregates the conflicts of one merge.
type ConflictError struct {
	TypeName  string
	Conflicts []Conflict
	Display   Display
}

func (e *ConflictError) Error() string {
	display := e.Display.normalized()

	var builder strings.Builder

	fmt.Fprintf(&builder, "%s merge conflicts (%d)\n", e.TypeName, len(e.Conflicts))

	for _, conflict := range e.Conflicts {
		builder.WriteString("\n  [" + displayPath(conflict.Path) + "]  " + MsgConflict + "\n")

		for i, location := range conflict.Locations {
			branch, rest := "├── ", "│   "
			if i == len(conflict.Locations)-1 {
				branch, rest = "└── ", "    "
			}

			builder.WriteString("   " + branch + location.pointer() + "\n")

			for _, line := range visibleLines(location.Content, display) {
				builder.WriteString("   " + rest + line + "\n")
			}
		}
	}

	return builder.String()
}

// ExpandError aggregates environment variable references that could not be
// resolved.
type ExpandError struct {
	TypeName string
	Errors   []FieldError
	Display  Display
}

func (e *ExpandError) Error() string {
	return renderReport(fmt.Sprintf("%s environment expansion errors (%d)", e.TypeName, len(e.Errors)), e.Errors, e.Display)
}

// Unwrap exposes the field errors to errors.As.
func (e *ExpandError) Unwrap() []error {
	return fieldErrors(e.Errors)
}

func fieldErrors(errs []FieldError) []error {
	unwrapped := make([]error, len(errs))
	for i, err := range errs {
		unwrapped[i] = err
	}

	return unwrapped
}

func renderReport(header string, errs []FieldError, display Display) string {
	display = display.normalized()

	var builder strings.Builder

	builder.WriteString(header + "\n")

	for _, err := range errs {
		builder.WriteString("\n  [" + displayPath(err.Path) + "]  " + err.Message + "\n")

		if err.Location == nil {
			continue
		}

		builder.WriteString("   └── " + err.Location.pointer() + "\n")

		for _, line := range visibleLines(err.Location.Content, display) {
			builder.WriteString(contentIndent + line + "\n")
		}
	}

	return builder.String()
}

// pointer renders the one-line source reference.
func (l SourceLocation) pointer() string {
	switch l.SourceType {
	case KindEnv:
		return fmt.Sprintf("ENV '%s'", l.EnvVar)
	case KindEnvFile:
		return fmt.Sprintf("ENV FILE '%s', var '%s'", l.FilePath, l.EnvVar)
	}

	pointer := fmt.Sprintf("FILE '%s'", l.FilePath)
	if l.LineRange != nil {
		pointer += ", " + l.LineRange.String()
	}

	return pointer
}

// visibleLines truncates long lines and, past the line limit, keeps the
// first lines followed by an ellipsis.
func visibleLines(lines []string, display Display) []string {
	if len(lines) > display.MaxVisibleLines {
		visible := make([]string, 0, display.MaxVisibleLines)
		for _, line := range lines[:max(display.MaxVisibleLines-1, 1)] {
			visible = append(visible, truncate(line, display.MaxLineLength))
		}

		return append(visible, "...")
	}

	visible := make([]string, len(lines))
	for i, line := range lines {
		visible[i] = truncate(line, display.MaxLineLength)
	}

	return visible
}

func truncate(line string, limit int) string {
	runes := []rune(line)
	if len(runes) <= limit {
		return line
	}

	return string(runes[:limit-3]) + "..."
}

func displayPath(path []string) string {
	if len(path) == 0 {
		return "<root>"
	}

	return strings.Join(path, ".")
}
