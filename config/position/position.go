package position

import (
	"errors"
	"strconv"
	"strings"
)

// ErrMalformed is returned when content cannot be scanned.
var ErrMalformed = errors.New("malformed content")

// LineRange is an inclusive, 1-based span of lines.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether the two ranges share a line.
func (r LineRange) Overlaps(other LineRange) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// String renders "line N" or "line N-M".
func (r LineRange) String() string {
	if r.Start == r.End {
		return "line " + strconv.Itoa(r.Start)
	}

	return "line " + strconv.Itoa(r.Start) + "-" + strconv.Itoa(r.End)
}

// Finder locates the lines that produced a field.
type Finder interface {
	Find(path []string) (LineRange, bool)
}

// LineMap maps field paths to line ranges.
type LineMap map[string]LineRange

func mapKey(path []string) string {
	return strings.Join(path, "\x00")
}

// Find implements Finder.
func (m LineMap) Find(path []string) (LineRange, bool) {
	lineRange, ok := m[mapKey(path)]

	return lineRange, ok
}

func (m LineMap) set(path []string, start, end int) {
	if end < start {
		end = start
	}

	m[mapKey(path)] = LineRange{Start: start, End: end}
}

// Indexer builds a Finder from file content.
type Indexer func(content []byte) (Finder, error)

// ForFormat returns the indexer of a file format, or nil when the format
// has no line structure to index.
func ForFormat(format string) Indexer {
	switch format {
	case "json":
		return func(content []byte) (Finder, error) { return JSON(content) }
	case "json5":
		return func(content []byte) (Finder, error) { return JSON5(content) }
	case "toml":
		return func(content []byte) (Finder, error) { return TOML(content) }
	case "yaml":
		return func(content []byte) (Finder, error) { return YAML(content) }
	case "ini":
		return func(content []byte) (Finder, error) { return INI(content) }
	default:
		return nil
	}
}
