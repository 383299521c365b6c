package masking

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/0xalexb/hjarta-config/config/merge"
)

// Detector flags strings that look like generated tokens.
type Detector interface {
	IsRandom(value string) bool
}

// Masker redacts secret values. A Masker is immutable and safe for
// concurrent use.
type Masker struct {
	opts     Options
	detector Detector
}

// New creates a Masker. A nil detector disables the random-string heuristic.
func New(opts Options, detector Detector) *Masker {
	if opts.MaskChar == "" {
		opts.MaskChar = DefaultOptions().MaskChar
	}

	return &Masker{opts: opts, detector: detector}
}

// Default returns a Masker with DefaultOptions and the entropy heuristic.
func Default() *Masker {
	return New(DefaultOptions(), EntropyDetector{})
}

// Options returns the options the Masker was created with.
func (m *Masker) Options() Options {
	return m.opts
}

// Enabled reports whether secrets are redacted at all.
func (m *Masker) Enabled() bool {
	return m.opts.MaskSecrets
}

// Value redacts one string. Short values become a fixed mask; longer ones
// keep a few characters at each end around the fixed mask.
func (m *Masker) Value(value string) string {
	fullMask := strings.Repeat(m.opts.MaskChar, m.opts.FixedMaskLength)

	runes := []rune(value)
	if len(runes) < m.opts.MinLengthForPartialMask {
		return fullMask
	}

	visible := min(m.opts.MinVisibleChars, len(runes))

	return string(runes[:visible]) + fullMask + string(runes[len(runes)-visible:])
}

// Any redacts an arbitrary value by its text form.
func (m *Masker) Any(value any) any {
	if !m.opts.MaskSecrets || value == nil {
		return value
	}

	if node, ok := value.(map[string]any); ok {
		return m.Tree(node, Everything{})
	}

	return m.Value(Stringify(value))
}

// Tree returns a redacted copy of tree. Values at secret paths are masked,
// mappings under them recursively. Other strings are masked only when the
// detector flags them. List items are addressed by their index.
func (m *Masker) Tree(tree any, secrets PathSet) any {
	if !m.opts.MaskSecrets {
		return tree
	}

	return m.tree(tree, secrets, "")
}

func (m *Masker) tree(tree any, secrets PathSet, prefix string) any {
	switch node := tree.(type) {
	case map[string]any:
		masked := make(map[string]any, len(node))

		for key, value := range node {
			masked[key] = m.child(value, secrets, joinSegment(prefix, key))
		}

		return masked
	case []any:
		masked := make([]any, len(node))
		for i, item := range node {
			masked[i] = m.child(item, secrets, joinSegment(prefix, strconv.Itoa(i)))
		}

		return masked
	default:
		return tree
	}
}

func (m *Masker) child(value any, secrets PathSet, path string) any {
	if secrets.Has(path) {
		switch typed := value.(type) {
		case string:
			return m.Value(typed)
		case map[string]any:
			return m.tree(typed, Everything{}, path)
		case nil:
			return nil
		default:
			return m.Value(Stringify(typed))
		}
	}

	switch typed := value.(type) {
	case map[string]any, []any:
		return m.tree(typed, secrets, path)
	case string:
		if m.IsRandom(typed) {
			return m.Value(typed)
		}

		return typed
	default:
		return value
	}
}

// IsRandom applies the detector to strings long enough to be tokens.
func (m *Masker) IsRandom(value string) bool {
	if m.detector == nil || len([]rune(value)) < m.opts.MinHeuristicLength {
		return false
	}

	return m.detector.IsRandom(value)
}

// EnvLine masks the value part of a KEY=VALUE or KEY: VALUE line, keeping
// the key, the separator, leading spaces and surrounding quotes.
func (m *Masker) EnvLine(line string) string {
	if !m.opts.MaskSecrets {
		return line
	}

	for _, separator := range []string{"=", ":"} {
		if key, raw, found := strings.Cut(line, separator); found {
			return key + separator + m.rawValue(raw)
		}
	}

	return m.Value(line)
}

func (m *Masker) rawValue(raw string) string {
	stripped := strings.TrimLeft(raw, " ")
	leading := raw[:len(raw)-len(stripped)]

	for _, quote := range []string{`"`, `'`} {
		if !strings.HasPrefix(stripped, quote) {
			continue
		}

		end := strings.Index(stripped[1:], quote)
		if end < 0 {
			continue
		}

		inner := stripped[1 : end+1]
		suffix := stripped[end+2:]

		if !isTrailer(suffix) {
			break
		}

		return leading + quote + m.Value(inner) + quote + suffix
	}

	return leading + m.Value(stripped)
}

// isTrailer reports whether text after a closing quote holds no other value:
// only blanks, commas and a comment.
func isTrailer(suffix string) bool {
	rest := strings.TrimLeft(suffix, " \t,")

	return rest == "" || strings.HasPrefix(rest, "#") || strings.HasPrefix(rest, ";") || strings.HasPrefix(rest, "//")
}

// Origins returns a copy of origins with the values of secret keys masked.
func (m *Masker) Origins(origins []merge.FieldOrigin, secrets PathSet) []merge.FieldOrigin {
	result := make([]merge.FieldOrigin, len(origins))
	copy(result, origins)

	if !m.opts.MaskSecrets {
		return result
	}

	for i, origin := range result {
		switch {
		case secrets.Has(origin.Key):
			result[i].Value = m.Value(Stringify(origin.Value))
		default:
			result[i].Value = m.child(origin.Value, secrets, origin.Key)
		}
	}

	return result
}

// Sources returns a copy of entries with their raw data masked.
func (m *Masker) Sources(entries []merge.SourceEntry, secrets PathSet) []merge.SourceEntry {
	result := make([]merge.SourceEntry, len(entries))
	for i, entry := range entries {
		entry.RawData = m.Tree(entry.RawData, secrets)
		result[i] = entry
	}

	return result
}

// Stringify renders a value-tree node as text: strings as is, everything
// else as JSON.
func Stringify(value any) string {
	if text, ok := value.(string); ok {
		return text
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}

	return string(encoded)
}
