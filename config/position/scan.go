package position

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// cursor walks source text by byte offset and answers line numbers.
type cursor struct {
	src        []byte
	pos        int
	lineStarts []int
}

func newCursor(src []byte) *cursor {
	starts := []int{0}

	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}

	return &cursor{src: src, lineStarts: starts}
}

// lineOf returns the 1-based line holding offset.
func (c *cursor) lineOf(offset int) int {
	return sort.Search(len(c.lineStarts), func(i int) bool { return c.lineStarts[i] > offset })
}

// line is the line of the current position.
func (c *cursor) line() int {
	return c.lineOf(c.pos)
}

// lastLine is the line of the last consumed byte.
func (c *cursor) lastLine() int {
	return c.lineOf(max(c.pos-1, 0))
}

func (c *cursor) eof() bool {
	return c.pos >= len(c.src)
}

func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}

	return c.src[c.pos]
}

func (c *cursor) hasPrefix(prefix string) bool {
	return strings.HasPrefix(string(c.src[c.pos:min(c.pos+len(prefix), len(c.src))]), prefix)
}

func (c *cursor) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformed, c.line(), fmt.Sprintf(format, args...))
}

func (c *cursor) expect(b byte) error {
	if c.peek() != b {
		return c.errorf("expected %q", b)
	}

	c.pos++

	return nil
}

// skipSpace skips blanks and, when newlines is set, line breaks.
func (c *cursor) skipSpace(newlines bool) {
	for !c.eof() {
		switch c.src[c.pos] {
		case ' ', '\t', '\r':
			c.pos++
		case '\n':
			if !newlines {
				return
			}

			c.pos++
		default:
			return
		}
	}
}

// skipLineComment skips from a comment marker to the end of the line.
func (c *cursor) skipLineComment() {
	for !c.eof() && c.src[c.pos] != '\n' {
		c.pos++
	}
}

// skipBlockComment skips a /* */ comment starting at the cursor.
func (c *cursor) skipBlockComment() error {
	end := strings.Index(string(c.src[c.pos+2:]), "*/")
	if end < 0 {
		return c.errorf("unterminated comment")
	}

	c.pos += 2 + end + 2

	return nil
}

// quoted consumes a string delimited by quote. Backslash escapes are
// honoured when escapes is set. It returns the decoded content.
func (c *cursor) quoted(quote byte, escapes bool) (string, error) {
	start := c.pos
	c.pos++

	for !c.eof() {
		switch b := c.src[c.pos]; {
		case b == '\\' && escapes:
			c.pos += 2
		case b == quote:
			c.pos++

			raw := string(c.src[start+1 : c.pos-1])
			if !escapes {
				return raw, nil
			}

			return unescape(raw), nil
		case b == '\n':
			return "", c.errorf("newline in string")
		default:
			c.pos++
		}
	}

	return "", c.errorf("unterminated string")
}

// unescape decodes backslash escapes shared by JSON, JSON5 and TOML basic
// strings. Unknown escapes keep the escaped character.
func unescape(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}

	var builder strings.Builder

	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			builder.WriteByte(raw[i])

			continue
		}

		i++

		switch raw[i] {
		case 'n':
			builder.WriteByte('\n')
		case 't':
			builder.WriteByte('\t')
		case 'r':
			builder.WriteByte('\r')
		case 'b':
			builder.WriteByte('\b')
		case 'f':
			builder.WriteByte('\f')
		case '\n':
		case 'u', 'U':
			width := 4
			if raw[i] == 'U' {
				width = 8
			}

			if i+width < len(raw) {
				if code, err := strconv.ParseUint(raw[i+1:i+1+width], 16, 32); err == nil && utf8.ValidRune(rune(code)) {
					builder.WriteRune(rune(code))
					i += width

					continue
				}
			}

			builder.WriteByte(raw[i])
		default:
			builder.WriteByte(raw[i])
		}
	}

	return builder.String()
}
