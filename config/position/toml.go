package position

import (
	"strconv"
	"strings"
)

// TOML indexes a TOML document.
//
// Key/value pairs span from the key to the end of the value, so multi-line
// strings, arrays and inline tables cover several lines. Each [[table]]
// header opens the next list index, and keys below it resolve to
// table.N.key. Standard tables span from their header to the last
// non-blank line before the next header.
func TOML(content []byte) (LineMap, error) {
	scanner := &tomlScanner{
		cursor: newCursor(content),
		lines:  make(LineMap),
		tables: make(map[string]int),
	}

	if err := scanner.document(); err != nil {
		return nil, err
	}

	return scanner.lines, nil
}

type tomlScanner struct {
	*cursor

	lines LineMap
	// tables counts the blocks seen per array-of-tables path.
	tables map[string]int
	// table is the resolved path of the current header.
	table []string
	// open is the header whose span is still growing.
	open      []string
	openStart int
	openEnd   int
}

func (s *tomlScanner) document() error {
	for {
		s.skipSpace(true)

		if s.eof() {
			s.closeTable()

			return nil
		}

		switch {
		case s.peek() == '#':
			s.skipLineComment()
		case s.peek() == '[':
			if err := s.header(); err != nil {
				return err
			}
		default:
			if err := s.pair(s.table); err != nil {
				return err
			}

			s.openEnd = s.lastLine()

			if err := s.endOfLine(); err != nil {
				return err
			}
		}
	}
}

func (s *tomlScanner) closeTable() {
	if s.open != nil {
		s.lines.set(s.open, s.openStart, s.openEnd)
	}

	s.open = nil
}

func (s *tomlScanner) header() error {
	s.closeTable()

	line := s.line()
	array := s.hasPrefix("[[")

	if array {
		s.pos += 2
	} else {
		s.pos++
	}

	segments, err := s.dottedKey()
	if err != nil {
		return err
	}

	closing := "]"
	if array {
		closing = "]]"
	}

	s.skipSpace(false)

	if !s.hasPrefix(closing) {
		return s.errorf("expected %q", closing)
	}

	s.pos += len(closing)

	resolved := s.resolveParents(segments)

	if array {
		key := mapKey(resolved)
		s.tables[key]++
		resolved = append(resolved, strconv.Itoa(s.tables[key]-1))
	}

	s.table = resolved
	s.open = append([]string(nil), resolved...)
	s.openStart = line
	s.openEnd = line

	return s.endOfLine()
}

// resolveParents inserts the current index after every parent segment that
// names an array of tables.
func (s *tomlScanner) resolveParents(segments []string) []string {
	resolved := make([]string, 0, len(segments)+2)

	for i, segment := range segments {
		resolved = append(resolved, segment)

		if i == len(segments)-1 {
			break
		}

		if count := s.tables[mapKey(resolved)]; count > 0 {
			resolved = append(resolved, strconv.Itoa(count-1))
		}
	}

	return resolved
}

// endOfLine accepts only blanks and a comment before the next line.
func (s *tomlScanner) endOfLine() error {
	s.skipSpace(false)

	if s.peek() == '#' {
		s.skipLineComment()
	}

	if !s.eof() && s.peek() != '\n' {
		return s.errorf("unexpected content after value")
	}

	return nil
}

// pair scans `key = value` below parent.
func (s *tomlScanner) pair(parent []string) error {
	keyLine := s.line()

	segments, err := s.dottedKey()
	if err != nil {
		return err
	}

	s.skipSpace(false)

	if err := s.expect('='); err != nil {
		return err
	}

	s.skipSpace(false)

	path := append(append([]string(nil), parent...), segments...)

	if err := s.value(path); err != nil {
		return err
	}

	s.lines.set(path, keyLine, s.lastLine())

	return nil
}

func (s *tomlScanner) dottedKey() ([]string, error) {
	var segments []string

	for {
		s.skipSpace(false)

		var (
			segment string
			err     error
		)

		switch s.peek() {
		case '"':
			segment, err = s.quoted('"', true)
		case '\'':
			segment, err = s.quoted('\'', false)
		default:
			start := s.pos
			for !s.eof() && isBareKeyByte(s.peek()) {
				s.pos++
			}

			if start == s.pos {
				return nil, s.errorf("expected key")
			}

			segment = string(s.src[start:s.pos])
		}

		if err != nil {
			return nil, err
		}

		segments = append(segments, segment)

		s.skipSpace(false)

		if s.peek() != '.' {
			return segments, nil
		}

		s.pos++
	}
}

func (s *tomlScanner) value(path []string) error {
	switch {
	case s.hasPrefix(`"""`):
		return s.multiline(`"""`, true)
	case s.hasPrefix(`'''`):
		return s.multiline(`'''`, false)
	case s.peek() == '"':
		_, err := s.quoted('"', true)

		return err
	case s.peek() == '\'':
		_, err := s.quoted('\'', false)

		return err
	case s.peek() == '[':
		return s.array(path)
	case s.peek() == '{':
		return s.inlineTable(path)
	default:
		return s.scalar()
	}
}

// multiline consumes a triple-quoted string. Up to two quotes may directly
// precede the closing delimiter.
func (s *tomlScanner) multiline(delimiter string, escapes bool) error {
	s.pos += len(delimiter)

	for !s.eof() {
		if escapes && s.peek() == '\\' {
			s.pos += 2

			continue
		}

		if s.hasPrefix(delimiter) {
			s.pos += len(delimiter)

			for extra := 0; extra < 2 && s.peek() == delimiter[0]; extra++ {
				s.pos++
			}

			return nil
		}

		s.pos++
	}

	return s.errorf("unterminated multi-line string")
}

// skipFiller skips blanks, line breaks and comments inside arrays and
// inline tables.
func (s *tomlScanner) skipFiller() {
	for {
		s.skipSpace(true)

		if s.peek() != '#' {
			return
		}

		s.skipLineComment()
	}
}

func (s *tomlScanner) array(path []string) error {
	s.pos++

	for index := 0; ; index++ {
		s.skipFiller()

		if s.peek() == ']' {
			s.pos++

			return nil
		}

		itemLine := s.line()
		itemPath := append(append([]string(nil), path...), strconv.Itoa(index))

		if err := s.value(itemPath); err != nil {
			return err
		}

		s.lines.set(itemPath, itemLine, s.lastLine())

		s.skipFiller()

		switch s.peek() {
		case ',':
			s.pos++
		case ']':
			s.pos++

			return nil
		default:
			return s.errorf("expected ',' or ']'")
		}
	}
}

func (s *tomlScanner) inlineTable(path []string) error {
	s.pos++

	for {
		s.skipFiller()

		if s.peek() == '}' {
			s.pos++

			return nil
		}

		if err := s.pair(path); err != nil {
			return err
		}

		s.skipFiller()

		switch s.peek() {
		case ',':
			s.pos++
		case '}':
			s.pos++

			return nil
		default:
			return s.errorf("expected ',' or '}'")
		}
	}
}

// scalar consumes numbers, booleans and dates, which may contain a space
// between date and time.
func (s *tomlScanner) scalar() error {
	start := s.pos

	for !s.eof() && !strings.ContainsRune(",]}#\n", rune(s.peek())) {
		s.pos++
	}

	for s.pos > start && (s.src[s.pos-1] == ' ' || s.src[s.pos-1] == '\t' || s.src[s.pos-1] == '\r') {
		s.pos--
	}

	if start == s.pos {
		return s.errorf("expected value")
	}

	return nil
}

func isBareKeyByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_' || b == '-'
}
