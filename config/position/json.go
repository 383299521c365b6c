package position

import (
	"strconv"
)

// JSON indexes a JSON document. Every object member spans from its key to
// the end of its value; every array item spans its own value.
func JSON(content []byte) (LineMap, error) {
	return scanJSON(content, false)
}

// JSON5 indexes a JSON5 document: unquoted keys, single-quoted strings,
// comments and trailing commas are accepted.
func JSON5(content []byte) (LineMap, error) {
	return scanJSON(content, true)
}

func scanJSON(content []byte, json5 bool) (LineMap, error) {
	scanner := &jsonScanner{cursor: newCursor(content), json5: json5, lines: make(LineMap)}

	if err := scanner.skip(); err != nil {
		return nil, err
	}

	if err := scanner.value(); err != nil {
		return nil, err
	}

	if err := scanner.skip(); err != nil {
		return nil, err
	}

	if !scanner.eof() {
		return nil, scanner.errorf("unexpected trailing content")
	}

	return scanner.lines, nil
}

type jsonScanner struct {
	*cursor

	json5 bool
	lines LineMap
	path  []string
}

// skip consumes whitespace and, in JSON5, comments.
func (s *jsonScanner) skip() error {
	for {
		s.skipSpace(true)

		if !s.json5 {
			return nil
		}

		switch {
		case s.hasPrefix("//"):
			s.skipLineComment()
		case s.hasPrefix("/*"):
			if err := s.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (s *jsonScanner) value() error {
	switch b := s.peek(); {
	case b == '{':
		return s.object()
	case b == '[':
		return s.array()
	case b == '"' || (s.json5 && b == '\''):
		_, err := s.quoted(b, true)

		return err
	default:
		return s.literal()
	}
}

func (s *jsonScanner) object() error {
	s.pos++

	first := true

	for {
		if err := s.skip(); err != nil {
			return err
		}

		if s.peek() == '}' && (first || s.json5) {
			s.pos++

			return nil
		}

		keyLine := s.line()

		key, err := s.key()
		if err != nil {
			return err
		}

		if err := s.skip(); err != nil {
			return err
		}

		if err := s.expect(':'); err != nil {
			return err
		}

		if err := s.skip(); err != nil {
			return err
		}

		s.path = append(s.path, key)

		if err := s.value(); err != nil {
			return err
		}

		s.lines.set(s.path, keyLine, s.lastLine())
		s.path = s.path[:len(s.path)-1]

		if err := s.skip(); err != nil {
			return err
		}

		switch s.peek() {
		case ',':
			s.pos++
			first = false
		case '}':
			s.pos++

			return nil
		default:
			return s.errorf("expected ',' or '}'")
		}
	}
}

func (s *jsonScanner) key() (string, error) {
	b := s.peek()
	if b == '"' || (s.json5 && b == '\'') {
		return s.quoted(b, true)
	}

	if !s.json5 {
		return "", s.errorf("expected object key")
	}

	start := s.pos
	for !s.eof() && isIdentifierByte(s.peek()) {
		s.pos++
	}

	if start == s.pos {
		return "", s.errorf("expected object key")
	}

	return string(s.src[start:s.pos]), nil
}

func (s *jsonScanner) array() error {
	s.pos++

	for index := 0; ; index++ {
		if err := s.skip(); err != nil {
			return err
		}

		if s.peek() == ']' && (index == 0 || s.json5) {
			s.pos++

			return nil
		}

		itemLine := s.line()

		s.path = append(s.path, strconv.Itoa(index))

		if err := s.value(); err != nil {
			return err
		}

		s.lines.set(s.path, itemLine, s.lastLine())
		s.path = s.path[:len(s.path)-1]

		if err := s.skip(); err != nil {
			return err
		}

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

// literal consumes a number, true, false or null, and in JSON5 also
// Infinity, NaN and hexadecimal numbers.
func (s *jsonScanner) literal() error {
	start := s.pos

	for !s.eof() && isLiteralByte(s.peek()) {
		s.pos++
	}

	if start == s.pos {
		return s.errorf("unexpected character %q", s.peek())
	}

	return nil
}

func isIdentifierByte(b byte) bool {
	return b == '_' || b == '$' || b >= 0x80 ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isLiteralByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') ||
		b == '+' || b == '-' || b == '.'
}
