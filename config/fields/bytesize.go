package fields

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrInvalidByteSize is returned when a byte size cannot be parsed.
	ErrInvalidByteSize = errors.New("invalid byte size format")
	// ErrUnknownByteUnit is returned for a byte size with an unsupported unit.
	ErrUnknownByteUnit = errors.New("unknown unit")
)

//nolint:gochecknoglobals // immutable lookup tables.
var (
	byteSizePattern = regexp.MustCompile(`^\s*([0-9]*\.?[0-9]+)\s*([a-zA-Z]*)\s*$`)

	byteUnits = map[string]int64{
		"b":   1,
		"kb":  1e3,
		"mb":  1e6,
		"gb":  1e9,
		"tb":  1e12,
		"pb":  1e15,
		"kib": 1 << 10,
		"mib": 1 << 20,
		"gib": 1 << 30,
		"tib": 1 << 40,
		"pib": 1 << 50,
	}
)

type byteUnit struct {
	name string
	size int64
}

// ByteSize is a number of bytes parsed from strings such as "1.5 GB" or "512 KiB".
type ByteSize int64

// ParseByteSize parses a number with an optional unit. A bare number means bytes.
func ParseByteSize(input string) (ByteSize, error) {
	match := byteSizePattern.FindStringSubmatch(input)
	if match == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidByteSize, input)
	}

	unit := strings.ToLower(match[2])
	if unit == "" {
		unit = "b"
	}

	multiplier, ok := byteUnits[unit]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownByteUnit, unit)
	}

	if !strings.Contains(match[1], ".") {
		number, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidByteSize, input)
		}

		return ByteSize(number * multiplier), nil
	}

	number, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidByteSize, input)
	}

	return ByteSize(number * float64(multiplier)), nil
}

// Bytes returns the size as an int64.
func (b ByteSize) Bytes() int64 {
	return int64(b)
}

// HumanReadable renders the size with the largest unit it reaches,
// using powers of 1000 when decimal is set and powers of 1024 otherwise.
func (b ByteSize) HumanReadable(decimal bool) string {
	units := []byteUnit{{"PiB", 1 << 50}, {"TiB", 1 << 40}, {"GiB", 1 << 30}, {"MiB", 1 << 20}, {"KiB", 1 << 10}}
	if decimal {
		units = []byteUnit{{"PB", 1e15}, {"TB", 1e12}, {"GB", 1e9}, {"MB", 1e6}, {"KB", 1e3}}
	}

	for _, unit := range units {
		if int64(b) < unit.size {
			continue
		}

		if int64(b)%unit.size == 0 {
			return strconv.FormatInt(int64(b)/unit.size, 10) + unit.name
		}

		return strconv.FormatFloat(float64(b)/float64(unit.size), 'f', 1, 64) + unit.name
	}

	return strconv.FormatInt(int64(b), 10) + "B"
}

// String renders the size in binary units.
func (b ByteSize) String() string {
	return b.HumanReadable(false)
}

// MarshalText implements encoding.TextMarshaler.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	parsed, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}

	*b = parsed

	return nil
}
