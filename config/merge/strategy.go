package merge

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStrategy is returned when a strategy name cannot be parsed.
var ErrUnknownStrategy = errors.New("unknown merge strategy")

// Strategy governs how values of the same path from several sources combine.
type Strategy int

const (
	// LastWins lets later sources override earlier ones at every nesting level.
	LastWins Strategy = iota
	// FirstWins keeps the earliest value and only fills gaps from later sources.
	FirstWins
	// RaiseOnConflict rejects any leaf path present in two or more sources.
	RaiseOnConflict
)

// String returns the canonical name of the strategy.
func (s Strategy) String() string {
	switch s {
	case LastWins:
		return "last_wins"
	case FirstWins:
		return "first_wins"
	case RaiseOnConflict:
		return "raise_on_conflict"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy converts a name such as "last_wins" or "FIRST_WINS" into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "last_wins", "":
		return LastWins, nil
	case "first_wins":
		return FirstWins, nil
	case "raise_on_conflict":
		return RaiseOnConflict, nil
	default:
		return LastWins, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}
