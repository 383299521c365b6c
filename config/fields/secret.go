package fields

// Secret is implemented by field types whose plain value must never be
// displayed. Fields of such types are always treated as secret paths.
type Secret interface {
	Masked() string
}

const secretPlaceholder = "**********"

// SecretString holds a string that prints as a fixed placeholder.
type SecretString struct {
	value string
}

// NewSecretString wraps value.
func NewSecretString(value string) SecretString {
	return SecretString{value: value}
}

// Value returns the wrapped plain text.
func (s SecretString) Value() string {
	return s.value
}

// Len returns the length of the plain text.
func (s SecretString) Len() int {
	return len(s.value)
}

// Masked returns the display placeholder.
func (s SecretString) Masked() string {
	return secretPlaceholder
}

// String implements fmt.Stringer without revealing the value.
func (s SecretString) String() string {
	return secretPlaceholder
}

// GoString implements fmt.GoStringer without revealing the value.
func (s SecretString) GoString() string {
	return `fields.SecretString("` + secretPlaceholder + `")`
}

// MarshalText emits the placeholder, never the value.
func (s SecretString) MarshalText() ([]byte, error) {
	return []byte(secretPlaceholder), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SecretString) UnmarshalText(text []byte) error {
	s.value = string(text)

	return nil
}
