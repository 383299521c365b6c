package fields

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrCardNotDigits is returned when a card number contains anything but digits, spaces and dashes.
	ErrCardNotDigits = errors.New("card number must contain only digits")
	// ErrCardLength is returned when a card number is shorter than 12 or longer than 19 digits.
	ErrCardLength = errors.New("card number must be 12-19 digits")
	// ErrCardLuhn is returned when a card number fails the Luhn checksum.
	ErrCardLuhn = errors.New("card number failed Luhn check")
)

const (
	minCardDigits      = 12
	maxCardDigits      = 19
	visibleCardDigits  = 4
	luhnDoubleOverflow = 9
)

type brandRule struct {
	name      string
	prefixLen int
	min       int
	max       int
}

// longer prefixes first so that the most specific rule matches.
//
//nolint:gochecknoglobals // immutable lookup table.
var brandRules = []brandRule{
	{"Verve", 6, 506099, 506198},
	{"Verve", 6, 650002, 650027},
	{"Discover", 6, 622126, 622925},
	{"Mir", 4, 2200, 2204},
	{"JCB", 4, 3528, 3589},
	{"Mastercard", 4, 2221, 2720},
	{"Discover", 4, 6011, 6011},
	{"Maestro", 4, 5018, 5018},
	{"Maestro", 4, 5020, 5020},
	{"Maestro", 4, 5038, 5038},
	{"Maestro", 4, 5893, 5893},
	{"Maestro", 4, 6304, 6304},
	{"Maestro", 4, 6759, 6759},
	{"Maestro", 4, 6761, 6763},
	{"Troy", 4, 9792, 9792},
	{"Diners Club", 3, 300, 305},
	{"Discover", 3, 644, 649},
	{"American Express", 2, 34, 34},
	{"American Express", 2, 37, 37},
	{"Mastercard", 2, 51, 55},
	{"RuPay", 2, 60, 60},
	{"UnionPay", 2, 62, 62},
	{"Discover", 2, 65, 65},
	{"Diners Club", 2, 36, 36},
	{"Diners Club", 2, 38, 38},
	{"Maestro", 2, 67, 67},
	{"Visa", 1, 4, 4},
}

// PaymentCardNumber is a validated card number that prints masked.
type PaymentCardNumber struct {
	number string
}

// ParsePaymentCardNumber strips spaces and dashes, then checks length and the Luhn checksum.
func ParsePaymentCardNumber(input string) (PaymentCardNumber, error) {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(input)

	if cleaned == "" || strings.IndexFunc(cleaned, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return PaymentCardNumber{}, ErrCardNotDigits
	}

	if len(cleaned) < minCardDigits || len(cleaned) > maxCardDigits {
		return PaymentCardNumber{}, fmt.Errorf("%w, got %d", ErrCardLength, len(cleaned))
	}

	if !luhnValid(cleaned) {
		return PaymentCardNumber{}, ErrCardLuhn
	}

	return PaymentCardNumber{number: cleaned}, nil
}

func luhnValid(number string) bool {
	total := 0

	for i := range len(number) {
		digit := int(number[len(number)-1-i] - '0')

		if i%2 == 1 {
			digit *= 2
			if digit > luhnDoubleOverflow {
				digit -= luhnDoubleOverflow
			}
		}

		total += digit
	}

	return total%10 == 0
}

// Value returns the digits of the card number.
func (c PaymentCardNumber) Value() string {
	return c.number
}

// Masked keeps the last four digits and replaces the rest with '*'.
func (c PaymentCardNumber) Masked() string {
	if len(c.number) < visibleCardDigits {
		return strings.Repeat("*", len(c.number))
	}

	return strings.Repeat("*", len(c.number)-visibleCardDigits) + c.number[len(c.number)-visibleCardDigits:]
}

// Brand names the card network from the number's prefix, or "Unknown".
func (c PaymentCardNumber) Brand() string {
	for _, rule := range brandRules {
		if len(c.number) < rule.prefixLen {
			continue
		}

		prefix, err := strconv.Atoi(c.number[:rule.prefixLen])
		if err != nil {
			continue
		}

		if prefix >= rule.min && prefix <= rule.max {
			return rule.name
		}
	}

	return "Unknown"
}

// String implements fmt.Stringer with the masked form.
func (c PaymentCardNumber) String() string {
	return c.Masked()
}

// GoString implements fmt.GoStringer with the masked form.
func (c PaymentCardNumber) GoString() string {
	return `fields.PaymentCardNumber("` + c.Masked() + `")`
}

// MarshalText emits the masked form.
func (c PaymentCardNumber) MarshalText() ([]byte, error) {
	return []byte(c.Masked()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *PaymentCardNumber) UnmarshalText(text []byte) error {
	parsed, err := ParsePaymentCardNumber(string(text))
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}
