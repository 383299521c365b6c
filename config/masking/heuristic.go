package masking

import (
	"math"
	"strings"
	"unicode"
)

const (
	minEntropy    = 2.75
	maxVowelRatio = 0.3
	minCharClass  = 2
)

// EntropyDetector flags token-like strings: only token characters, at least
// two of lower case, upper case and digits, high Shannon entropy and few
// vowels, so ordinary words and sentences pass through.
type EntropyDetector struct{}

// IsRandom implements Detector.
func (EntropyDetector) IsRandom(value string) bool {
	if value == "" {
		return false
	}

	var lower, upper, digit, letters, vowels int

	counts := make(map[rune]int)

	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			lower = 1
		case r >= 'A' && r <= 'Z':
			upper = 1
		case r >= '0' && r <= '9':
			digit = 1
		case strings.ContainsRune("_+/=-", r):
		default:
			return false
		}

		if unicode.IsLetter(r) {
			letters++

			if strings.ContainsRune("aeiouAEIOU", r) {
				vowels++
			}
		}

		counts[r]++
	}

	if lower+upper+digit < minCharClass {
		return false
	}

	if letters > 0 && float64(vowels)/float64(letters) >= maxVowelRatio {
		return false
	}

	return entropy(counts, len([]rune(value))) >= minEntropy
}

func entropy(counts map[rune]int, total int) float64 {
	var result float64

	for _, count := range counts {
		p := float64(count) / float64(total)
		result -= p * math.Log2(p)
	}

	return result
}
