package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/0xalexb/hjarta-config/config/mapper"
	"github.com/0xalexb/hjarta-config/config/masking"
	"github.com/0xalexb/hjarta-config/config/merge"
)

// Extract flattens a decoding error tree into field errors, depth-first.
// A missing-fields failure yields one error per field. Values and messages
// of secret fields are masked. A nil masker uses masking.Default.
func Extract(err error, secrets masking.Paths, masker *masking.Masker) []FieldError {
	if masker == nil {
		masker = masking.Default()
	}

	var result []FieldError

	mapper.Walk(err, func(path []string, leaf error) {
		if missing, ok := leaf.(*mapper.MissingFieldsError); ok { //nolint:errorlint // leaves are never wrapped
			fields := append([]string(nil), missing.Fields...)
			sort.Strings(fields)

			for _, field := range fields {
				result = append(result, FieldError{
					Path:    append(append([]string(nil), path...), field),
					Message: MsgMissingField,
				})
			}

			return
		}

		secret := secrets.Covers(path)
		input := leafInput(leaf)

		fieldErr := FieldError{Path: path, Message: describe(leaf, input, secret, masker), Input: input}
		if secret && input != nil {
			fieldErr.Input = masker.Any(input)
		}

		result = append(result, fieldErr)
	})

	return result
}

func leafInput(leaf error) any {
	switch typed := leaf.(type) { //nolint:errorlint // leaves are never wrapped
	case *mapper.TypeError:
		return typed.Input
	case *mapper.ValueError:
		return typed.Input
	case *mapper.ValidationError:
		return typed.Input
	case *mapper.BadVariantError:
		return typed.Input
	default:
		return nil
	}
}

func describe(leaf error, input any, secret bool, masker *masking.Masker) string {
	switch typed := leaf.(type) { //nolint:errorlint // leaves are never wrapped
	case *mapper.ExtraFieldsError:
		fields := append([]string(nil), typed.Fields...)
		sort.Strings(fields)

		return "Unknown field(s): " + strings.Join(fields, ", ")
	case *mapper.BadVariantError:
		if secret && masker.Enabled() {
			return fmt.Sprintf("Invalid variant: %q", masker.Value(masking.Stringify(input)))
		}

		return typed.Error()
	}

	message := leaf.Error()

	if text, ok := input.(string); ok && secret && masker.Enabled() && text != "" {
		message = strings.ReplaceAll(message, text, masker.Value(text))
	}

	return message
}

// Locate resolves the location of every error whose location is unset,
// using ctxFor to pick the source that owns each field.
func Locate(errs []FieldError, ctxFor func(path []string) (Context, []byte), masker *masking.Masker) []FieldError {
	located := make([]FieldError, len(errs))

	for i, fieldErr := range errs {
		if fieldErr.Location == nil {
			ctx, content := ctxFor(fieldErr.Path)
			location := ResolveLocation(fieldErr.Path, ctx, content, masker)
			fieldErr.Location = &location
		}

		located[i] = fieldErr
	}

	return located
}

// EnrichSkipped annotates missing-field errors for fields whose values were
// dropped from some sources as invalid. skipped maps a field dot-path to
// the descriptions of those sources.
func EnrichSkipped(errs []FieldError, skipped map[string][]string) []FieldError {
	if len(skipped) == 0 {
		return errs
	}

	enriched := make([]FieldError, len(errs))

	for i, fieldErr := range errs {
		if sources, ok := skipped[merge.JoinPath(fieldErr.Path)]; ok && fieldErr.Message == MsgMissingField {
			fieldErr.Message = fmt.Sprintf("%s (invalid in: %s)", MsgMissingField, strings.Join(sources, ", "))
		}

		enriched[i] = fieldErr
	}

	return enriched
}
