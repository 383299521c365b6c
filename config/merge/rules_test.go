package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyRules(t *testing.T) {
	t.Parallel()

	trees := []any{
		map[string]any{"host": "a", "tags": []any{"x", "y"}, "db": map[string]any{"hosts": []any{"h1"}}},
		map[string]any{"host": "b", "tags": []any{"y", "z"}},
		map[string]any{"host": "c", "db": map[string]any{"hosts": []any{"h2"}}},
	}

	merged := Merge(trees, LastWins)

	tests := []struct {
		name     string
		rules    map[string]FieldRule
		path     []string
		expected any
	}{
		{name: "first wins", rules: map[string]FieldRule{"host": FieldFirstWins}, path: []string{"host"}, expected: "a"},
		{name: "last wins", rules: map[string]FieldRule{"host": FieldLastWins}, path: []string{"host"}, expected: "c"},
		{
			name:     "append",
			rules:    map[string]FieldRule{"tags": FieldAppend},
			path:     []string{"tags"},
			expected: []any{"x", "y", "y", "z"},
		},
		{
			name:     "append unique",
			rules:    map[string]FieldRule{"tags": FieldAppendUnique},
			path:     []string{"tags"},
			expected: []any{"x", "y", "z"},
		},
		{
			name:     "prepend",
			rules:    map[string]FieldRule{"tags": FieldPrepend},
			path:     []string{"tags"},
			expected: []any{"y", "z", "x", "y"},
		},
		{
			name:     "nested path",
			rules:    map[string]FieldRule{"db.hosts": FieldAppend},
			path:     []string{"db", "hosts"},
			expected: []any{"h1", "h2"},
		},
	}

	for _, testInfo := range tests {
		t.Run(testInfo.name, func(t *testing.T) {
			t.Parallel()

			result := ApplyRules(merged, trees, testInfo.rules)

			value, ok := Lookup(result, testInfo.path)
			require.True(t, ok)
			assert.Equal(t, testInfo.expected, value)
		})
	}
}

func TestApplyRules_UnsetPathIgnored(t *testing.T) {
	t.Parallel()

	merged := map[string]any{"a": int64(1)}
	result := ApplyRules(merged, []any{merged}, map[string]FieldRule{"missing": FieldAppend})

	assert.Equal(t, merged, result)
}

func TestCovers(t *testing.T) {
	t.Parallel()

	rules := map[string]FieldRule{"db": FieldFirstWins, "tags": FieldAppend}

	assert.True(t, Covers(rules, "db"))
	assert.True(t, Covers(rules, "db.host"))
	assert.False(t, Covers(rules, "dbx"))
	assert.False(t, Covers(rules, "host"))
}

func TestParseFieldRule(t *testing.T) {
	t.Parallel()

	for _, rule := range []FieldRule{FieldLastWins, FieldFirstWins, FieldAppend, FieldAppendUnique, FieldPrepend} {
		parsed, err := ParseFieldRule(rule.String())
		require.NoError(t, err)
		assert.Equal(t, rule, parsed)
	}

	_, err := ParseFieldRule("zip")
	require.ErrorIs(t, err, ErrUnknownFieldRule)
}
