package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xalexb/hjarta-config/config/parser"
)

func TestParser_Parse_ValueTree(t *testing.T) {
	t.Parallel()

	data := []byte(`{"name": "svc", "port": 8080, "ratio": 0.25, "big": 9007199254740993, "tags": ["a", null], "db": {"ok": true}}`)

	var tree any

	err := NewParser().Parse(data, &tree, "")

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":  "svc",
		"port":  int64(8080),
		"ratio": 0.25,
		"big":   int64(9007199254740993),
		"tags":  []any{"a", nil},
		"db":    map[string]any{"ok": true},
	}, tree)
}

func TestParser_Parse_Path(t *testing.T) {
	t.Parallel()

	data := []byte(`{"api": {"permissions": {"read": true, "write": "no"}}}`)

	var result struct {
		Read  bool `conf:"read"`
		Write bool `conf:"write"`
	}

	err := NewParser().Parse(data, &result, "api.permissions")

	require.NoError(t, err)
	assert.True(t, result.Read)
	assert.False(t, result.Write)
}

func TestParser_Parse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     string
		path     string
		expected error
	}{
		{name: "trailing data", data: `{"a": 1} {"b": 2}`, expected: ErrTrailingData},
		{name: "missing path", data: `{"a": 1}`, path: "b", expected: parser.ErrPathNotFound},
		{name: "not a mapping", data: `{"a": [1]}`, path: "a.b", expected: parser.ErrNotMapping},
		{name: "syntax"},
	}

	for _, testInfo := range tests {
		t.Run(testInfo.name, func(t *testing.T) {
			t.Parallel()

			data := testInfo.data
			if data == "" {
				data = `{"a": `
			}

			var tree any

			err := NewParser().Parse([]byte(data), &tree, testInfo.path)

			require.Error(t, err)

			if testInfo.expected != nil {
				require.ErrorIs(t, err, testInfo.expected)
			}
		})
	}
}

func TestParser_Parse_Empty(t *testing.T) {
	t.Parallel()

	var tree any

	require.NoError(t, NewParser().Parse([]byte("  \n"), &tree, ""))
	assert.Equal(t, map[string]any{}, tree)
}
