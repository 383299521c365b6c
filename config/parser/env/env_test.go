package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		vars     map[string]string
		prefix   string
		sep      string
		expected map[string]any
	}{
		{
			name:     "prefix and nesting",
			vars:     map[string]string{"APP_DB__HOST": "db", "APP_DB__PORT": "5432", "APP_NAME": "svc", "OTHER": "x"},
			prefix:   "APP_",
			sep:      "__",
			expected: map[string]any{"db": map[string]any{"host": "db", "port": "5432"}, "name": "svc"},
		},
		{
			name:     "case-insensitive prefix",
			vars:     map[string]string{"app_debug": "1"},
			prefix:   "APP_",
			sep:      "__",
			expected: map[string]any{"debug": "1"},
		},
		{
			name:     "mapping wins over scalar",
			vars:     map[string]string{"DB": "plain", "DB__HOST": "db"},
			sep:      "__",
			expected: map[string]any{"db": map[string]any{"host": "db"}},
		},
		{
			name:     "empty segments dropped",
			vars:     map[string]string{"APP_": "x", "APP_A____B": "y"},
			prefix:   "APP_",
			expected: map[string]any{"a": map[string]any{"b": "y"}},
		},
		{
			name:     "custom separator",
			vars:     map[string]string{"X.Y": "1"},
			sep:      ".",
			expected: map[string]any{"x": map[string]any{"y": "1"}},
		},
	}

	for _, testInfo := range tests {
		t.Run(testInfo.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testInfo.expected, Nest(testInfo.vars, testInfo.prefix, testInfo.sep))
		})
	}
}

func TestFromEnviron(t *testing.T) {
	t.Parallel()

	tree := FromEnviron([]string{"APP_TOKEN=a=b", "APP_MODE=", "broken", "=x"}, "APP_", "__")

	assert.Equal(t, map[string]any{"token": "a=b", "mode": ""}, tree)
}

func TestParser_Parse(t *testing.T) {
	t.Parallel()

	data := []byte(`
# service settings
APP_DB__HOST=db.local
APP_DB__URL="postgres://${APP_DB__HOST}/app"
export APP_DEBUG=true
UNRELATED=1
`)

	var tree any

	err := NewParser("__").Parse(data, &tree, "APP_")

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"db":    map[string]any{"host": "db.local", "url": "postgres://db.local/app"},
		"debug": "true",
	}, tree)
}

func TestParser_Parse_Struct(t *testing.T) {
	t.Parallel()

	var result struct {
		Port  int  `conf:"port"`
		Debug bool `conf:"debug"`
	}

	err := NewParser("").Parse([]byte("PORT=8080\nDEBUG=true\n"), &result, "")

	require.NoError(t, err)
	assert.Equal(t, 8080, result.Port)
	assert.True(t, result.Debug)
}
