package mapper

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	t.Parallel()

	tree := map[string]any{
		"timeout": "abc",
		"name":    "test",
	}

	invalid, err := Probe(tree, reflect.TypeFor[timeoutConfig](), Naming{})
	require.NoError(t, err)
	assert.Equal(t, []string{"timeout"}, invalid)

	invalid, err = Probe(map[string]any{}, reflect.TypeFor[timeoutConfig](), Naming{})
	require.NoError(t, err)
	assert.Empty(t, invalid, "missing fields are not coercion failures")

	_, err = Probe(tree, reflect.TypeFor[int](), Naming{})
	require.ErrorIs(t, err, ErrNotStruct)
}

func TestFilterInvalid(t *testing.T) {
	t.Parallel()

	tree := map[string]any{
		"name":     "app",
		"database": map[string]any{"host": "db", "port": "x"},
		"servers":  []any{map[string]any{"port": "y"}, map[string]any{"port": "z"}},
	}

	type filtered struct {
		Name     string
		Database databaseConfig
		Servers  []serverConfig
	}

	cleaned, removed, err := FilterInvalid(tree, reflect.TypeFor[filtered](), Naming{})
	require.NoError(t, err)

	assert.Equal(t, []string{"database.port", "servers"}, removed)
	assert.Equal(t, map[string]any{
		"name":     "app",
		"database": map[string]any{"host": "db"},
	}, cleaned)

	assert.Contains(t, tree, "servers", "input tree is not modified")
	assert.Contains(t, tree["database"], "port")
}

func TestWalk(t *testing.T) {
	t.Parallel()

	err := &Group{Errors: []error{
		&Group{Trail: Trail{"a"}, Errors: []error{
			&ValueError{Trail: Trail{"b"}, Msg: "bad"},
			&MissingFieldsError{Fields: []string{"c", "d"}},
		}},
		&TypeError{Trail: Trail{"e"}, Expected: []string{"int"}, Got: "map"},
	}}

	var visited [][]string

	Walk(err, func(path []string, _ error) {
		visited = append(visited, path)
	})

	assert.Equal(t, [][]string{{"a", "b"}, {"a"}, {"e"}}, visited)
	assert.Equal(t, "3 decoding error(s): 2 decoding error(s): bad; Missing required field(s): c, d; Expected int, got map", err.Error())
}
