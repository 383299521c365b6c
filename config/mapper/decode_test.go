package mapper

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/0xalexb/hjarta-config/config/fields"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutConfig struct {
	Timeout int
	Name    string
}

type databaseConfig struct {
	Host string
	Port int `default:"5432"`
}

type serverConfig struct {
	Port int `validate:"gte=1024"`
}

type level string

func (level) Enum() []string {
	return []string{"debug", "info", "error"}
}

type baseConfig struct {
	Version string
}

type appConfig struct {
	baseConfig

	Name     string
	Debug    bool
	Ratio    float64
	Tags     []string
	Timeout  time.Duration
	Limit    uint8             `conf:"max_items"`
	Comment  string            `conf:",optional"`
	Labels   map[string]string `conf:",optional"`
	Level    level             `default:"info"`
	Password fields.SecretString
	Memory   fields.ByteSize `default:"1 KiB"`
	Replica  *databaseConfig
	Database databaseConfig
	Servers  []serverConfig `conf:",optional"`
	Ignored  string         `conf:"-"`
}

func leafPaths(t *testing.T, err error) map[string]error {
	t.Helper()

	var group *Group

	require.ErrorAs(t, err, &group)

	leaves := make(map[string]error)

	Walk(group, func(path []string, leaf error) {
		leaves[strings.Join(path, ".")] = leaf
	})

	return leaves
}

func TestDecode_BadStringFormat(t *testing.T) {
	t.Parallel()

	var cfg timeoutConfig

	err := Decode(map[string]any{"timeout": "abc", "name": "test"}, &cfg, Options{})

	leaves := leafPaths(t, err)
	require.Len(t, leaves, 1)

	var valueErr *ValueError

	require.ErrorAs(t, leaves["timeout"], &valueErr)
	assert.Equal(t, "Bad string format", valueErr.Msg)
	assert.Equal(t, "abc", valueErr.Input)
}

func TestDecode_WeakCoercion(t *testing.T) {
	t.Parallel()

	tree := map[string]any{
		"version":   int64(3),
		"name":      int64(42),
		"debug":     "on",
		"ratio":     "0.5",
		"tags":      "a, b ,c",
		"timeout":   "1m30s",
		"max_items": float64(7),
		"labels":    `{"team": "core"}`,
		"password":  "hunter22",
		"database":  map[string]any{"host": "localhost"},
		"replica":   map[string]any{"host": "replica", "port": "6543"},
		"servers":   []any{map[string]any{"port": int64(8080)}},
		"ignored":   "value",
	}

	var cfg appConfig

	require.NoError(t, Decode(tree, &cfg, Options{}))

	assert.Equal(t, "3", cfg.Version)
	assert.Equal(t, "42", cfg.Name)
	assert.True(t, cfg.Debug)
	assert.InDelta(t, 0.5, cfg.Ratio, 0.0001)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Tags)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, uint8(7), cfg.Limit)
	assert.Equal(t, map[string]string{"team": "core"}, cfg.Labels)
	assert.Equal(t, level("info"), cfg.Level)
	assert.Equal(t, "hunter22", cfg.Password.Value())
	assert.Equal(t, int64(1024), cfg.Memory.Bytes())
	assert.Equal(t, databaseConfig{Host: "localhost", Port: 5432}, cfg.Database)
	require.NotNil(t, cfg.Replica)
	assert.Equal(t, 6543, cfg.Replica.Port)
	assert.Equal(t, []serverConfig{{Port: 8080}}, cfg.Servers)
	assert.Empty(t, cfg.Ignored)
	assert.Empty(t, cfg.Comment)
}

func TestDecode_Failures(t *testing.T) {
	t.Parallel()

	base := func() map[string]any {
		return map[string]any{
			"version":   "1",
			"name":      "app",
			"debug":     true,
			"ratio":     1.5,
			"tags":      []any{"a"},
			"timeout":   "1s",
			"max_items": int64(1),
			"password":  "secret",
			"database":  map[string]any{"host": "db"},
		}
	}

	tests := []struct {
		name    string
		key     string
		value   any
		path    string
		message string
	}{
		{"int from list", "max_items", []any{int64(1)}, "max_items", "Expected int | float | string, got list"},
		{"int overflow", "max_items", int64(300), "max_items", "Value out of range"},
		{"int fraction", "max_items", 1.5, "max_items", "Value is not an integer"},
		{"bool from text", "debug", "maybe", "debug", "Bad string format"},
		{"string from map", "name", map[string]any{}, "name", "Expected string, got map"},
		{"nested", "database", map[string]any{"host": "db", "port": "x"}, "database.port", "Bad string format"},
		{"record from scalar", "database", "db", "database", "Expected map, got string"},
		{"list item", "tags", []any{"a", map[string]any{}}, "tags.1", "Expected string, got map"},
		{"duration", "timeout", "soon", "timeout", "Bad string format"},
		{"enum", "level", "verbose", "level", `Invalid variant: "verbose"`},
		{"list of records", "servers", []any{map[string]any{"port": int64(1)}, map[string]any{"port": "x"}}, "servers.1.port", "Bad string format"},
		{"byte size", "memory", "lots", "memory", `invalid byte size format: "lots"`},
	}

	for _, testInfo := range tests {
		t.Run(testInfo.name, func(t *testing.T) {
			t.Parallel()

			tree := base()
			tree[testInfo.key] = testInfo.value

			var cfg appConfig

			leaves := leafPaths(t, Decode(tree, &cfg, Options{}))
			require.Len(t, leaves, 1)
			require.Contains(t, leaves, testInfo.path)
			assert.Equal(t, testInfo.message, leaves[testInfo.path].Error())
		})
	}
}

func TestDecode_MissingFields(t *testing.T) {
	t.Parallel()

	var cfg appConfig

	leaves := leafPaths(t, Decode(map[string]any{"database": map[string]any{}}, &cfg, Options{}))

	var missing *MissingFieldsError

	require.ErrorAs(t, leaves[""], &missing)
	assert.Equal(t, []string{"debug", "max_items", "name", "password", "ratio", "tags", "timeout", "version"}, missing.Fields)

	require.ErrorAs(t, leaves["database"], &missing)
	assert.Equal(t, []string{"host"}, missing.Fields)
}

func TestDecode_ForbidExtra(t *testing.T) {
	t.Parallel()

	tree := map[string]any{"timeout": int64(1), "name": "x", "zeta": true, "alpha": int64(1)}

	var cfg timeoutConfig

	require.NoError(t, Decode(tree, &cfg, Options{}))

	leaves := leafPaths(t, Decode(tree, &cfg, Options{ForbidExtra: true}))

	var extra *ExtraFieldsError

	require.ErrorAs(t, leaves[""], &extra)
	assert.Equal(t, []string{"alpha", "zeta"}, extra.Fields)
	assert.Equal(t, "Unknown field(s): alpha, zeta", extra.Error())
}

func TestDecode_Validation(t *testing.T) {
	t.Parallel()

	type nested struct {
		Server  serverConfig
		Servers []serverConfig `validate:"dive"`
		Name    string         `conf:"service_name" validate:"oneof=api worker"`
	}

	tree := map[string]any{
		"server":       map[string]any{"port": int64(80)},
		"servers":      []any{map[string]any{"port": int64(8080)}, map[string]any{"port": int64(22)}},
		"service_name": "cron",
	}

	var cfg nested

	leaves := leafPaths(t, Decode(tree, &cfg, Options{}))
	require.Len(t, leaves, 3)

	assert.Equal(t, "Must be greater than or equal to 1024", leaves["server.port"].Error())
	assert.Equal(t, "Must be greater than or equal to 1024", leaves["servers.1.port"].Error())
	assert.Equal(t, "Must be one of: api, worker", leaves["service_name"].Error())

	var validationErr *ValidationError

	require.ErrorAs(t, leaves["server.port"], &validationErr)
	assert.Equal(t, "gte", validationErr.Tag)
	assert.Equal(t, 80, validationErr.Input)

	require.NoError(t, Decode(tree, &cfg, Options{SkipValidation: true}))
}

func TestDecode_Naming(t *testing.T) {
	t.Parallel()

	type credentials struct {
		UserName string
	}

	type styled struct {
		MaxConnections int
		Credentials    credentials
	}

	tests := []struct {
		style NameStyle
		tree  map[string]any
	}{
		{LowerSnake, map[string]any{"max_connections": int64(5), "credentials": map[string]any{"user_name": "u"}}},
		{UpperSnake, map[string]any{"MAX_CONNECTIONS": int64(5), "CREDENTIALS": map[string]any{"USER_NAME": "u"}}},
		{LowerCamel, map[string]any{"maxConnections": int64(5), "credentials": map[string]any{"userName": "u"}}},
		{UpperCamel, map[string]any{"MaxConnections": int64(5), "Credentials": map[string]any{"UserName": "u"}}},
		{LowerKebab, map[string]any{"max-connections": int64(5), "credentials": map[string]any{"user-name": "u"}}},
		{UpperKebab, map[string]any{"MAX-CONNECTIONS": int64(5), "CREDENTIALS": map[string]any{"USER-NAME": "u"}}},
	}

	for _, testInfo := range tests {
		t.Run(string(testInfo.style), func(t *testing.T) {
			t.Parallel()

			var cfg styled

			require.NoError(t, Decode(testInfo.tree, &cfg, Options{Naming: Naming{Style: testInfo.style}}))
			assert.Equal(t, styled{MaxConnections: 5, Credentials: credentials{UserName: "u"}}, cfg)
		})
	}
}

func TestDecode_FieldMapping(t *testing.T) {
	t.Parallel()

	naming := Naming{Mapping: map[string]string{"Database.Host": "hostname", "Timeout": "ttl"}}

	type mapped struct {
		Timeout  int
		Database databaseConfig
	}

	var cfg mapped

	tree := map[string]any{"ttl": int64(3), "database": map[string]any{"hostname": "db"}}

	require.NoError(t, Decode(tree, &cfg, Options{Naming: naming}))
	assert.Equal(t, mapped{Timeout: 3, Database: databaseConfig{Host: "db", Port: 5432}}, cfg)

	err := Decode(tree, &cfg, Options{Naming: Naming{Mapping: map[string]string{"Database.Nope": "x"}}})
	require.ErrorIs(t, err, ErrUnknownField)
	assert.Contains(t, err.Error(), "Database.Nope")
}

func TestDecode_NotStruct(t *testing.T) {
	t.Parallel()

	var number int

	require.ErrorIs(t, Decode(map[string]any{}, &number, Options{}), ErrNotStruct)
	require.ErrorIs(t, Decode(map[string]any{}, timeoutConfig{}, Options{}), ErrNotStruct)
	require.ErrorIs(t, Decode(map[string]any{}, (*timeoutConfig)(nil), Options{}), ErrNotStruct)
}

func TestDecode_NonMappingRoot(t *testing.T) {
	t.Parallel()

	var cfg timeoutConfig

	leaves := leafPaths(t, Decode([]any{"x"}, &cfg, Options{}))
	assert.Equal(t, "Expected map, got list", leaves[""].Error())
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	schema, err := Describe(reflect.TypeFor[*appConfig](), Naming{})
	require.NoError(t, err)

	version, ok := schema.Field("Version")
	require.True(t, ok)
	assert.Equal(t, "version", version.Key)
	assert.True(t, version.Required)

	limit, ok := schema.Field("Limit")
	require.True(t, ok)
	assert.Equal(t, "max_items", limit.Key)

	replica, ok := schema.Field("Replica")
	require.True(t, ok)
	assert.False(t, replica.Required)
	require.NotNil(t, replica.Nested)

	_, ok = schema.Field("Ignored")
	assert.False(t, ok)

	again, err := Describe(reflect.TypeFor[appConfig](), Naming{})
	require.NoError(t, err)
	assert.Same(t, schema, again)

	assert.Equal(t,
		[]Element{{Type: reflect.TypeFor[serverConfig](), Depth: 2}},
		ElementRecords(reflect.TypeFor[map[string][]*serverConfig]()),
	)
}

type node struct {
	Name     string
	Children []node `conf:",optional"`
	Parent   *node
}

func TestDescribe_Recursive(t *testing.T) {
	t.Parallel()

	var root node

	tree := map[string]any{
		"name":     "root",
		"children": []any{map[string]any{"name": "leaf"}},
		"parent":   map[string]any{"name": "up"},
	}

	require.NoError(t, Decode(tree, &root, Options{}))
	assert.Equal(t, "leaf", root.Children[0].Name)
	assert.Equal(t, "up", root.Parent.Name)
}

type poolConfig struct {
	Size int `default:"4"`
}

type serviceConfig struct {
	Pool poolConfig
}

func TestDecode_OptionalRecordDefaults(t *testing.T) {
	t.Parallel()

	var cfg serviceConfig

	require.NoError(t, Decode(map[string]any{}, &cfg, Options{}))
	assert.Equal(t, 4, cfg.Pool.Size)
}
