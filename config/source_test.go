package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_Kind(t *testing.T) {
	t.Parallel()

	secretsDir := t.TempDir()

	tests := []struct {
		name     string
		source   Source
		expected Kind
	}{
		{name: "no file", source: Source{}, expected: KindEnv},
		{name: "explicit loader", source: Source{File: "settings.conf", Loader: KindTOML}, expected: KindTOML},
		{name: "loader name case", source: Source{File: "a", Loader: "YAML"}, expected: KindYAML},
		{name: "json", source: Source{File: "config.json"}, expected: KindJSON},
		{name: "json5", source: Source{File: "config.json5"}, expected: KindJSON5},
		{name: "toml", source: Source{File: "config.toml"}, expected: KindTOML},
		{name: "yaml", source: Source{File: "config.yaml"}, expected: KindYAML},
		{name: "yml upper case", source: Source{File: "CONFIG.YML"}, expected: KindYAML},
		{name: "ini", source: Source{File: "config.ini"}, expected: KindINI},
		{name: "cfg", source: Source{File: "setup.cfg"}, expected: KindINI},
		{name: "env extension", source: Source{File: "prod.env"}, expected: KindEnvFile},
		{name: "dotenv", source: Source{File: "/srv/.env"}, expected: KindEnvFile},
		{name: "dotenv variant", source: Source{File: ".env.local"}, expected: KindEnvFile},
		{name: "directory", source: Source{File: secretsDir}, expected: KindDockerSecrets},
	}

	for _, testInfo := range tests {
		t.Run(testInfo.name, func(t *testing.T) {
			t.Parallel()

			kind, err := testInfo.source.Kind()

			require.NoError(t, err)
			assert.Equal(t, testInfo.expected, kind)
		})
	}
}

func TestSource_Kind_Errors(t *testing.T) {
	t.Parallel()

	_, err := Source{File: "config.json", Loader: KindEnv}.Kind()
	require.ErrorIs(t, err, ErrEnvWithFile)

	_, err = Source{Loader: "xml"}.Kind()
	require.ErrorIs(t, err, ErrUnknownKind)

	_, err = Source{File: "config.xml"}.Kind()
	require.ErrorIs(t, err, ErrUnknownExtension)
	assert.Equal(t, "Cannot determine loader type for extension '.xml'. "+
		"Please specify loader explicitly or use a supported extension: "+
		".cfg, .env, .ini, .json, .json5, .toml, .yaml, .yml", err.Error())
}

func TestSource_String(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{}"), 0o600))

	assert.Equal(t, "json 'config.json'", Source{File: "config.json"}.String())
	assert.Equal(t, "env 'APP_'", Source{Prefix: "APP_"}.String())
	assert.Equal(t, "docker_secrets '"+dir+"'", Source{File: dir}.String())
	assert.Equal(t, "yaml 'settings'", Source{File: "settings", Loader: KindYAML}.String())
}
