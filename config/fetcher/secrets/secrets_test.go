package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSecrets(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	return dir
}

func TestRead(t *testing.T) {
	t.Parallel()

	dir := writeSecrets(t, map[string]string{
		"db_password": "s3cret\n",
		"API_TOKEN":   "  tok  ",
		".hidden":     "x",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))

	values, err := Read(dir)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"db_password": "s3cret", "API_TOKEN": "tok"}, values)
}

func TestRead_Errors(t *testing.T) {
	t.Parallel()

	_, err := Read(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stat secrets directory")

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	_, err = Read(file)
	require.ErrorIs(t, err, ErrNotDirectory)
}

func TestFetcher_Tree(t *testing.T) {
	t.Parallel()

	dir := writeSecrets(t, map[string]string{
		"app_db__password": "pw",
		"APP_TOKEN":        "tok",
		"other":            "x",
	})

	fetcher, err := NewFetcher(dir)()
	require.NoError(t, err)

	assert.Equal(t, filepath.Clean(dir), fetcher.Dir())
	assert.Len(t, fetcher.Values(), 3)
	assert.Equal(t, map[string]any{
		"db":    map[string]any{"password": "pw"},
		"token": "tok",
	}, fetcher.Tree("app_", "__"))
}
