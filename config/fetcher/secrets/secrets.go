package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/0xalexb/hjarta-config/config/parser/env"
)

// ErrNotDirectory is returned when the secrets path is not a directory.
var ErrNotDirectory = errors.New("secrets path is not a directory")

// Fetcher reads a secrets directory, one value per regular file. Docker
// and Kubernetes mount secrets this way. The directory is read at
// construction time and cached.
type Fetcher struct {
	dir    string
	values map[string]string
}

// NewFetcher returns a constructor function that reads the secrets in dir.
func NewFetcher(dir string) func() (*Fetcher, error) {
	return func() (*Fetcher, error) {
		values, err := Read(dir)
		if err != nil {
			return nil, err
		}

		return &Fetcher{dir: filepath.Clean(dir), values: values}, nil
	}
}

// Dir returns the cleaned directory path.
func (f *Fetcher) Dir() string {
	return f.dir
}

// Values returns a copy of the secrets keyed by file name.
func (f *Fetcher) Values() map[string]string {
	values := make(map[string]string, len(f.values))
	for name, value := range f.values {
		values[name] = value
	}

	return values
}

// Tree nests the secrets whose names start with prefix, see env.Nest.
func (f *Fetcher) Tree(prefix, sep string) map[string]any {
	return env.Nest(f.values, prefix, sep)
}

// Read returns the trimmed content of every regular file in dir, keyed by
// file name. Subdirectories and hidden files are skipped.
func Read(dir string) (map[string]string, error) {
	cleanDir := filepath.Clean(dir)

	stat, err := os.Stat(cleanDir)
	if err != nil {
		return nil, fmt.Errorf("stat secrets directory %q: %w", cleanDir, err)
	}

	if !stat.IsDir() {
		return nil, fmt.Errorf("path %q: %w", cleanDir, ErrNotDirectory)
	}

	entries, err := os.ReadDir(cleanDir)
	if err != nil {
		return nil, fmt.Errorf("reading secrets directory %q: %w", cleanDir, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	values := make(map[string]string, len(entries))

	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		path := filepath.Join(cleanDir, entry.Name())

		data, err := os.ReadFile(path) // #nosec G304 -- path is built from a listed directory
		if err != nil {
			return nil, fmt.Errorf("reading secret %q: %w", path, err)
		}

		values[entry.Name()] = strings.TrimSpace(string(data))
	}

	return values, nil
}
