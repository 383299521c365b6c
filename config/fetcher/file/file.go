package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrPathIsDirectory is returned when the path provided to the Fetcher points to a directory instead of a file.
	ErrPathIsDirectory = errors.New("path is a directory, not a file")
	// ErrEmptyPath is returned when no path is given.
	ErrEmptyPath = errors.New("file path is empty")
)

// Fetcher implements config.DataFetcher for one configuration file.
// The file is read once, at construction time.
type Fetcher struct {
	filepath string
	data     []byte
}

// NewFetcher returns a constructor function that reads the file at fpath.
// The constructor shape lets fx decide when the file is read.
func NewFetcher(fpath string) func() (*Fetcher, error) {
	return func() (*Fetcher, error) {
		data, cleanPath, err := Read(fpath)
		if err != nil {
			return nil, err
		}

		return &Fetcher{
			filepath: cleanPath,
			data:     data,
		}, nil
	}
}

// Read returns the content of the file at fpath and its cleaned path.
func Read(fpath string) ([]byte, string, error) {
	if fpath == "" {
		return nil, "", ErrEmptyPath
	}

	cleanPath := filepath.Clean(fpath)

	stat, err := os.Stat(cleanPath)
	if err != nil {
		return nil, cleanPath, fmt.Errorf("stat file %q: %w", cleanPath, err)
	}

	if stat.IsDir() {
		return nil, cleanPath, fmt.Errorf("path %q: %w", cleanPath, ErrPathIsDirectory)
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 -- path is cleaned and validated
	if err != nil {
		return nil, cleanPath, fmt.Errorf("reading file %q: %w", cleanPath, err)
	}

	return data, cleanPath, nil
}

// Path returns the cleaned path of the file.
func (f *Fetcher) Path() string {
	return f.filepath
}

// Fetch returns a copy of the content read at construction time.
func (f *Fetcher) Fetch() ([]byte, error) {
	result := make([]byte, len(f.data))
	copy(result, f.data)

	return result, nil
}
