package config

import (
	"fmt"
)

// Parser decodes configuration data into a target.
//
// The path parameter selects a nested mapping with dot-separated keys:
//   - "api.permissions" navigates to config["api"]["permissions"]
//   - "" (empty path) means the entire document
//
// A *any target receives the generic value tree, which is how the loader
// reads sources. Parsers for dotenv data treat path as a variable name
// prefix instead. See the sub-packages of config/parser.
type Parser interface {
	Parse(data []byte, target any, path string) error
}

// DataFetcher defines an interface for reading configuration data.
type DataFetcher interface {
	Fetch() ([]byte, error)
}

// Validator is implemented by configuration types with checks that struct
// tags cannot express. It runs after decoding and tag validation.
type Validator interface {
	Validate() error
}

// Defaulter is implemented by configuration types that fill in values after
// decoding, before Validate.
type Defaulter interface {
	SetDefaults() (changed bool)
}

// formatter is implemented by the parsers of config/parser.
type formatter interface {
	Format() string
}

// pather is implemented by fetchers that read a file.
type pather interface {
	Path() string
}

// Provider returns a function that fetches and parses data, then runs the
// load pipeline on it: decoding into target, tag validation, Defaulter and
// Validator. Field errors point into the fetched data when the parser names
// its format and the fetcher its file.
func Provider[T any](target *T, path string, opts ...LoadOption) func(Parser, DataFetcher) (*T, error) {
	return func(parser Parser, dataSourcer DataFetcher) (*T, error) {
		data, err := dataSourcer.Fetch()
		if err != nil {
			return nil, fmt.Errorf("reading data error: %w", err)
		}

		var tree any

		err = parser.Parse(data, &tree, path)
		if err != nil {
			return nil, fmt.Errorf("parsing error: %w", err)
		}

		raw := rawSource{source: Source{Prefix: path}, content: data, tree: tree}

		if named, ok := parser.(formatter); ok {
			raw.kind = Kind(named.Format())
			raw.source.Loader = raw.kind
		}

		if file, ok := dataSourcer.(pather); ok {
			raw.path = file.Path()
			raw.source.File = raw.path
		}

		return run(target, Merge{Sources: []Source{raw.source}}, true, []rawSource{raw}, opts)
	}
}
