package config

import (
	"github.com/0xalexb/hjarta-config/config/diag"
	"github.com/0xalexb/hjarta-config/config/fetcher/file"
	"github.com/0xalexb/hjarta-config/config/fetcher/secrets"
	"github.com/0xalexb/hjarta-config/config/masking"
	envparser "github.com/0xalexb/hjarta-config/config/parser/env"
	iniparser "github.com/0xalexb/hjarta-config/config/parser/ini"
	jsonparser "github.com/0xalexb/hjarta-config/config/parser/json"
	json5parser "github.com/0xalexb/hjarta-config/config/parser/json5"
	tomlparser "github.com/0xalexb/hjarta-config/config/parser/toml"
	yamlparser "github.com/0xalexb/hjarta-config/config/parser/yaml"
	"github.com/0xalexb/hjarta-config/config/position"
)

// rawSource is one source read into a value tree.
type rawSource struct {
	index  int
	source Source
	kind   Kind
	// path is the cleaned file or directory path.
	path string
	// content is the file text, kept for line lookups.
	content []byte
	tree    any
}

//nolint:ireturn // the parser is chosen by kind.
func parserFor(kind Kind, separator string) Parser {
	switch kind {
	case KindJSON:
		return jsonparser.NewParser()
	case KindJSON5:
		return json5parser.NewParser()
	case KindTOML:
		return tomlparser.NewParser()
	case KindYAML:
		return yamlparser.NewParser()
	case KindINI:
		return iniparser.NewParser()
	case KindEnvFile:
		return envparser.NewParser(separator)
	default:
		return nil
	}
}

// readSource reads src into a value tree. environ is consulted only by env
// sources.
func readSource(src Source, kind Kind, environ []string) (rawSource, error) {
	raw := rawSource{source: src, kind: kind}

	switch kind {
	case KindEnv:
		raw.tree = envparser.FromEnviron(environ, src.Prefix, src.separator())

		return raw, nil
	case KindDockerSecrets:
		fetcher, err := secrets.NewFetcher(src.File)()
		if err != nil {
			return raw, err
		}

		raw.path = fetcher.Dir()
		raw.tree = fetcher.Tree(src.Prefix, src.separator())

		return raw, nil
	}

	fetcher, err := file.NewFetcher(src.File)()
	if err != nil {
		return raw, err
	}

	data, err := fetcher.Fetch()
	if err != nil {
		return raw, err
	}

	raw.path = fetcher.Path()
	raw.content = data

	var tree any

	if err := parserFor(kind, src.separator()).Parse(data, &tree, src.Prefix); err != nil {
		return raw, err
	}

	raw.tree = tree

	return raw, nil
}

// context describes the source to the location resolver.
func (r rawSource) context(typeName string, secretPaths masking.Paths) diag.Context {
	return diag.Context{
		TypeName:   typeName,
		LoaderType: string(r.kind),
		FilePath:   r.path,
		Prefix:     r.source.Prefix,
		Separator:  r.source.separator(),
		Indexer:    position.ForFormat(string(r.kind)),
		Secrets:    secretPaths,
	}
}
