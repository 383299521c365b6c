package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/0xalexb/hjarta-config/config/diag"
	"github.com/0xalexb/hjarta-config/config/expand"
	"github.com/0xalexb/hjarta-config/config/mapper"
	"github.com/0xalexb/hjarta-config/config/parser/env"
)

// Kind names the reader of a source.
type Kind string

// Source kinds.
const (
	KindJSON          Kind = "json"
	KindJSON5         Kind = "json5"
	KindTOML          Kind = "toml"
	KindYAML          Kind = "yaml"
	KindINI           Kind = "ini"
	KindEnv           Kind = diag.KindEnv
	KindEnvFile       Kind = diag.KindEnvFile
	KindDockerSecrets Kind = diag.KindDockerSecrets
)

// supportedExtensions is listed in ExtensionError messages.
const supportedExtensions = ".cfg, .env, .ini, .json, .json5, .toml, .yaml, .yml"

//nolint:gochecknoglobals // read-only lookup table.
var kindByExtension = map[string]Kind{
	".json":  KindJSON,
	".json5": KindJSON5,
	".toml":  KindTOML,
	".yaml":  KindYAML,
	".yml":   KindYAML,
	".ini":   KindINI,
	".cfg":   KindINI,
	".env":   KindEnvFile,
}

// ParseKind checks a kind name.
func ParseKind(name string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(name)))

	switch kind {
	case KindJSON, KindJSON5, KindTOML, KindYAML, KindINI, KindEnv, KindEnvFile, KindDockerSecrets:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// Source describes one place configuration is read from.
type Source struct {
	// File is a file path, or a directory of secret files. Empty means the
	// process environment.
	File string
	// Loader forces the reader. Empty resolves it from File.
	Loader Kind
	// Prefix selects a nested mapping (dot-separated) in structured files
	// and filters variable or file names for env, envfile and docker
	// secrets sources.
	Prefix string
	// Separator splits variable and file names into nested keys.
	Separator string
	// NameStyle and FieldMapping derive source keys from struct fields.
	NameStyle    mapper.NameStyle
	FieldMapping map[string]string
	// ExpandEnv controls $VAR references in string values.
	ExpandEnv expand.Mode
	// SkipInvalidFields drops values that cannot be decoded, so another
	// source or a default can provide the field.
	SkipInvalidFields bool
	// SecretFieldNames extends the field name patterns treated as secret.
	SecretFieldNames []string
	// ForbidExtra reports keys that map to no field.
	ForbidExtra bool
}

// Kind resolves the reader of the source.
//
// An explicit Loader wins, but env cannot be combined with a file. Without
// a file the source is the environment; a directory holds docker secrets;
// names starting with .env are env files; otherwise the extension decides.
func (s Source) Kind() (Kind, error) {
	if s.Loader != "" {
		kind, err := ParseKind(string(s.Loader))
		if err != nil {
			return "", err
		}

		if kind == KindEnv && s.File != "" {
			return "", ErrEnvWithFile
		}

		return kind, nil
	}

	if s.File == "" {
		return KindEnv, nil
	}

	if stat, err := os.Stat(s.File); err == nil && stat.IsDir() {
		return KindDockerSecrets, nil
	}

	if strings.HasPrefix(filepath.Base(s.File), ".env") {
		return KindEnvFile, nil
	}

	extension := strings.ToLower(filepath.Ext(s.File))
	if kind, ok := kindByExtension[extension]; ok {
		return kind, nil
	}

	return "", &ExtensionError{Extension: extension}
}

// String describes the source as "<kind> '<file>'", or "env '<prefix>'"
// for the environment.
func (s Source) String() string {
	kind, err := s.Kind()
	if err != nil {
		kind = s.Loader
	}

	if kind == KindEnv {
		return fmt.Sprintf("env '%s'", s.Prefix)
	}

	return fmt.Sprintf("%s '%s'", kind, s.File)
}

func (s Source) separator() string {
	if s.Separator == "" {
		return env.DefaultSeparator
	}

	return s.Separator
}

func (s Source) naming() mapper.Naming {
	return mapper.Naming{Style: s.NameStyle, Mapping: s.FieldMapping}
}
