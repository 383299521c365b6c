package diag

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/0xalexb/hjarta-config/config/masking"
	"github.com/0xalexb/hjarta-config/config/position"
)

// Source kinds with their own location rules. Every other kind is a
// structured file format.
const (
	KindEnv           = "env"
	KindEnvFile       = "envfile"
	KindDockerSecrets = "docker_secrets"
)

// SourceLocation points at where a field value came from. Only the fields
// that could be resolved are set.
type SourceLocation struct {
	SourceType string              `json:"source_type"`
	FilePath   string              `json:"file_path,omitempty"`
	LineRange  *position.LineRange `json:"line_range,omitempty"`
	Content    []string            `json:"line_content,omitempty"`
	EnvVar     string              `json:"env_var_name,omitempty"`
}

// Context carries what ResolveLocation needs to know about one source.
type Context struct {
	// TypeName names the target record type in error headers.
	TypeName   string
	LoaderType string
	FilePath   string
	// Prefix is a dot-path inside structured files and a name prefix for
	// environment variables and secret files.
	Prefix    string
	Separator string
	// Indexer is nil for formats without line structure.
	Indexer position.Indexer
	Secrets masking.Paths
}

// ReadContent returns the content of the source file, or nil when there is
// no file or it cannot be read.
func ReadContent(filePath string) []byte {
	if filePath == "" {
		return nil
	}

	content, err := os.ReadFile(filePath) //nolint:gosec // path comes from the caller's source list
	if err != nil {
		return nil
	}

	return content
}

// EnvVarName builds the variable name a field is read from: the prefix
// followed by the upper-cased path joined with the separator.
func EnvVarName(path []string, prefix, separator string) string {
	upper := make([]string, len(path))
	for i, segment := range path {
		upper[i] = strings.ToUpper(segment)
	}

	return prefix + strings.Join(upper, separator)
}

// ResolveLocation finds where the field at path was set. It never fails:
// whatever cannot be resolved is left empty. Content lines are masked when
// the field is secret or shares a line with a secret field. A nil masker
// uses masking.Default.
func ResolveLocation(path []string, ctx Context, content []byte, masker *masking.Masker) SourceLocation {
	if masker == nil {
		masker = masking.Default()
	}

	secret := ctx.Secrets.Covers(path)

	switch ctx.LoaderType {
	case KindEnv:
		return SourceLocation{SourceType: KindEnv, EnvVar: EnvVarName(path, ctx.Prefix, ctx.Separator)}
	case KindEnvFile:
		return envFileLocation(path, ctx, content, secret, masker)
	case KindDockerSecrets:
		location := SourceLocation{SourceType: KindDockerSecrets}
		if ctx.FilePath != "" {
			location.FilePath = filepath.Join(ctx.FilePath, ctx.Prefix+strings.Join(path, ctx.Separator))
		}

		return location
	default:
		return fileLocation(path, ctx, content, secret, masker)
	}
}

func envFileLocation(path []string, ctx Context, content []byte, secret bool, masker *masking.Masker) SourceLocation {
	name := EnvVarName(path, ctx.Prefix, ctx.Separator)
	location := SourceLocation{SourceType: KindEnvFile, FilePath: ctx.FilePath, EnvVar: name}

	if content == nil {
		return location
	}

	for number, line := range splitLines(content) {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}

		key, _, found := strings.Cut(stripped, "=")
		if !found || strings.TrimSpace(key) != name {
			continue
		}

		if secret {
			stripped = masker.EnvLine(stripped)
		}

		location.LineRange = &position.LineRange{Start: number + 1, End: number + 1}
		location.Content = []string{stripped}

		break
	}

	return location
}

func fileLocation(path []string, ctx Context, content []byte, secret bool, masker *masking.Masker) SourceLocation {
	location := SourceLocation{SourceType: ctx.LoaderType, FilePath: ctx.FilePath}

	if content == nil || len(path) == 0 || ctx.Indexer == nil {
		return location
	}

	finder, err := ctx.Indexer(content)
	if err != nil {
		return location
	}

	lineRange, ok := finder.Find(searchPath(path, ctx.Prefix))
	if !ok {
		return location
	}

	location.LineRange = &lineRange

	lines := splitLines(content)
	if lineRange.Start < 1 || lineRange.Start > len(lines) {
		return location
	}

	location.Content = stripCommonIndent(lines[lineRange.Start-1 : min(lineRange.End, len(lines))])

	if secret || overlapsSecret(finder, lineRange, ctx) {
		for i, line := range location.Content {
			location.Content[i] = masker.EnvLine(line)
		}
	}

	return location
}

// overlapsSecret looks up every concrete secret path of ctx. Paths with a
// Wildcard segment cannot be found in a file; see masking.Paths.Expand.
func overlapsSecret(finder position.Finder, lineRange position.LineRange, ctx Context) bool {
	for secretPath := range ctx.Secrets {
		if strings.Contains(secretPath, masking.Wildcard) {
			continue
		}

		secretRange, ok := finder.Find(searchPath(strings.Split(secretPath, "."), ctx.Prefix))
		if ok && secretRange.Overlaps(lineRange) {
			return true
		}
	}

	return false
}

func searchPath(path []string, prefix string) []string {
	if prefix == "" {
		return path
	}

	return append(strings.Split(prefix, "."), path...)
}

func splitLines(content []byte) []string {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")

	return strings.Split(text, "\n")
}

func stripCommonIndent(lines []string) []string {
	indent := -1

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		width := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || width < indent {
			indent = width
		}
	}

	stripped := make([]string, len(lines))

	for i, line := range lines {
		if indent > 0 && len(line) >= indent {
			line = line[indent:]
		}

		stripped[i] = line
	}

	return stripped
}
