package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/0xalexb/hjarta-config/config/diag"
	"github.com/0xalexb/hjarta-config/config/expand"
	"github.com/0xalexb/hjarta-config/config/mapper"
	"github.com/0xalexb/hjarta-config/config/masking"
	"github.com/0xalexb/hjarta-config/config/merge"
	"github.com/0xalexb/hjarta-config/config/metrics"
)

// Merge combines several sources into one configuration.
type Merge struct {
	Sources  []Source
	Strategy merge.Strategy
	// FieldRules override Strategy for individual dot-paths.
	FieldRules map[string]merge.FieldRule
}

// Load reads src into a new T.
//
// Decoding and validation failures are returned as one *diag.LoadError;
// unresolved references in Strict expansion mode as *diag.ExpandError.
// Usage errors such as ErrNotStruct are returned before any source is read.
func Load[T any](src Source, opts ...LoadOption) (*T, error) {
	return run(new(T), Merge{Sources: []Source{src}}, true, nil, opts)
}

// LoadMerged reads every source of m, merges them by m.Strategy and decodes
// the result into a new T. Under merge.RaiseOnConflict a field set by two
// sources fails the load with a *diag.ConflictError.
func LoadMerged[T any](m Merge, opts ...LoadOption) (*T, error) {
	return run(new(T), m, false, nil, opts)
}

// Inspect reads, expands and merges the sources of m without decoding
// them into a type, and returns the masked report of the result. Under
// merge.RaiseOnConflict the report is returned together with the
// *diag.ConflictError.
func Inspect(m Merge, opts ...LoadOption) (*LoadReport, error) {
	start := time.Now()

	l, err := newLoader(nil, m, false, nil, opts)
	if err != nil {
		return nil, err
	}

	report, err := l.load(nil, nil)

	l.finish(start, err)

	return report, err
}

// run loads into target. preread replaces reading the sources of m.
func run[T any](target *T, m Merge, single bool, preread []rawSource, opts []LoadOption) (*T, error) {
	start := time.Now()

	l, err := newLoader(reflect.TypeFor[T](), m, single, preread, opts)
	if err != nil {
		return nil, err
	}

	report, err := l.load(target, preread)

	l.finish(start, err)

	if report != nil {
		storeTypeReport(l.typ, report)

		if err == nil {
			attachReport(target, report)
		}
	}

	if err != nil {
		return nil, err
	}

	return target, nil
}

// inspectTypeName names schemaless loads in logs and errors.
const inspectTypeName = "config"

type loader struct {
	typ      reflect.Type
	typeName string
	merge    Merge
	single   bool
	kinds    []Kind
	naming   mapper.Naming
	patterns []string
	secrets  masking.Paths
	options  loadOptions
	settings Settings
	masker   *masking.Masker
	logger   *slog.Logger
	loadID   string
}

// newLoader checks everything that can be checked without reading a source.
func newLoader(typ reflect.Type, m Merge, single bool, preread []rawSource, opts []LoadOption) (*loader, error) {
	options := newLoadOptions(opts)

	if len(m.Sources) == 0 {
		return nil, ErrNoSources
	}

	naming := m.Sources[0].naming()
	for _, src := range m.Sources[1:] {
		if !sameNaming(naming, src.naming()) {
			return nil, ErrNamingMismatch
		}
	}

	if typ != nil {
		schema, err := mapper.Describe(typ, naming)
		if err != nil {
			return nil, fmt.Errorf("describing %s: %w", typ, err)
		}

		for dotPath := range m.FieldRules {
			if !resolvesField(schema, merge.SplitPath(dotPath)) {
				return nil, fmt.Errorf("field rule %q: %w", dotPath, ErrUnknownField)
			}
		}
	}

	kinds := make([]Kind, len(m.Sources))

	for i, src := range m.Sources {
		if preread != nil {
			kinds[i] = preread[i].kind

			continue
		}

		kind, err := src.Kind()
		if err != nil {
			return nil, err
		}

		kinds[i] = kind
	}

	settings := options.resolveSettings()

	patterns := slices.Clone(settings.Masking.SecretFieldNames)
	for _, src := range m.Sources {
		patterns = append(patterns, src.SecretFieldNames...)
	}

	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	typeName := inspectTypeName
	secretPaths := masking.Paths{}

	if typ != nil {
		typeName = typ.Name()
		if typeName == "" {
			typeName = typ.String()
		}

		secretPaths = masking.SecretPaths(typ, naming, patterns)
	}

	return &loader{
		typ:      typ,
		typeName: typeName,
		merge:    m,
		single:   single,
		kinds:    kinds,
		naming:   naming,
		patterns: patterns,
		secrets:  secretPaths,
		options:  options,
		settings: settings,
		masker:   masking.New(settings.Masking, masking.EntropyDetector{}),
		logger:   logger,
		loadID:   uuid.NewString(),
	}, nil
}

func (l *loader) debug() bool {
	return l.options.debug || l.settings.Loading.Debug
}

func (l *loader) strategy() merge.Strategy {
	if l.single {
		return merge.LastWins
	}

	return l.merge.Strategy
}

// load runs the pipeline into target. The report is returned whenever the
// sources could be read and debug mode is on, also when the load fails. A
// nil target stops after merging and always builds the report.
func (l *loader) load(target any, preread []rawSource) (*LoadReport, error) {
	raws := preread
	if raws == nil {
		var err error

		raws, err = l.readAll()
		if err != nil {
			return nil, err
		}
	}

	expandErrs := make([]diag.FieldError, 0)
	skipped := make(map[string][]string)

	for i := range raws {
		errs, err := l.prepare(&raws[i], skipped)
		if err != nil {
			return nil, err
		}

		expandErrs = append(expandErrs, errs...)
	}

	trees := make([]any, len(raws))
	for i, raw := range raws {
		trees[i] = raw.tree
	}

	var conflictErr error

	if l.strategy() == merge.RaiseOnConflict && len(raws) > 1 {
		if conflicts := merge.DetectConflicts(trees); len(conflicts) > 0 {
			conflictErr = l.conflictError(conflicts, raws)
		}
	}

	// Conflicting sources are never merged.
	var merged any

	if conflictErr == nil {
		merged = merge.Merge(trees, l.strategy())
		if len(l.merge.FieldRules) > 0 {
			merged = merge.ApplyRules(merged, trees, l.merge.FieldRules)
		}
	}

	var report *LoadReport
	if l.debug() || target == nil {
		report = l.report(raws, trees, merged)
	}

	if len(expandErrs) > 0 {
		return report, &diag.ExpandError{TypeName: l.typeName, Errors: expandErrs, Display: l.settings.ErrorDisplay}
	}

	if conflictErr != nil {
		return report, conflictErr
	}

	if target == nil {
		return report, nil
	}

	if err := mapper.Decode(merged, target, mapper.Options{Naming: l.naming, ForbidExtra: l.forbidExtra()}); err != nil {
		return report, l.decodeError(err, raws, skipped)
	}

	return report, l.runHooks(target)
}

func (l *loader) readAll() ([]rawSource, error) {
	environ := l.options.environ()
	raws := make([]rawSource, 0, len(l.merge.Sources))

	for i, src := range l.merge.Sources {
		raw, err := readSource(src, l.kinds[i], environ)
		if err != nil {
			return nil, fmt.Errorf("reading source %s: %w", src, err)
		}

		raw.index = i
		raws = append(raws, raw)
	}

	return raws, nil
}

// prepare expands references in one source and drops its invalid values
// when asked to. It returns the unresolved references as field errors.
func (l *loader) prepare(raw *rawSource, skipped map[string][]string) ([]diag.FieldError, error) {
	var fieldErrs []diag.FieldError

	expanded, err := expand.Tree(raw.tree, raw.source.ExpandEnv, l.options.lookup())
	if err != nil {
		var missing *expand.MissingError
		if !errors.As(err, &missing) {
			return nil, fmt.Errorf("expanding source %s: %w", raw.source, err)
		}

		ctx := raw.context(l.typeName, l.maskPaths(raw.tree))

		for _, reference := range missing.Missing {
			location := diag.ResolveLocation(reference.Path, ctx, raw.content, l.masker)
			fieldErrs = append(fieldErrs, diag.FieldError{
				Path:     reference.Path,
				Message:  fmt.Sprintf("Missing environment variable '%s'", reference.Var),
				Location: &location,
			})
		}
	}

	raw.tree = expanded

	if raw.source.SkipInvalidFields && l.typ != nil {
		filtered, removed, err := mapper.FilterInvalid(raw.tree, l.typ, l.naming)
		if err != nil {
			return nil, fmt.Errorf("filtering source %s: %w", raw.source, err)
		}

		raw.tree = filtered

		for _, dotPath := range removed {
			skipped[dotPath] = append(skipped[dotPath], raw.source.String())
		}

		if len(removed) > 0 {
			l.logger.Debug("invalid fields skipped",
				slog.String("type", l.typeName),
				slog.String("source", raw.source.String()),
				slog.Any("fields", removed),
				slog.String("load_id", l.loadID),
			)
		}
	}

	if l.debug() {
		l.logger.Debug("source loaded",
			slog.String("type", l.typeName),
			slog.String("loader", string(raw.kind)),
			slog.String("file", raw.path),
			slog.Any("data", l.masker.Tree(raw.tree, l.maskPaths(raw.tree))),
			slog.String("load_id", l.loadID),
		)
	}

	return fieldErrs, nil
}

func (l *loader) forbidExtra() bool {
	for _, src := range l.merge.Sources {
		if src.ForbidExtra {
			return true
		}
	}

	return false
}

func (l *loader) conflictError(conflicts []merge.Conflict, raws []rawSource) error {
	result := &diag.ConflictError{TypeName: l.typeName, Display: l.settings.ErrorDisplay}

	for _, conflict := range conflicts {
		locations := make([]diag.SourceLocation, 0, len(conflict.Sources))

		for _, contribution := range conflict.Sources {
			raw := raws[contribution.Source]
			locations = append(locations,
				diag.ResolveLocation(conflict.Path, raw.context(l.typeName, l.maskPaths(raw.tree)), raw.content, l.masker))
		}

		result.Conflicts = append(result.Conflicts, diag.Conflict{Path: conflict.Path, Locations: locations})
	}

	return result
}

func (l *loader) decodeError(err error, raws []rawSource, skipped map[string][]string) error {
	var group *mapper.Group
	if !errors.As(err, &group) {
		return fmt.Errorf("decoding %s: %w", l.typeName, err)
	}

	fieldErrs := diag.Extract(group, l.secrets, l.masker)
	fieldErrs = diag.Locate(fieldErrs, func(path []string) (diag.Context, []byte) {
		owner := l.owner(raws, path)

		return owner.context(l.typeName, l.maskPaths(owner.tree)), owner.content
	}, l.masker)
	fieldErrs = diag.EnrichSkipped(fieldErrs, skipped)

	return &diag.LoadError{TypeName: l.typeName, Errors: fieldErrs, Display: l.settings.ErrorDisplay}
}

// owner picks the source a field error points into: the source that won
// the top-level key of path, or the source merging would fall back to when
// no source sets it.
func (l *loader) owner(raws []rawSource, path []string) rawSource {
	firstWins := l.strategy() == merge.FirstWins

	fallback := raws[len(raws)-1]
	if firstWins {
		fallback = raws[0]
	}

	if len(path) == 0 {
		return fallback
	}

	var found *rawSource

	for i := range raws {
		node, ok := raws[i].tree.(map[string]any)
		if !ok {
			continue
		}

		if _, ok := node[path[0]]; !ok {
			continue
		}

		found = &raws[i]

		if firstWins {
			break
		}
	}

	if found == nil {
		return fallback
	}

	return *found
}

func (l *loader) runHooks(target any) error {
	if defaulter, ok := target.(Defaulter); ok {
		if defaulter.SetDefaults() {
			l.logger.Info("defaults applied", slog.String("type", l.typeName))
		}
	}

	if validator, ok := target.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("validating error: %w", err)
		}
	}

	return nil
}

// maskPaths are the secret paths of tree: the type's secret fields and
// keys matching a secret name pattern, expanded to the indices and map keys
// present in tree.
func (l *loader) maskPaths(tree any) masking.Paths {
	return l.secrets.Union(masking.NamePaths(tree, l.patterns)).Expand(tree)
}

func (l *loader) finish(start time.Time, err error) {
	outcome, fieldErrs := classify(err)

	l.options.recorder.LoadFinished(l.typeName, outcome, time.Since(start), fieldErrs)

	attrs := []any{
		slog.String("type", l.typeName),
		slog.String("outcome", string(outcome)),
		slog.Duration("duration", time.Since(start)),
		slog.String("load_id", l.loadID),
	}

	if err != nil {
		l.logger.Debug("configuration load failed", append(attrs, slog.Int("field_errors", fieldErrs))...)

		return
	}

	l.logger.Debug("configuration loaded", attrs...)
}

func classify(err error) (metrics.Outcome, int) {
	var (
		loadErr     *diag.LoadError
		conflictErr *diag.ConflictError
		expandErr   *diag.ExpandError
	)

	switch {
	case err == nil:
		return metrics.OutcomeSuccess, 0
	case errors.As(err, &loadErr):
		return metrics.OutcomeInvalid, len(loadErr.Errors)
	case errors.As(err, &conflictErr):
		return metrics.OutcomeConflict, len(conflictErr.Conflicts)
	case errors.As(err, &expandErr):
		return metrics.OutcomeExpand, len(expandErr.Errors)
	default:
		return metrics.OutcomeError, 0
	}
}

func sameNaming(a, b mapper.Naming) bool {
	if a.Style != b.Style || len(a.Mapping) != len(b.Mapping) {
		return false
	}

	for key, value := range a.Mapping {
		if other, ok := b.Mapping[key]; !ok || other != value {
			return false
		}
	}

	return true
}

// resolvesField reports whether path names a field of schema, descending
// through nested records by source key.
func resolvesField(schema *mapper.Schema, path []string) bool {
	current := schema

	for i, key := range path {
		if current == nil {
			return false
		}

		var next *mapper.Schema

		found := false

		for _, field := range current.Fields {
			if field.Key == key {
				found, next = true, field.Nested

				break
			}
		}

		if !found {
			return false
		}

		if i < len(path)-1 {
			current = next
		}
	}

	return len(path) > 0
}

// environLookup turns KEY=value entries into an expansion lookup.
func environLookup(environ []string) expand.Lookup {
	vars := make(map[string]string, len(environ))

	for _, entry := range environ {
		if name, value, ok := strings.Cut(entry, "="); ok {
			vars[name] = value
		}
	}

	return func(name string) (string, bool) {
		value, ok := vars[name]

		return value, ok
	}
}

func defaultEnviron() []string {
	return os.Environ()
}
