package config

import (
	"log/slog"
	"reflect"
	"runtime"
	"sync"
	"weak"

	"github.com/0xalexb/hjarta-config/config/masking"
	"github.com/0xalexb/hjarta-config/config/merge"
)

// LoadReport describes how a value was loaded. Every value in it is masked.
type LoadReport struct {
	LoadID   string `json:"load_id"`
	TypeName string `json:"type_name"`
	// Strategy is nil for single-source loads.
	Strategy     *merge.Strategy     `json:"strategy,omitempty"`
	Sources      []merge.SourceEntry `json:"sources"`
	FieldOrigins []merge.FieldOrigin `json:"field_origins"`
	MergedData   any                 `json:"merged_data"`
}

const reportNotFound = "load report not found, enable it with config.WithDebug()"

//nolint:gochecknoglobals // side tables keyed by loaded values and target types.
var (
	instanceReports sync.Map // weak.Pointer[T] -> *LoadReport
	typeReports     sync.Map // reflect.Type -> *LoadReport
)

// GetLoadReport returns the report of a value loaded in debug mode. For
// any other value it logs a warning and returns nil.
func GetLoadReport[T any](instance *T) *LoadReport {
	if instance != nil {
		if report, ok := instanceReports.Load(weakKey(instance)); ok {
			return report.(*LoadReport) //nolint:forcetypeassert // only reports are stored
		}
	}

	slog.Warn(reportNotFound, slog.String("type", reflect.TypeFor[T]().String()))

	return nil
}

// GetTypeLoadReport returns the report of the latest debug load of T,
// including loads that failed.
func GetTypeLoadReport[T any]() *LoadReport {
	if report, ok := typeReports.Load(reflect.TypeFor[T]()); ok {
		return report.(*LoadReport) //nolint:forcetypeassert // only reports are stored
	}

	slog.Warn(reportNotFound, slog.String("type", reflect.TypeFor[T]().String()))

	return nil
}

func weakKey[T any](instance *T) weak.Pointer[T] {
	return weak.Make(instance)
}

// attachReport keeps report while instance is reachable.
func attachReport[T any](instance *T, report *LoadReport) {
	key := weakKey(instance)
	instanceReports.Store(key, report)

	runtime.AddCleanup(instance, func(key weak.Pointer[T]) {
		instanceReports.Delete(key)
	}, key)
}

func storeTypeReport(typ reflect.Type, report *LoadReport) {
	typeReports.Store(typ, report)
}

// report builds the masked report of one load.
func (l *loader) report(raws []rawSource, trees []any, merged any) *LoadReport {
	entries := make([]merge.SourceEntry, len(raws))

	secretPaths := l.secrets
	for i, raw := range raws {
		entries[i] = merge.SourceEntry{
			Index:      i,
			FilePath:   raw.path,
			LoaderType: string(raw.kind),
			RawData:    raw.tree,
		}
		secretPaths = secretPaths.Union(masking.NamePaths(raw.tree, l.patterns))
	}

	origins := merge.FieldOrigins(trees, entries, l.strategy())

	report := &LoadReport{
		LoadID:       l.loadID,
		TypeName:     l.typeName,
		Sources:      l.masker.Sources(entries, secretPaths),
		FieldOrigins: l.masker.Origins(origins, secretPaths),
		MergedData:   l.masker.Tree(merged, secretPaths),
	}

	if !l.single {
		strategy := l.merge.Strategy
		report.Strategy = &strategy
	}

	l.logger.Debug("merged data",
		slog.String("type", l.typeName),
		slog.Any("data", report.MergedData),
		slog.String("load_id", l.loadID),
	)
	l.logger.Debug("field origins",
		slog.String("type", l.typeName),
		slog.Any("origins", report.FieldOrigins),
		slog.String("load_id", l.loadID),
	)

	return report
}
