package config

import (
	"errors"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/0xalexb/hjarta-config/config/metrics"
)

// ErrEmptyModuleName is returned when Module is given no name.
var ErrEmptyModuleName = errors.New("module name cannot be empty")

// Module creates an Fx module that loads m into *T when first requested.
// The graph's *slog.Logger and metrics.Recorder are used unless opts
// override them. With WithDebug the module also provides the *LoadReport of
// the load, named after the module; it is nil otherwise.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func Module[T any](name string, m Merge, opts ...LoadOption) fx.Option {
	if name == "" {
		return fx.Error(ErrEmptyModuleName)
	}

	load := func(p moduleParams) (*T, error) {
		var fromGraph []LoadOption

		if p.Logger != nil {
			fromGraph = append(fromGraph, WithLogger(p.Logger))
		}

		if p.Recorder != nil {
			fromGraph = append(fromGraph, WithRecorder(p.Recorder))
		}

		withGraph := append(fromGraph, opts...)

		if len(m.Sources) == 1 {
			return Load[T](m.Sources[0], withGraph...)
		}

		return LoadMerged[T](m, withGraph...)
	}

	report := func(loaded *T) *LoadReport {
		if instance, ok := instanceReports.Load(weakKey(loaded)); ok {
			return instance.(*LoadReport) //nolint:forcetypeassert // only reports are stored
		}

		return nil
	}

	return fx.Module(name,
		fx.Provide(load),
		fx.Provide(fx.Annotate(report, fx.ResultTags(fmt.Sprintf(`name:"%s"`, name)))),
	)
}

type moduleParams struct {
	fx.In

	Logger   *slog.Logger     `optional:"true"`
	Recorder metrics.Recorder `optional:"true"`
}
