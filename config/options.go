package config

import (
	"log/slog"

	"github.com/0xalexb/hjarta-config/config/expand"
	"github.com/0xalexb/hjarta-config/config/metrics"
)

// LoadOption tunes one load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	debug      bool
	bootstrap  bool
	settings   *Settings
	logger     *slog.Logger
	recorder   metrics.Recorder
	environFn  func() []string
	environSet []string
}

func newLoadOptions(opts []LoadOption) loadOptions {
	options := loadOptions{recorder: metrics.Nop{}, environFn: defaultEnviron}

	for _, apply := range opts {
		apply(&options)
	}

	return options
}

// WithDebug keeps a LoadReport for the loaded value and logs every source,
// the merged data and the field origins at debug level. Secrets are masked.
func WithDebug() LoadOption {
	return func(o *loadOptions) {
		o.debug = true
	}
}

// WithSettings uses settings instead of CurrentSettings.
func WithSettings(settings Settings) LoadOption {
	return func(o *loadOptions) {
		o.settings = &settings
	}
}

// loadingSettings marks the load that reads Settings themselves.
func loadingSettings() LoadOption {
	return func(o *loadOptions) {
		o.bootstrap = true
	}
}

// WithLogger sets the logger. slog.Default is used otherwise.
func WithLogger(logger *slog.Logger) LoadOption {
	return func(o *loadOptions) {
		o.logger = logger
	}
}

// WithRecorder reports the outcome of the load to recorder.
func WithRecorder(recorder metrics.Recorder) LoadOption {
	return func(o *loadOptions) {
		if recorder != nil {
			o.recorder = recorder
		}
	}
}

// WithEnviron replaces os.Environ as the source of environment variables,
// both for env sources and for $VAR expansion.
func WithEnviron(environ func() []string) LoadOption {
	return func(o *loadOptions) {
		if environ != nil {
			o.environFn = environ
		}
	}
}

// environ returns the environment once per load.
func (o *loadOptions) environ() []string {
	if o.environSet == nil {
		o.environSet = o.environFn()
		if o.environSet == nil {
			o.environSet = []string{}
		}
	}

	return o.environSet
}

func (o *loadOptions) lookup() expand.Lookup {
	return environLookup(o.environ())
}

func (o *loadOptions) resolveSettings() Settings {
	if o.bootstrap {
		return DefaultSettings()
	}

	if o.settings != nil {
		return *o.settings
	}

	return CurrentSettings()
}
