package hjarta

import (
	"go.uber.org/fx"

	"github.com/0xalexb/hjarta-config/config"
	"github.com/0xalexb/hjarta-config/listener"
)

// Options holds configuration settings for the application.
type Options struct {
	Modules   []fx.Option
	LogLevel  string
	LogFormat string
}

// Option defines a function type for applying configuration options.
type Option func(*Options)

// WithModules adds Fx modules to the application.
func WithModules(modules ...fx.Option) Option {
	return func(opts *Options) {
		opts.Modules = append(opts.Modules, modules...)
	}
}

// WithConfig adds a module loading m into *T. The name is the Fx module
// name and the named tag of the *config.LoadReport it provides.
// Call multiple times with different names and types to load several
// configurations.
func WithConfig[T any](name string, m config.Merge, opts ...config.LoadOption) Option {
	return func(o *Options) {
		o.Modules = append(o.Modules, config.Module[T](name, m, opts...))
	}
}

// WithMetricsListener serves configuration load metrics over HTTP. Every
// config module of the application records into it.
func WithMetricsListener(opts ...listener.Option) Option {
	return func(o *Options) {
		o.Modules = append(o.Modules, listener.NewModule("metrics", opts...))
	}
}

// WithLogLevel sets the log level for the application.
// Valid levels are: "debug", "info", "warn", "error".
// If not set or invalid, defaults to "info".
func WithLogLevel(level string) Option {
	return func(opts *Options) {
		opts.LogLevel = level
	}
}

// WithLogFormat selects "json" (default) or "text" log output.
func WithLogFormat(format string) Option {
	return func(opts *Options) {
		opts.LogFormat = format
	}
}
