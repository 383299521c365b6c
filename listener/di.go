package listener

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/0xalexb/hjarta-config/config"
	"github.com/0xalexb/hjarta-config/config/metrics"
)

// NewModule creates an Fx module serving configuration load metrics.
//
// The module owns a Prometheus registry and provides a metrics.Recorder
// writing to it, which config.Module picks up for every load in the graph.
// The name is used as both the module name and the DI named tag for Config.
// If any options are passed, Config is built from them; otherwise it is
// loaded from EnvPrefix variables.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func NewModule(name string, opts ...Option) fx.Option {
	if name == "" {
		return fx.Error(ErrEmptyName)
	}

	registry := prometheus.NewRegistry()
	tag := fmt.Sprintf(`name:"%s"`, name)

	moduleOpts := []fx.Option{
		fx.Supply(fx.Annotate(metrics.NewPrometheus(registry), fx.As(new(metrics.Recorder)))),
	}

	if len(opts) > 0 {
		var cfg Config

		for _, apply := range opts {
			apply(&cfg)
		}

		moduleOpts = append(moduleOpts, fx.Supply(fx.Annotate(cfg, fx.ResultTags(tag))))
	} else {
		moduleOpts = append(moduleOpts, fx.Provide(fx.Annotate(loadConfig, fx.ResultTags(tag))))
	}

	moduleOpts = append(moduleOpts, fx.Invoke(
		fx.Annotate(
			func(lifecycle fx.Lifecycle, shutdowner fx.Shutdowner, listenerCfg Config) error {
				srv, err := NewServer(name, registry, listenerCfg, func() {
					shutdownErr := shutdowner.Shutdown()
					if shutdownErr != nil {
						slog.Error("failed to trigger shutdown", "name", name, "error", shutdownErr)
					}
				})
				if err != nil {
					return err
				}

				lifecycle.Append(fx.Hook{
					OnStart: srv.Start,
					OnStop:  srv.Stop,
				})

				return nil
			},
			fx.ParamTags("", "", tag),
		),
	))

	return fx.Module(name, moduleOpts...)
}

func loadConfig() (Config, error) {
	cfg, err := config.Load[Config](config.Source{Prefix: EnvPrefix})
	if err != nil {
		return Config{}, fmt.Errorf("loading listener config: %w", err)
	}

	return *cfg, nil
}
