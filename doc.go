// Package hjarta wires structured configuration into Uber Fx applications.
//
// NewApp builds an Fx application with a slog logger. WithConfig loads a
// config.Merge into a typed value the rest of the graph can depend on, and
// WithMetricsListener exposes the outcome of every load as Prometheus
// metrics. The config package can also be used on its own.
package hjarta
