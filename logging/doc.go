// Package logging provides structured logging using Go's standard library log/slog.
// It outputs logs in JSON or text format and integrates with Uber's Fx
// dependency injection framework. String attributes under secret-looking
// keys can be masked with the same rules the configuration loader uses.
package logging
