// Package listener serves configuration load metrics over HTTP as an Fx
// module.
package listener

import (
	"errors"
	"strings"
)

// Defaults of an unconfigured listener.
const (
	DefaultAddress = ":9090"
	DefaultPath    = "/metrics"
)

// EnvPrefix prefixes the variables a listener reads its Config from when no
// options are given, e.g. HJARTA_METRICS_ADDRESS.
const EnvPrefix = "HJARTA_METRICS_"

// ErrEmptyAddress is returned when the address is empty.
var ErrEmptyAddress = errors.New("address must not be empty")

// ErrInvalidPath is returned when the metrics path is not absolute.
var ErrInvalidPath = errors.New("metrics path must start with '/'")

// ErrListenFailed is returned when the server fails to listen on the configured address.
var ErrListenFailed = errors.New("failed to listen")

// ErrShutdownFailed is returned when the server fails to shut down gracefully.
var ErrShutdownFailed = errors.New("shutdown failed")

// ErrEmptyName is returned when the listener name is empty.
var ErrEmptyName = errors.New("listener name must not be empty")

// ErrNilGatherer is returned when no metrics gatherer is provided.
var ErrNilGatherer = errors.New("gatherer must not be nil")

// Config holds the configuration for the metrics listener.
type Config struct {
	Address string `conf:"address" default:":9090"`
	Path    string `conf:"path" default:"/metrics"`
}

// SetDefaults fills the empty fields of the Config.
func (c *Config) SetDefaults() bool {
	changed := false

	if c.Address == "" {
		c.Address = DefaultAddress
		changed = true
	}

	if c.Path == "" {
		c.Path = DefaultPath
		changed = true
	}

	return changed
}

// Validate validates the Config.
func (c *Config) Validate() error {
	if c.Address == "" {
		return ErrEmptyAddress
	}

	if !strings.HasPrefix(c.Path, "/") {
		return ErrInvalidPath
	}

	return nil
}
