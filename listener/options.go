package listener

// Option defines a function type for configuring the metrics listener.
type Option func(*Config)

// WithAddress sets the address for the metrics listener.
func WithAddress(addr string) Option {
	return func(cfg *Config) {
		cfg.Address = addr
	}
}

// WithPath sets the URL path metrics are served at.
func WithPath(path string) Option {
	return func(cfg *Config) {
		cfg.Path = path
	}
}
