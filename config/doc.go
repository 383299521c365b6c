// Package config loads structured configuration into Go structs.
//
// A Source names where values come from: a JSON, JSON5, TOML, YAML or INI
// file, a dotenv file, a directory of Docker secrets or the process
// environment. Load reads one source; LoadMerged deep-merges several of
// them by a merge.Strategy before decoding:
//
//	cfg, err := config.LoadMerged[AppConfig](config.Merge{
//	    Sources: []config.Source{
//	        {File: "config.yaml"},
//	        {File: "config.local.toml"},
//	        {Prefix: "APP_"},
//	    },
//	    Strategy: merge.LastWins,
//	})
//
// Struct fields map to source keys by a name style (lower_snake by default),
// a `conf:"key"` tag or Source.FieldMapping. Fields are required unless they
// carry a `default` tag, are pointers or are tagged `conf:",optional"`.
//
// # Errors
//
// Every failing field of one load is reported together in a *diag.LoadError
// that points at the file and line, or the environment variable, the value
// came from:
//
//	AppConfig loading errors (1)
//
//	  [port]  Bad string format
//	   └── FILE 'config.yaml', line 2
//	       port: abc
//
// Values of secret fields, and lines sharing a line with them, are masked
// in errors, debug logs and load reports.
//
// # Extension points
//
// Provider keeps the lower-level contract of a Parser and a DataFetcher for
// callers that bring their own data. Targets implementing Defaulter and
// Validator are completed and checked after decoding.
//
// # Debugging
//
// WithDebug logs every source, the merged data and the source each field
// came from, and keeps a LoadReport retrievable with GetLoadReport.
package config
