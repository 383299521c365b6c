// Package json5 provides a JSON5 parser implementation for the config
// package, built on github.com/yosuke-furukawa/json5.
package json5
