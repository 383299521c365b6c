// Package env reads configuration from environment variables and dotenv
// files.
//
// Variable names map to nested keys by stripping a prefix and splitting on
// a separator, so with prefix "APP_" and separator "__" the variable
// APP_DB__HOST sets db.host. Values are always strings.
package env
