// Package json provides a JSON parser implementation for the config package.
//
// Numbers are decoded with json.Number so integers larger than 2^53 keep
// their exact value.
package json
