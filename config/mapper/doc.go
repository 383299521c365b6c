// Package mapper decodes generic value trees into typed structs.
//
// Keys are derived from the `conf` struct tag, a NameStyle and an optional
// field mapping. Scalars are coerced weakly, so "30" decodes into an int
// field. Every failure is collected into a *Group whose members carry the
// trail to the failing value; Walk flattens the tree into dot-paths.
//
// A field is required unless it is a pointer, has a `default` tag or the
// `optional` tag option. A nested struct whose fields are all optional is
// optional too and is decoded from an empty mapping when absent.
//
// After a clean decode, `validate` struct tags are checked with
// go-playground/validator.
package mapper
