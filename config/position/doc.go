// Package position maps field paths to the lines of the file that set them.
//
// Each indexer scans raw file content once and returns a Finder. Paths use
// the same segments as the decoded value tree, with list indices written as
// decimal strings.
package position
