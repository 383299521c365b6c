// Package merge combines generic value trees from several configuration sources.
//
// A value tree is built from map[string]any, []any and scalars. Merge reduces
// a sequence of trees pairwise under a Strategy, DetectConflicts supports the
// RaiseOnConflict strategy, and FieldOrigins attributes each merged leaf to
// the source that provided it.
//
// Lists are never merged element-wise: a list is a leaf and is replaced whole.
package merge
