// Package parser holds the helpers shared by the format parsers in its
// sub-packages.
//
// Every parser implements config.Parser. It decodes a document into a
// generic value tree, normalized by Normalize, selects the subtree at a
// dot-separated prefix and hands it to Assign. Passing a *any target yields
// the tree itself, which is how the loader reads sources.
package parser
