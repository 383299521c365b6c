// Package diag turns load failures into readable reports.
//
// Extract flattens the decoder's error tree into FieldErrors. ResolveLocation
// points each one back at the file lines, environment variable or secret
// file that set the field. LoadError, ConflictError and ExpandError render
// the result:
//
//	Config loading errors (1)
//
//	  [timeout]  Bad string format
//	   └── FILE 'config.json', line 2
//	       "timeout": "abc"
//
// Secret values are masked in messages, inputs and quoted source lines.
package diag
