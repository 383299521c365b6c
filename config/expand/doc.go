// Package expand substitutes environment variables in configuration values.
//
// String leaves may reference variables as $VAR, ${VAR} or
// ${VAR:-default}; $$ stands for a literal dollar sign. The Mode decides
// what happens to references that cannot be resolved.
package expand
