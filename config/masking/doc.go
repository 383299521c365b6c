// Package masking redacts secret values before they reach logs, error
// messages or load reports.
//
// SecretPaths finds the secret fields of a struct type by declared type and
// by name. A Masker then masks values at those paths, plus any string the
// optional Detector flags as a generated token.
package masking
