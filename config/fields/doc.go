// Package fields provides value types for configuration structs.
//
// SecretString and PaymentCardNumber implement Secret; fields declared with
// them are masked in error reports, load reports and logs regardless of the
// field's name. ByteSize parses human-friendly sizes such as "1.5 GB".
package fields
