// Package sanitizer normalizes operator input before validation and storage.
//
// All functions are idempotent. Invalid input is returned trimmed but otherwise
// untouched so that validation can report it.
//
// Normalization includes:
//   - Names and addresses: trim and collapse runs of whitespace
//   - Phone numbers: E.164 format, national numbers parsed in a default region
package sanitizer
