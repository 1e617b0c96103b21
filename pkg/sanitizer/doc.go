// Package sanitizer normalizes free-form user input before validation and
// storage.
//
// All functions are idempotent and never fail: input that cannot be improved
// is returned trimmed rather than rejected, leaving rejection to the
// validators.
//
// Normalization includes:
//   - Names and free text: collapse whitespace, trim leading/trailing spaces
//   - Emails: trim and lower-case
//   - Phone numbers: E.164 (+[country][number]) when the number parses for the
//     configured default region, otherwise the trimmed input
package sanitizer
