// Package sanitizer normalizes user-supplied form input before validation.
//
// All functions are idempotent and never fail: input that cannot be normalized is
// returned trimmed so that validation reports it, rather than silently dropped.
//
// Normalization includes:
//   - Names and organizations: collapse whitespace, trim leading/trailing spaces
//   - Emails: trim and lowercase
//   - Phone numbers: convert to E.164 (+[country][number]), defaulting to India
//   - Free text: trim, normalize line endings, drop control characters
package sanitizer
