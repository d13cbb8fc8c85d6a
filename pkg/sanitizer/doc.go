// Package sanitizer cleans customer-entered text before it is validated
// or forwarded to the travel API. Every function is idempotent and never
// fails; input it cannot improve comes back trimmed.
package sanitizer
