package apperrors

import "errors"

var (
	// ErrNotFound signals an absent record or an empty enrichment lookup.
	ErrNotFound = errors.New("not found")

	// ErrTransient covers provider rate limits, 5xx responses and
	// not-yet-active pagination tokens. Safe to retry.
	ErrTransient = errors.New("transient provider error")

	// ErrIncomplete marks a detail response that is missing the fields a
	// valid response always carries. Retried like a transient error, then
	// degraded to bare search-result data.
	ErrIncomplete = errors.New("incomplete detail response")

	// ErrAuth is fatal: the provider rejected our credentials.
	ErrAuth = errors.New("provider authentication failed")
)
