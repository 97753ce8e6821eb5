package domain

import "errors"

// Pipeline error taxonomy. Callers classify with errors.Is; the concrete
// detail travels in the wrapping message.
var (
	// ErrConfiguration marks missing credentials at initialization. Fatal
	// to startup, never to a running pipeline.
	ErrConfiguration = errors.New("configuration error")

	// ErrRateLimited marks a completion-service rate limit that survived
	// the whole retry budget.
	ErrRateLimited = errors.New("completion service rate limited")

	// ErrCompletion marks any other provider-side completion failure.
	// Not retried.
	ErrCompletion = errors.New("completion service error")

	// ErrMalformedResponse marks completion output from which no JSON
	// object could be extracted or parsed. Not retried.
	ErrMalformedResponse = errors.New("malformed completion response")

	// ErrSchemaViolation marks a parsed response that breaks the minimal
	// structural contract. Not retried.
	ErrSchemaViolation = errors.New("completion response schema violation")
)
