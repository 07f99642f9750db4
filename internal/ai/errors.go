package ai

import "fmt"

// The judge boundary distinguishes three recoverable failure kinds plus a
// fatal configuration kind. The screening pipeline degrades to a local-only
// score on any of the recoverable ones.

// TransportError covers network, timeout, auth and provider-availability
// failures. Retrying is the caller's decision: the call is billed and
// rate-limited externally.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("judge transport: %v", e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError means the judge responded but the response could not be parsed
// as the expected structure. Raw holds a bounded preview for diagnostics.
type ParseError struct {
	Err error
	Raw string
}

func (e *ParseError) Error() string { return fmt.Sprintf("judge response parse: %v", e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError means the response parsed but a required field is missing
// or malformed beyond coercion.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("judge verdict invalid: field %q: %s", e.Field, e.Reason)
}

// ConfigurationError means the judge cannot be constructed at all, typically
// a missing credential. Local-only scoring remains available.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return "judge configuration: " + e.Reason }
