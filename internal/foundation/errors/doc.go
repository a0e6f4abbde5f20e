// Package errors provides foundational, type-safe error primitives used across fittext.
//
// This package contains classified error types and helpers for robust error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, macro, table, filesystem, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Retry behavior (never, immediate, backoff, user)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLI adapter for exit codes and error presentation
//
// The build-time faults of the macro pipeline are exposed as sentinels
// (ErrNotAStringLiteral, ErrMissingContentArgument, ErrMalformedExistingTable)
// so callers can match them with errors.Is through any amount of wrapping:
//
//	err := errors.MacroError(errors.ErrNotAStringLiteral, "accessibleText requires a string literal").
//		WithContext("file", path).
//		WithContext("line", line).
//		Build()
package errors
