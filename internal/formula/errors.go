package formula

import "errors"

// Error types. Both surface to callers as cell error values, never as Go errors.
var (
	// ErrParse reports a malformed cell address or range inside a formula
	ErrParse = errors.New("parse error")

	// ErrEvaluation reports disallowed syntax or a non-finite arithmetic result
	ErrEvaluation = errors.New("evaluation error")
)
