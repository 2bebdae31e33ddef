package schema

import "errors"

// SyntaxError indicates schema text that does not parse as the
// expected structure. Compilation failures are local and recoverable:
// the caller may retry with corrected text, and any previously
// accepted schema is left untouched.
type SyntaxError struct {
	err error
}

func (e *SyntaxError) Error() string {
	return "invalid schema text: " + e.err.Error()
}

func (e *SyntaxError) Unwrap() error {
	return e.err
}

// IsSyntaxError returns true if err is a schema syntax error.
func IsSyntaxError(err error) bool {
	var syntaxErr *SyntaxError
	return errors.As(err, &syntaxErr)
}
