package clierr

import "errors"

// Type categorizes a CLI-facing error for consistent messaging and exit codes.
type Type string

const (
	Validation     Type = "validation"
	Auth           Type = "auth"
	SessionExpired Type = "session_expired"
	Network        Type = "network"
	Timeout        Type = "timeout"
	API            Type = "api"
	NotFound       Type = "not_found"
	Internal       Type = "internal"
)

var exitCodes = map[Type]int{
	Validation:     2,
	Auth:           3,
	SessionExpired: 3,
	Network:        4,
	Timeout:        5,
	API:            6,
	NotFound:       7,
	Internal:       1,
}

// Error is a structured user-facing error.
type Error struct {
	Type    Type
	Message string
	Hint    string // optional follow-up advice shown below the message
	Err     error  // optional underlying error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// ExitCode is the process exit status for this error's type. Unknown types exit 1.
func (e *Error) ExitCode() int {
	if code, ok := exitCodes[e.Type]; ok {
		return code
	}
	return 1
}

// WithHint returns e with its hint set.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// New constructs a new CLI Error.
func New(t Type, msg string, err error) *Error { return &Error{Type: t, Message: msg, Err: err} }

// ExitCode returns the exit status for err: 0 for nil, the typed code for an
// *Error anywhere in the chain, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cliErr *Error
	if errors.As(err, &cliErr) {
		return cliErr.ExitCode()
	}
	return 1
}
