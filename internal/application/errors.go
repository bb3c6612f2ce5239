package application

import "fmt"

// InputError is a request problem the caller can fix (HTTP 400).
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

// Invalid builds an InputError with a caller-facing message.
func Invalid(format string, args ...any) error {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}
