// /internal/trigger/errors.go
package trigger

import (
	"errors"
	"fmt"
)

// ErrAborted signals that the user cancelled a multi-step prompt. It is not a
// failure: the dispatcher unwinds silently, without logging or user messaging.
var ErrAborted = errors.New("command aborted by user")

// UserError is a validation or usage failure meant for the user's eyes. The
// dispatcher renders its text to the originating channel and aborts the
// reaction without log noise. Anything else coming out of a reaction is
// treated as internal: logged in full, surfaced as a generic failure notice.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

func Userf(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}
