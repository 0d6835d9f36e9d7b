package server

import (
	"errors"
	"fmt"
)

// ErrRateLimited rejects a message sent before the minimum interval since
// the session's last accepted message has elapsed. The rejection is
// permanent for that message; the sender may retry with a new one.
var ErrRateLimited = errors.New("rate limited")

// ErrBlocked rejects a message that matched the content filter.
var ErrBlocked = errors.New("message blocked")

// ValidationError reports malformed user input. No state is mutated.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// UsageError reports a command invoked with bad arguments. The Usage string
// is sent verbatim to the invoking connection.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string { return e.Usage }

// PermissionError reports an action disallowed for the session's class.
type PermissionError struct {
	Msg string
}

func (e *PermissionError) Error() string { return e.Msg }

// UnknownRoomError reports a reference to a room outside the fixed set.
type UnknownRoomError struct {
	Room string
}

func (e *UnknownRoomError) Error() string { return fmt.Sprintf("unknown room %q", e.Room) }

// NotFoundError reports a referenced entity that is not online.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%q not found", e.Name) }

// eventForError converts a handler failure into the sender-directed event
// it is reported as. Failures never propagate beyond the invoking
// connection.
func eventForError(err error) *ServerEvent {
	var (
		usageErr      *UsageError
		permissionErr *PermissionError
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		unknownRoom   *UnknownRoomError
	)

	switch {
	case errors.As(err, &usageErr):
		return commandError(usageErr.Usage)
	case errors.As(err, &permissionErr):
		return commandError(permissionErr.Msg)
	case errors.As(err, &validationErr):
		return commandError(validationErr.Msg)
	case errors.As(err, &notFoundErr):
		return commandError(fmt.Sprintf("User '%s' not found.", notFoundErr.Name))
	case errors.As(err, &unknownRoom):
		return commandError("Usage: /join [general|random|images|windows]")
	case errors.Is(err, ErrRateLimited):
		return systemMessage("You are sending messages too quickly. Slow down!")
	case errors.Is(err, ErrBlocked):
		return &ServerEvent{
			Event: EventMessageBlocked,
			Data:  "Your message contains inappropriate language and was not sent.",
		}
	default:
		return systemMessage("A server error occurred. Please try again.")
	}
}
