package domain

import "errors"

// Terminal session errors. Each one is converted into a single error
// frame before the transport is closed.
var (
	// ErrUnauthenticated - no valid identity at connect time.
	ErrUnauthenticated = errors.New("authentication failed")
	// ErrSelfChat - counterparty resolved to the caller itself.
	ErrSelfChat = errors.New("cannot chat with yourself")
	// ErrNoUserFound - the contact identifier matches no member.
	ErrNoUserFound = errors.New("no user found")
)

// NewErrorFrame wraps a terminal session error for the client. Unknown
// faults are masked behind a generic reason.
func NewErrorFrame(err error) ErrorFrame {
	switch {
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrSelfChat),
		errors.Is(err, ErrNoUserFound):
		return ErrorFrame{Type: FrameError, Message: err.Error()}
	default:
		return ErrorFrame{Type: FrameError, Message: "connection failed"}
	}
}
