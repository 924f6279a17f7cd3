package stream

import "errors"

var (
	ErrServerClosed         = errors.New("stream server is closed")
	ErrServerAlreadyRunning = errors.New("stream server is already running")
	ErrInvalidMessage       = errors.New("invalid message")
	ErrUnknownAction        = errors.New("unknown action")
	ErrInvalidConfig        = errors.New("invalid stream configuration")
)
