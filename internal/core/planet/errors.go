package planet

import "errors"

var (
	ErrInvalidConfig = errors.New("planet: invalid config")
	ErrQueueFull     = errors.New("planet: command queue is full")
	ErrUnknownMode   = errors.New("planet: unknown scene mode")
)
