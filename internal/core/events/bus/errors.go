package bus

import "errors"

var (
	ErrNilEvent   = errors.New("bus: nil event")
	ErrNilHandler = errors.New("bus: nil handler")
)
