package litter

import "errors"

var (
	ErrInvalidConfig   = errors.New("invalid litter configuration")
	ErrNoArchetypes    = errors.New("litter registry has no archetypes")
	ErrPoolCorrupted   = errors.New("litter pool bookkeeping is inconsistent")
	ErrMalformedPacked = errors.New("malformed packed litter entry")
)
