package service

import "errors"

var (
	// ErrInvalidRule reports a rule failing catalog validation.
	ErrInvalidRule = errors.New("invalid scoring rule")
	// ErrNoEvents reports a full-episode submission carrying no castaway
	// events.
	ErrNoEvents = errors.New("no events submitted")
)
