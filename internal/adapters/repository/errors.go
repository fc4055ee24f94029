package repository

import "errors"

// Sentinel kinds for store errors.
var (
	// ErrNotFound reports a season/episode/castaway/event/player id that
	// does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict reports a uniqueness violation, e.g. two concurrent
	// upserts racing on the same (castaway_id, episode_id) pair. Callers
	// may safely retry; scoring writes are idempotent.
	ErrConflict = errors.New("uniqueness conflict")
)
