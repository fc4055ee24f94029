package suggest

import "errors"

var (
	// ErrDisabled reports that no API key is configured.
	ErrDisabled = errors.New("suggestions disabled: no API key configured")
	// ErrTimeout reports the upstream call exceeding its deadline.
	ErrTimeout = errors.New("suggestion request timed out")
	// ErrUpstream reports a non-success status from the model API.
	ErrUpstream = errors.New("suggestion upstream error")
	// ErrUnparsable reports a model reply that is not the expected JSON.
	ErrUnparsable = errors.New("suggestion response unparsable")
)
