package tracker

import "errors"

// Error taxonomy. Every operation reports failures through one of these
// sentinels (possibly wrapped); callers branch with errors.Is and translate
// to their transport.
var (
	// ErrNotFound: the tracker (or the record being operated on) does not
	// exist, or belongs to a different user.
	ErrNotFound = errors.New("tracker not found")

	// ErrNoActiveSession: stop was called on a tracker that is not running.
	ErrNoActiveSession = errors.New("no active session")

	// ErrValidation: malformed input (missing name, non-positive target
	// hours, bad work-day list, unknown period).
	ErrValidation = errors.New("validation failed")

	// ErrStorage: the backing store failed, including aborted transactions.
	ErrStorage = errors.New("storage failure")
)
