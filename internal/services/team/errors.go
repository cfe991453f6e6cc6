package team

import "errors"

// Every operation validates against these before any mutation; a failed
// transition never leaves the project half-written.
var (
	ErrNotFound         = errors.New("project not found")
	ErrNotOwner         = errors.New("caller does not own this project")
	ErrNotParticipant   = errors.New("freelancer is not on the selected team")
	ErrAlreadyResponded = errors.New("freelancer already responded to this invitation")
	ErrWrongState       = errors.New("operation not allowed in the project's current state")
	ErrPaymentRequired  = errors.New("paid tier requires a confirmed payment")
	ErrNoneAvailable    = errors.New("no candidates available")
	ErrInvalidTier      = errors.New("unrecognized tier")
	ErrInvalidRole      = errors.New("unrecognized role")
)
