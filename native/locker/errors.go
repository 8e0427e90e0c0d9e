package locker

import "errors"

var (
	ErrNilState         = errors.New("locker: state not configured")
	ErrNilBank          = errors.New("locker: bank not configured")
	ErrInvalidAmount    = errors.New("locker: amount must be positive")
	ErrLockNotFound     = errors.New("locker: lock not found")
	ErrNotOwner         = errors.New("locker: caller is not the lock owner")
	ErrDurationTooLong  = errors.New("locker: lock duration exceeds maximum")
	ErrEndBeforeCurrent = errors.New("locker: new end before current end")
	ErrStillLocked      = errors.New("locker: lock has not expired")
	ErrExcessWithdraw   = errors.New("locker: withdraw exceeds locked amount")
	ErrZeroRecipient    = errors.New("locker: recipient is the zero address")
)
