package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition    = errors.New("invalid transition")
	ErrUnblockWindowExpired = errors.New("unblock window expired")
	ErrNotFound             = errors.New("account not found")
	ErrColdStoreUnreachable = errors.New("cold store unreachable")
	ErrTransferDegraded     = errors.New("cold store transfer degraded")
	ErrForbidden            = errors.New("forbidden")
)

// TransitionError carries the human readable reason a status change was refused.
type TransitionError struct {
	Op     string
	Reason string
	Err    error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Err, e.Reason)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// InvalidTransition builds a TransitionError wrapping ErrInvalidTransition.
func InvalidTransition(op, reason string) error {
	return &TransitionError{Op: op, Reason: reason, Err: ErrInvalidTransition}
}

// UnblockWindowExpired builds a TransitionError wrapping ErrUnblockWindowExpired.
func UnblockWindowExpired(reason string) error {
	return &TransitionError{Op: "unblock", Reason: reason, Err: ErrUnblockWindowExpired}
}
