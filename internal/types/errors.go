package types

import (
	"errors"
	"fmt"
)

// ErrInsufficientData signals that a history fetch or indicator window was
// too short for an evaluation. Callers treat it as "no signal this cycle",
// never as a fatal condition.
var ErrInsufficientData = errors.New("insufficient data")

// ConnError means there is no usable broker session: never connected, the
// session was lost, or the auth token expired. It is the caller's cue to
// reconnect; it is never fatal.
type ConnError struct {
	Broker string
	Err    error
}

func (e *ConnError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: not connected", e.Broker)
	}
	return fmt.Sprintf("%s: connection error: %v", e.Broker, e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

// RejectedError means the broker understood and refused a specific request
// (invalid symbol, insufficient margin, unknown order id). The attempt is
// dropped; the session stays valid.
type RejectedError struct {
	Broker string
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: rejected: %s", e.Broker, e.Reason)
}

func IsConnErr(err error) bool {
	var ce *ConnError
	return errors.As(err, &ce)
}

func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}
