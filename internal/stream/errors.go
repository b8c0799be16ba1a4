package stream

import (
	"errors"
	"fmt"
)

// Outcome sentinels. Every failed Submit returns an error matching exactly
// one of ErrTransport, ErrProtocol, ErrSolver or ErrCancelled.
var (
	// ErrTransport matches non-success statuses, missing bodies and
	// connection failures.
	ErrTransport = errors.New("transport failure")

	// ErrProtocol matches streams that broke the wire contract.
	ErrProtocol = errors.New("protocol violation")

	// ErrUnexpectedEOF is wrapped by the ProtocolError returned when the
	// stream ends before a terminal event.
	ErrUnexpectedEOF = errors.New("stream ended unexpectedly")

	// ErrSolver matches errors reported by the solver on the stream.
	ErrSolver = errors.New("solver error")

	// ErrCancelled is returned when the caller cancelled the submission.
	ErrCancelled = errors.New("optimization cancelled")

	// ErrBusy is returned by Submit when another submission is in flight.
	ErrBusy = errors.New("optimization already in progress")
)

// TransportError describes a failed HTTP exchange.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: server returned status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": transport failure"
}

// Is makes errors.Is(err, ErrTransport) hold.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError describes a stream that broke the wire contract.
type ProtocolError struct {
	// Line is the offending line, if any.
	Line   string
	Reason string
	Err    error
}

func newProtocolError(line, reason string, err error) *ProtocolError {
	return &ProtocolError{Line: line, Reason: reason, Err: err}
}

func (e *ProtocolError) Error() string {
	msg := "protocol violation: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrProtocol) hold.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// SolverError carries the message of an error event unchanged.
type SolverError struct {
	Message string
}

func (e *SolverError) Error() string {
	return "solver error: " + e.Message
}

// Is makes errors.Is(err, ErrSolver) hold.
func (e *SolverError) Is(target error) bool {
	return target == ErrSolver
}
