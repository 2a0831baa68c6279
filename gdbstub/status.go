package gdbstub

import "fmt"

// Status is the stub's internal error taxonomy. It implements error, and
// every value knows how to render itself as the two hex digits GDB sees in
// an "E NN" reply.
//
// Only a handful of statuses are ever shown to GDB; the rest terminate a
// Run call without a wire-level reply (see (Status).terminatesRun).
type Status int

const (
	// StatusOK is not an error; callers never see it wrapped in a Status value.
	StatusOK Status = iota
	StatusInvalidParameter
	StatusOutOfMemory
	StatusProtocolViolation
	StatusNotSupported
	StatusNotFound
	StatusBufferOverflow
	StatusPeerDisconnected
	StatusTryAgain
	StatusInternal
)

var statusNames = [...]string{
	StatusOK:                "ok",
	StatusInvalidParameter:  "invalid parameter",
	StatusOutOfMemory:       "out of memory",
	StatusProtocolViolation: "protocol violation",
	StatusNotSupported:      "not supported",
	StatusNotFound:          "not found",
	StatusBufferOverflow:    "buffer overflow",
	StatusPeerDisconnected:  "peer disconnected",
	StatusTryAgain:          "try again",
	StatusInternal:          "internal error",
}

func (s Status) String() string {
	if int(s) < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}

	return statusNames[s]
}

func (s Status) Error() string { return "gdbstub: " + s.String() }

// wireByte returns the low byte of the negated status code, per spec: the
// E<hh> reply is "the low byte of the negated internal status code".
func (s Status) wireByte() byte {
	return byte(-int8(s)) //nolint:gosec // intentional wraparound per wire format
}

// terminatesRun reports whether this status ends the receive loop rather
// than being surfaced to GDB as an E NN reply.
func (s Status) terminatesRun() bool {
	switch s {
	case StatusPeerDisconnected, StatusTryAgain, StatusInternal:
		return true
	default:
		return false
	}
}

// statusError wraps an adapter-returned error together with the Status it
// should be reported as, so callers can both log the underlying cause and
// render the correct wire code.
type statusError struct {
	status Status
	cause  error
}

func (e *statusError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.status, e.cause)
	}

	return e.status.Error()
}

func (e *statusError) Unwrap() error { return e.cause }

func wrapStatus(status Status, cause error) error {
	if cause == nil {
		return status
	}

	return &statusError{status: status, cause: cause}
}

// asStatus extracts the Status a reply should encode from an arbitrary
// error, defaulting to StatusInternal for anything unrecognized.
func asStatus(err error) Status {
	if err == nil {
		return StatusOK
	}

	var se *statusError
	if ok := asStatusError(err, &se); ok {
		return se.status
	}

	if s, ok := err.(Status); ok { //nolint:errorlint // Status itself is a plain value type
		return s
	}

	return StatusInternal
}

func asStatusError(err error, target **statusError) bool {
	for err != nil {
		if se, ok := err.(*statusError); ok { //nolint:errorlint // walking manually below
			*target = se

			return true
		}

		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}

		err = u.Unwrap()
	}

	return false
}
