package association

import "errors"

var (
	// ErrClosed is returned by user-facing calls made after Close or
	// Abort, or once the peer unreachability limit is hit.
	ErrClosed = errors.New("sctp: association closed")

	// ErrUnreachable marks a failure from exhausting T1/T2/T3
	// retransmit limits.
	ErrUnreachable = errors.New("sctp: peer unreachable")

	// ErrInvalidCookie is logged when a COOKIE-ECHO is discarded
	// because its MAC doesn't match or it has expired.
	ErrInvalidCookie = errors.New("sctp: invalid or expired state cookie")

	// ErrUnexpectedChunk is returned by ResetStream while an earlier
	// outgoing stream reset request is still awaiting its response.
	ErrUnexpectedChunk = errors.New("sctp: unexpected chunk for current state")

	// ErrWrongVerificationTag marks a packet whose verification tag
	// does not match what this association expects.
	ErrWrongVerificationTag = errors.New("sctp: verification tag mismatch")

	// ErrAborted is the association's close error when the peer sends
	// ABORT or the local side calls Abort; open streams are closed and
	// their Reads end with io.EOF.
	ErrAborted = errors.New("sctp: association aborted")
)
