package stream

import "errors"

var (
	// ErrAcceptQueueFull is returned by Table.CreateStream when accept
	// is true and the accept queue has no spare capacity: the
	// stream must not be added to the table in this case.
	ErrAcceptQueueFull = errors.New("sctp: accept queue is full")

	// ErrStreamClosed is returned by Write after Close. Read after
	// Close reports the read buffer's io.EOF instead.
	ErrStreamClosed = errors.New("sctp: stream closed")
)
