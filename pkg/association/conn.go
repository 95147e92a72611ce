package association

// Conn is the minimal substrate contract this engine needs: a single,
// already-established bidirectional datagram pipe. Multihoming,
// address resolution, and the datagram socket's own logging are
// explicitly out of scope — a caller who wants those wraps them below
// this interface.
type Conn interface {
	// WriteSCTPPacket sends one fully assembled SCTP packet (common
	// header plus chunks). Implementations must preserve datagram
	// boundaries: one call is one datagram.
	WriteSCTPPacket(p []byte) error
}
