package timer

// RetransmitCounter tracks how many times a handshake/shutdown timer
// (T1-init, T1-cookie, T2-shutdown) has fired without success, so the
// caller can apply exponential RTO backoff and give up past a limit
//.
type RetransmitCounter struct {
	limit int
	count int
}

// NewRetransmitCounter returns a counter that reports exhausted after
// limit retransmissions.
func NewRetransmitCounter(limit int) *RetransmitCounter {
	return &RetransmitCounter{limit: limit}
}

// Increment records one more retransmission attempt and reports
// whether the caller may still retry. A false return means the limit
// has been exceeded and the caller should abort with an unreachable
// error instead of sending another retransmission.
func (r *RetransmitCounter) Increment() (ok bool) {
	r.count++
	return r.count <= r.limit
}

// Count reports the number of retransmissions recorded so far.
func (r *RetransmitCounter) Count() int { return r.count }

// Reset clears the counter, e.g. once the handshake step it guards
// succeeds.
func (r *RetransmitCounter) Reset() { r.count = 0 }
