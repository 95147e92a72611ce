package association

// State is the association's position in the handshake/data-transfer/
// shutdown state machine.
type State int

const (
	StateClosed State = iota
	StateCookieWait
	StateCookieEchoed
	StateEstablished
	StateShutdownPending
	StateShutdownSent
	StateShutdownReceived
	StateShutdownAckSent
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateCookieWait:
		return "cookie-wait"
	case StateCookieEchoed:
		return "cookie-echoed"
	case StateEstablished:
		return "established"
	case StateShutdownPending:
		return "shutdown-pending"
	case StateShutdownSent:
		return "shutdown-sent"
	case StateShutdownReceived:
		return "shutdown-received"
	case StateShutdownAckSent:
		return "shutdown-ack-sent"
	default:
		return "unknown"
	}
}

// AckState is the 4-state SACK scheduling machine: DATA-in-order
// moves to Delayed, a gap/duplicate or every-second-DATA
// moves to Immediate, and emitting a SACK resets to Idle. AckFast is
// declared but never entered: no handler sets it and
// maybeSendSackLocked does not act on it.
type AckState int

const (
	AckIdle AckState = iota
	AckDelayed
	AckImmediate
	AckFast
)

func (a AckState) String() string {
	switch a {
	case AckIdle:
		return "idle"
	case AckDelayed:
		return "delayed"
	case AckImmediate:
		return "immediate"
	case AckFast:
		return "fast"
	default:
		return "unknown"
	}
}
