/*
【ファイル概要: association.go】
Association は一つの SCTP アソシエーションの TCB 全体を保持し、
単一の論理アクターというモデルをミューテックス一つで実現します。
ハンドシェイク・データ転送・シャットダウンの各ハンドラ
（receive.go, send.go, sack.go, forwardtsn.go, reconfig.go,
timers.go）はすべて a.mu を保持した状態でのみ呼ばれ、どの経路
（着信パケット、ユーザーの write、タイマー発火）から入っても
同じ排他ドメインの下で状態を更新します。
*/
package association

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/rs/xid"

	"github.com/pion/ion-sctp/pkg/chunk"
	"github.com/pion/ion-sctp/pkg/param"
	"github.com/pion/ion-sctp/pkg/queue"
	"github.com/pion/ion-sctp/pkg/rto"
	"github.com/pion/ion-sctp/pkg/stream"
	"github.com/pion/ion-sctp/pkg/timer"
)

// Logger is this package's logger; defaults to discarding all output.
var Logger logr.Logger = logr.Discard()

// Association is one peered SCTP session.
type Association struct {
	mu sync.Mutex

	id     string
	cfg    Config
	conn   Conn
	cookie *cookieJar

	state         State
	ackState      AckState
	dataSinceSack int
	isServer      bool

	myVerificationTag   uint32
	peerVerificationTag uint32

	myNextTSN               uint32
	peerLastTSN             uint32
	peerLastTSNValid        bool
	cumulativeTSNAckPoint   uint32
	advancedPeerTSNAckPoint uint32

	peerARwnd              uint32
	peerSupportsForwardTSN bool

	cong *rto.Congestion
	rtt  *rto.Estimator

	pending  *queue.Pending
	inflight *queue.Inflight
	payload  *queue.Payload
	control  *queue.Control
	dups     queue.DuplicateTracker

	streams *stream.Table

	timers          *timer.Manager
	initRetries     *timer.RetransmitCounter
	cookieRetries   *timer.RetransmitCounter
	shutdownRetries *timer.RetransmitCounter

	pendingInitRaw     []byte
	pendingCookieEcho  []byte
	pendingShutdownTSN uint32

	nextReconfigSeq       uint32
	outgoingReset         *outgoingReset
	pendingIncomingResets []incomingReset

	retransmits     uint64
	sacksSent       uint64
	forwardTSNsSent uint64
	t3Failures      int

	closed   bool
	closeErr error
	onClose  func(error)
	closedCh chan struct{}

	stopTimerLoop chan struct{}
}

// New returns an association ready for either Associate (active open)
// or receiving an inbound INIT (passive open), writing outbound
// packets to conn.
func New(cfg Config, conn Conn, cookieSecret []byte) *Association {
	a := &Association{
		id:                xid.New().String(),
		cfg:               cfg,
		conn:              conn,
		cookie:            newCookieJar(cookieSecret, cfg.CookieLifetime),
		rtt:               rto.NewEstimator(cfg.RTOInitial, cfg.RTOMin, cfg.RTOMax),
		pending:           queue.NewPending(),
		inflight:          queue.NewInflight(),
		payload:           queue.NewPayload(),
		control:           queue.NewControl(),
		streams:           stream.NewTable(cfg.AcceptQueueCapacity, cfg.MTU),
		timers:            timer.NewManager(8),
		initRetries:       timer.NewRetransmitCounter(cfg.MaxInitRetransmits),
		cookieRetries:     timer.NewRetransmitCounter(cfg.MaxInitRetransmits),
		shutdownRetries:   timer.NewRetransmitCounter(cfg.MaxAssocRetransmits),
		myVerificationTag: randomTag(),
		myNextTSN:         randomTag(),
		closedCh:          make(chan struct{}),
		stopTimerLoop:     make(chan struct{}),
	}
	a.cumulativeTSNAckPoint = a.myNextTSN - 1
	a.advancedPeerTSNAckPoint = a.myNextTSN - 1
	go a.timerLoop()
	return a
}

// InstanceID satisfies metrics.Source.
func (a *Association) InstanceID() string { return a.id }

// Cwnd satisfies metrics.Source.
func (a *Association) Cwnd() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cong == nil {
		return 0
	}
	return a.cong.Cwnd()
}

// Ssthresh satisfies metrics.Source.
func (a *Association) Ssthresh() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cong == nil {
		return 0
	}
	return a.cong.Ssthresh()
}

// RTO satisfies metrics.Source, in seconds.
func (a *Association) RTO() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rtt.RTO().Seconds()
}

// InflightBytes satisfies metrics.Source.
func (a *Association) InflightBytes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inflight.Bytes()
}

// Retransmits satisfies metrics.Source.
func (a *Association) Retransmits() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.retransmits
}

// SacksSent satisfies metrics.Source.
func (a *Association) SacksSent() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sacksSent
}

// ForwardTSNsSent satisfies metrics.Source.
func (a *Association) ForwardTSNsSent() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.forwardTSNsSent
}

// State returns the association's current state.
func (a *Association) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// OnClose registers a callback invoked once, when the association
// transitions to Closed (gracefully or via Abort/unreachability).
func (a *Association) OnClose(fn func(error)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onClose = fn
}

// Associate performs the active-open handshake step: emit INIT, start
// T1-init, and move from Closed to CookieWait.
func (a *Association) Associate() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateClosed {
		return fmt.Errorf("sctp: cannot associate from state %s", a.state)
	}
	a.isServer = false
	a.state = StateCookieWait
	return a.sendInitLocked()
}

func (a *Association) sendInitLocked() error {
	init := &chunk.Init{}
	init.InitiateTag = a.myVerificationTag
	init.AdvertisedReceiverWindowCredit = uint32(a.cfg.RecvBufferBytes)
	init.NumOutboundStreams = 0xffff
	init.NumInboundStreams = 0xffff
	init.InitialTSN = a.myNextTSN
	init.Params = a.localParamsLocked()

	raw, err := init.Marshal()
	if err != nil {
		return err
	}
	a.pendingInitRaw = raw

	pkt := &chunk.Packet{
		Header: chunk.CommonHeader{VerificationTag: 0},
		Chunks: []chunk.Chunk{init},
	}
	if err := a.writePacketLocked(pkt); err != nil {
		return err
	}
	a.timers.Schedule(timer.T1Init, a.rtt.RTO())
	return nil
}

func (a *Association) localParamsLocked() []param.Param {
	return []param.Param{
		&param.ForwardTSNSupported{},
		&param.SupportedExtensions{ChunkTypes: []uint8{uint8(chunk.TypeForwardTSN), uint8(chunk.TypeReconfig)}},
	}
}

func (a *Association) supportsForwardTSNLocked(params []param.Param) bool {
	for _, p := range params {
		if _, ok := p.(*param.ForwardTSNSupported); ok {
			return true
		}
	}
	return false
}

// OpenStream explicitly opens a local stream.
func (a *Association) OpenStream(si uint16, reliability stream.Reliability) (*stream.Stream, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, ErrClosed
	}
	return a.streams.CreateStream(si, false, reliability, a.enqueueOutbound)
}

// AcceptStream blocks until a remotely-opened stream is available.
func (a *Association) AcceptStream(ctx context.Context) (*stream.Stream, error) {
	return a.streams.Accept(ctx)
}

// enqueueOutbound is the WriteFunc every stream's Write ultimately
// calls; it is invoked from arbitrary user goroutines, so it takes the
// lock itself rather than assuming the caller holds it.
func (a *Association) enqueueOutbound(fragments []*queue.DataChunk) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	for _, f := range fragments {
		a.pending.Push(f)
	}
	a.runSendPumpLocked()
	return nil
}

// Close initiates a graceful shutdown, moving from Established to
// ShutdownPending. It blocks until SHUTDOWN-COMPLETE closes the TCB
// or the shutdown retransmit limit is exceeded.
func (a *Association) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	if a.state != StateEstablished {
		_ = a.closeLocked(nil)
		a.mu.Unlock()
		return nil
	}
	a.state = StateShutdownPending
	a.maybeSendShutdownLocked()
	a.mu.Unlock()

	<-a.closedCh
	a.mu.Lock()
	err := a.closeErr
	a.mu.Unlock()
	return err
}

// Abort immediately ends the association, sending an ABORT chunk that
// carries reason as a cause code rather than an empty ABORT.
func (a *Association) Abort(reason string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	abort := &chunk.Abort{Causes: []chunk.ErrorCause{{Code: chunk.CauseUserInitiatedAbort, Info: []byte(reason)}}}
	pkt := &chunk.Packet{Header: chunk.CommonHeader{VerificationTag: a.peerVerificationTag}, Chunks: []chunk.Chunk{abort}}
	_ = a.writePacketLocked(pkt)
	return a.closeLocked(fmt.Errorf("%w: %s", ErrAborted, reason))
}

func (a *Association) closeLocked(err error) error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.state = StateClosed
	a.timers.StopAll()
	close(a.stopTimerLoop)
	for _, s := range a.streams.All() {
		_ = s.Close()
	}
	a.closeErr = err
	close(a.closedCh)
	cb := a.onClose
	go func() {
		if cb != nil {
			cb(err)
		}
	}()
	return nil
}

func (a *Association) writePacketLocked(pkt *chunk.Packet) error {
	pkt.Header.VerificationTag = a.peerVerificationTag
	raw, err := pkt.Marshal()
	if err != nil {
		return err
	}
	return a.conn.WriteSCTPPacket(raw)
}

func (a *Association) timerLoop() {
	for {
		select {
		case ev := <-a.timers.Fired():
			a.mu.Lock()
			a.handleTimerLocked(ev.Token.Kind())
			a.mu.Unlock()
		case <-a.stopTimerLoop:
			return
		}
	}
}
