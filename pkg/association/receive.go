/*
【ファイル概要: receive.go】
着信パケットのディスパッチ。HandleInbound は一つのデータグラムに
含まれる全チャンクを処理し終えてから SACK の要否を判断し送信ポンプを
回す — 一つの SACK が一つの着信パケット内で処理された全 DATA をまとめて
要約するようにするためである。個々のハンドラ（Forward-TSN 生成や
RECONFIG 応答など）が途中で送信ポンプを回すこともある。
*/
package association

import (
	"time"

	"github.com/pion/ion-sctp/pkg/chunk"
	"github.com/pion/ion-sctp/pkg/param"
	"github.com/pion/ion-sctp/pkg/queue"
	"github.com/pion/ion-sctp/pkg/rto"
	"github.com/pion/ion-sctp/pkg/serial"
	"github.com/pion/ion-sctp/pkg/timer"
)

// HandleInbound parses and dispatches one inbound SCTP datagram.
func (a *Association) HandleInbound(raw []byte) error {
	pkt, err := chunk.Unmarshal(raw)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	if err := a.validateTagLocked(pkt); err != nil {
		return err
	}

	for _, c := range pkt.Chunks {
		if c == nil {
			continue // a skipped unrecognized chunk (report bits said skip)
		}
		a.dispatchLocked(c)
	}
	a.maybeSendSackLocked()
	a.runSendPumpLocked()
	return nil
}

// validateTagLocked enforces RFC 4960 §8.5: an INIT must arrive with a
// zero verification tag (no TCB exists for it yet); every other packet
// must carry the tag this endpoint handed out during the handshake.
func (a *Association) validateTagLocked(pkt *chunk.Packet) error {
	for _, c := range pkt.Chunks {
		if c == nil {
			continue
		}
		if _, ok := c.(*chunk.Init); ok {
			if pkt.Header.VerificationTag != 0 {
				return ErrWrongVerificationTag
			}
			return nil
		}
		break
	}
	if pkt.Header.VerificationTag != a.myVerificationTag {
		return ErrWrongVerificationTag
	}
	return nil
}

func (a *Association) dispatchLocked(c chunk.Chunk) {
	switch v := c.(type) {
	case *chunk.Init:
		a.handleInitLocked(v)
	case *chunk.InitAck:
		a.handleInitAckLocked(v)
	case *chunk.CookieEcho:
		a.handleCookieEchoLocked(v)
	case *chunk.CookieAck:
		a.handleCookieAckLocked()
	case *chunk.Data:
		a.handleDataLocked(v)
	case *chunk.Sack:
		a.handleSackLocked(v)
	case *chunk.ForwardTSN:
		a.handleForwardTSNLocked(v)
	case *chunk.Heartbeat:
		a.handleHeartbeatLocked(v)
	case *chunk.HeartbeatAck:
		a.handleHeartbeatAckLocked(v)
	case *chunk.Shutdown:
		a.handleShutdownLocked(v)
	case *chunk.ShutdownAck:
		a.handleShutdownAckLocked()
	case *chunk.ShutdownComplete:
		a.handleShutdownCompleteLocked()
	case *chunk.Reconfig:
		a.handleReconfigLocked(v)
	case *chunk.Abort:
		a.handleAbortLocked(v)
	case *chunk.ErrorChunk:
		Logger.Info("received ERROR chunk", "association", a.id, "causes", len(v.Causes))
	}
}

func (a *Association) handleInitLocked(c *chunk.Init) {
	if a.state != StateClosed {
		return
	}
	a.peerVerificationTag = c.InitiateTag
	a.peerARwnd = c.AdvertisedReceiverWindowCredit
	a.peerLastTSN = c.InitialTSN - 1
	a.peerLastTSNValid = true
	a.peerSupportsForwardTSN = a.supportsForwardTSNLocked(c.Params)
	a.isServer = true

	cookie := a.cookie.mint(a.myVerificationTag, a.peerVerificationTag)
	ack := &chunk.InitAck{}
	ack.InitiateTag = a.myVerificationTag
	ack.AdvertisedReceiverWindowCredit = uint32(a.cfg.RecvBufferBytes)
	ack.NumOutboundStreams = 0xffff
	ack.NumInboundStreams = 0xffff
	ack.InitialTSN = a.myNextTSN
	ack.Params = append(a.localParamsLocked(), &param.StateCookie{Cookie: cookie})

	pkt := &chunk.Packet{Header: chunk.CommonHeader{VerificationTag: a.peerVerificationTag}, Chunks: []chunk.Chunk{ack}}
	_ = a.writePacketLocked(pkt)
}

func (a *Association) handleInitAckLocked(c *chunk.InitAck) {
	if a.state != StateCookieWait {
		return
	}
	a.timers.Cancel(timer.T1Init)

	var cookie []byte
	for _, p := range c.Params {
		if sc, ok := p.(*param.StateCookie); ok {
			cookie = sc.Cookie
		}
	}
	a.peerVerificationTag = c.InitiateTag
	a.peerARwnd = c.AdvertisedReceiverWindowCredit
	a.peerLastTSN = c.InitialTSN - 1
	a.peerLastTSNValid = true
	a.peerSupportsForwardTSN = a.supportsForwardTSNLocked(c.Params)

	echo := &chunk.CookieEcho{Cookie: cookie}
	pkt := &chunk.Packet{Header: chunk.CommonHeader{VerificationTag: a.peerVerificationTag}, Chunks: []chunk.Chunk{echo}}
	raw, err := echo.Marshal()
	if err == nil {
		a.pendingCookieEcho = raw
	}
	_ = a.writePacketLocked(pkt)

	a.state = StateCookieEchoed
	a.timers.Schedule(timer.T1Cookie, a.rtt.RTO())
}

func (a *Association) handleCookieEchoLocked(c *chunk.CookieEcho) {
	myTag, peerTag, ok := a.cookie.verify(c.Cookie)
	if !ok || myTag != a.myVerificationTag {
		Logger.Info("discarding COOKIE-ECHO", "association", a.id, "error", ErrInvalidCookie)
		return
	}

	if a.state == StateClosed {
		a.peerVerificationTag = peerTag
		a.cong = rto.NewCongestion(a.cfg.MTU, int(a.peerARwnd))
		a.state = StateEstablished
	}

	ack := &chunk.CookieAck{}
	pkt := &chunk.Packet{Header: chunk.CommonHeader{VerificationTag: a.peerVerificationTag}, Chunks: []chunk.Chunk{ack}}
	_ = a.writePacketLocked(pkt)
}

func (a *Association) handleCookieAckLocked() {
	if a.state != StateCookieEchoed {
		return
	}
	a.timers.Cancel(timer.T1Cookie)
	a.cong = rto.NewCongestion(a.cfg.MTU, int(a.peerARwnd))
	a.state = StateEstablished
}

// handleDataLocked implements the receive side of DATA delivery
// (RFC 4960 §4.2) and the ack-state transitions that go with it.
func (a *Association) handleDataLocked(c *chunk.Data) {
	if a.state != StateEstablished && a.state != StateShutdownPending && a.state != StateShutdownSent {
		return
	}

	d := &queue.DataChunk{
		TSN: c.TSN, StreamID: c.StreamID, StreamSeq: c.StreamSeq, PPI: c.PPI,
		UserData: c.UserData, Beginning: c.Beginning, Ending: c.Ending, Unordered: c.Unordered,
	}

	if !a.peerLastTSNValid {
		a.peerLastTSN = c.TSN - 1
		a.peerLastTSNValid = true
	}

	if serial.LessThanOrEqual32(c.TSN, a.peerLastTSN) {
		a.dups.Push(c.TSN)
		a.ackState = AckImmediate
		return
	}

	if c.TSN == a.peerLastTSN+1 {
		hadBuffered := a.payload.Len() > 0
		a.deliverAndAdvanceLocked(d)
		if hadBuffered || a.payload.Len() > 0 {
			// this packet closed (part of) a gap, or one remains
			a.ackState = AckImmediate
		} else if a.ackState != AckImmediate {
			a.bumpDelayedOrImmediateLocked()
		}
		return
	}

	// Out-of-order: buffer only. Delivery happens when the gap fills or
	// a Forward-TSN advances past it; dispatching here too would hand
	// the same fragment to the stream twice.
	if a.payload.Has(c.TSN) {
		a.dups.Push(c.TSN)
	} else {
		_ = a.payload.Push(d)
	}
	a.ackState = AckImmediate
}

// deliverAndAdvanceLocked delivers one in-order fragment and then
// drains any buffered fragments that are now contiguous.
func (a *Association) deliverAndAdvanceLocked(d *queue.DataChunk) {
	a.dispatchToStreamLocked(d)
	a.peerLastTSN = d.TSN
	for {
		next, ok := a.payload.Front()
		if !ok || next != a.peerLastTSN+1 {
			break
		}
		nd := a.payload.Pop(next)
		a.dispatchToStreamLocked(nd)
		a.peerLastTSN = next
	}
	a.checkPendingIncomingResetsLocked()
}

func (a *Association) dispatchToStreamLocked(d *queue.DataChunk) {
	a.streams.Dispatch(d, a.enqueueOutbound)
}

// bumpDelayedOrImmediateLocked applies the "every second DATA gets an
// immediate SACK" rule (RFC 4960 §4.2 bullet 2): every other in-order,
// gap-free DATA chunk still just arms the delayed-ack timer rather
// than forcing a SACK immediately.
func (a *Association) bumpDelayedOrImmediateLocked() {
	a.dataSinceSack++
	if a.dataSinceSack%2 == 0 {
		a.ackState = AckImmediate
	} else if a.ackState != AckImmediate {
		a.ackState = AckDelayed
	}
}

func (a *Association) handleSackLocked(c *chunk.Sack) {
	// A SACK whose cumulative ack sits behind the current ack point is
	// stale (reordered on the path) and must not move state backwards.
	if serial.LessThan32(c.CumulativeTSNAck, a.cumulativeTSNAckPoint) {
		return
	}

	now := time.Now()
	a.peerARwnd = c.ARwnd

	freed, acked := a.inflight.AdvanceCumulative(c.CumulativeTSNAck)
	if freed > 0 {
		a.t3Failures = 0
	}
	a.cumulativeTSNAckPoint = c.CumulativeTSNAck
	if serial.LessThan32(a.advancedPeerTSNAckPoint, a.cumulativeTSNAckPoint) {
		a.advancedPeerTSNAckPoint = a.cumulativeTSNAckPoint
	}
	if freed > 0 && a.cong != nil {
		a.cong.OnNewDataAcked(freed)
	}
	for _, e := range acked {
		if e.EligibleForRTTSample() {
			a.rtt.Sample(now.Sub(e.SentAt))
		}
	}

	blocks := make([]queue.GapAckBlock, len(c.GapAckBlocks))
	for i, b := range c.GapAckBlocks {
		blocks[i] = queue.GapAckBlock{Start: b.Start, End: b.End}
	}
	newlyAcked, fastRtx := a.inflight.ApplyGapAcks(c.CumulativeTSNAck, blocks)
	if newlyAcked > 0 && a.cong != nil {
		a.cong.OnNewDataAcked(newlyAcked)
	}
	if len(fastRtx) > 0 && a.cong != nil {
		a.cong.OnFastRetransmit()
		abandoned := false
		for _, e := range fastRtx {
			if e.Data.ExceedsRetryBudget(now) {
				e.Data.Abandon()
				abandoned = true
				continue
			}
			a.retransmitEntryLocked(e, now)
		}
		if abandoned {
			a.maybeForwardTSNLocked()
		}
	}

	if a.inflight.Len() == 0 {
		a.timers.Cancel(timer.T3Rtx)
	} else {
		a.timers.Schedule(timer.T3Rtx, a.rtt.RTO())
	}

	a.maybeCompleteShutdownLocked()
}

func (a *Association) maybeCompleteShutdownLocked() {
	if a.state == StateShutdownPending {
		a.maybeSendShutdownLocked()
	}
	if a.state == StateShutdownReceived && a.inflight.Len() == 0 {
		ack := &chunk.ShutdownAck{}
		pkt := &chunk.Packet{Header: chunk.CommonHeader{VerificationTag: a.peerVerificationTag}, Chunks: []chunk.Chunk{ack}}
		_ = a.writePacketLocked(pkt)
		a.state = StateShutdownAckSent
	}
}

func (a *Association) maybeSendShutdownLocked() {
	if a.inflight.Len() != 0 || a.pending.Len() != 0 {
		return
	}
	sd := &chunk.Shutdown{CumulativeTSNAck: a.peerLastTSN}
	pkt := &chunk.Packet{Header: chunk.CommonHeader{VerificationTag: a.peerVerificationTag}, Chunks: []chunk.Chunk{sd}}
	_ = a.writePacketLocked(pkt)
	a.pendingShutdownTSN = a.peerLastTSN
	a.state = StateShutdownSent
	a.timers.Schedule(timer.T2Shutdown, a.rtt.RTO())
}

func (a *Association) handleHeartbeatLocked(c *chunk.Heartbeat) {
	ack := &chunk.HeartbeatAck{Info: c.Info}
	a.control.Push(ack)
}

func (a *Association) handleHeartbeatAckLocked(c *chunk.HeartbeatAck) {
	sentAt, ok := decodeHeartbeatTimestamp(c.Info.Info)
	if !ok {
		return
	}
	a.rtt.Sample(time.Since(sentAt))
}

func (a *Association) handleShutdownLocked(c *chunk.Shutdown) {
	if a.state != StateEstablished && a.state != StateShutdownPending {
		return
	}
	a.state = StateShutdownReceived
	a.maybeCompleteShutdownLocked()
}

func (a *Association) handleShutdownAckLocked() {
	if a.state != StateShutdownSent {
		return
	}
	a.timers.Cancel(timer.T2Shutdown)
	complete := &chunk.ShutdownComplete{}
	pkt := &chunk.Packet{Header: chunk.CommonHeader{VerificationTag: a.peerVerificationTag}, Chunks: []chunk.Chunk{complete}}
	_ = a.writePacketLocked(pkt)
	a.closeLocked(nil)
}

func (a *Association) handleShutdownCompleteLocked() {
	if a.state != StateShutdownAckSent {
		return
	}
	a.closeLocked(nil)
}

func (a *Association) handleAbortLocked(c *chunk.Abort) {
	var reason string
	if len(c.Causes) > 0 {
		reason = string(c.Causes[0].Info)
	}
	a.closeLocked(&abortedError{reason: reason})
}

type abortedError struct{ reason string }

func (e *abortedError) Error() string {
	if e.reason == "" {
		return ErrAborted.Error()
	}
	return ErrAborted.Error() + ": " + e.reason
}

func (e *abortedError) Unwrap() error { return ErrAborted }
