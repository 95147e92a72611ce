/*
【ファイル概要: timers.go】
各タイマー発火のディスパッチ。T1/T2/T3 はいずれも自分がトリガーした
チャンクを指数 RTO バックオフ付きで再送し、上限回数を超えると
association を諦める。T3-rtx だけは単一チャンクの再送ではなく
輻輳制御の反応（ssthresh/cwnd の変更）も伴う（RFC 4960 §7.2）。
*/
package association

import (
	"time"

	"github.com/pion/ion-sctp/pkg/chunk"
	"github.com/pion/ion-sctp/pkg/param"
	"github.com/pion/ion-sctp/pkg/queue"
	"github.com/pion/ion-sctp/pkg/timer"
)

func (a *Association) handleTimerLocked(kind timer.Kind) {
	switch kind {
	case timer.T1Init:
		a.handleT1InitLocked()
	case timer.T1Cookie:
		a.handleT1CookieLocked()
	case timer.T2Shutdown:
		a.handleT2ShutdownLocked()
	case timer.T3Rtx:
		a.handleT3RtxLocked()
	case timer.DelayedSack:
		a.ackState = AckImmediate
		a.maybeSendSackLocked()
	case timer.Reconfig:
		a.handleReconfigTimeoutLocked()
	}
}

func (a *Association) handleT1InitLocked() {
	if a.state != StateCookieWait {
		return
	}
	if !a.initRetries.Increment() {
		a.closeLocked(ErrUnreachable)
		return
	}
	a.rtt.BackOff()
	_ = a.sendInitLocked()
}

func (a *Association) handleT1CookieLocked() {
	if a.state != StateCookieEchoed {
		return
	}
	if !a.cookieRetries.Increment() {
		a.closeLocked(ErrUnreachable)
		return
	}
	a.rtt.BackOff()
	pkt := &chunk.Packet{Header: chunk.CommonHeader{VerificationTag: a.peerVerificationTag}}
	echo := &chunk.CookieEcho{}
	if err := echo.Unmarshal(a.pendingCookieEcho); err == nil {
		pkt.Chunks = []chunk.Chunk{echo}
		_ = a.writePacketLocked(pkt)
	}
	a.timers.Schedule(timer.T1Cookie, a.rtt.RTO())
}

func (a *Association) handleT2ShutdownLocked() {
	if a.state != StateShutdownSent {
		return
	}
	if !a.shutdownRetries.Increment() {
		a.closeLocked(ErrUnreachable)
		return
	}
	a.rtt.BackOff()
	sd := &chunk.Shutdown{CumulativeTSNAck: a.pendingShutdownTSN}
	pkt := &chunk.Packet{Header: chunk.CommonHeader{VerificationTag: a.peerVerificationTag}, Chunks: []chunk.Chunk{sd}}
	_ = a.writePacketLocked(pkt)
	a.timers.Schedule(timer.T2Shutdown, a.rtt.RTO())
}

// handleT3RtxLocked reacts to a retransmit-timer expiry:
// the congestion window collapses and every still-unacked fragment is
// resent, budget permitting.
func (a *Association) handleT3RtxLocked() {
	if a.inflight.Len() == 0 {
		return
	}
	a.t3Failures++
	if a.t3Failures > a.cfg.MaxAssocRetransmits {
		_ = a.closeLocked(ErrUnreachable)
		return
	}
	a.cong.OnTimeout()
	a.rtt.BackOff()

	now := time.Now()
	budget := a.cong.Cwnd()
	abandoned := false
	for _, e := range a.inflight.All() {
		if e.Acked {
			continue
		}
		if e.Data.ExceedsRetryBudget(now) {
			e.Data.Abandon()
			abandoned = true
			continue
		}
		if len(e.Data.UserData) > budget {
			break
		}
		budget -= len(e.Data.UserData)
		a.retransmitEntryLocked(e, now)
	}
	if abandoned {
		a.maybeForwardTSNLocked()
	}
	if a.inflight.Len() > 0 {
		a.timers.Schedule(timer.T3Rtx, a.rtt.RTO())
	}
}

func (a *Association) handleReconfigTimeoutLocked() {
	if a.outgoingReset == nil {
		return
	}
	a.rtt.BackOff()
	req := &param.OutgoingResetRequest{
		ReconfigRequestSequenceNumber: a.outgoingReset.seq,
		SenderLastAssignedTSN:         a.lastAssignedTSNLocked(),
		StreamIdentifiers:             a.outgoingReset.streams,
	}
	a.control.Push(&chunk.Reconfig{Params: []param.Param{req}})
	a.timers.Schedule(timer.Reconfig, a.rtt.RTO())
	a.runSendPumpLocked()
}

// retransmitEntryLocked resends one inflight fragment with its
// original TSN — unlike a fresh send, a retransmit must never renumber,
// since Karn's rule depends on this distinction being kept exact.
func (a *Association) retransmitEntryLocked(e *queue.Entry, now time.Time) {
	a.inflight.MarkRetransmitted(e, now)
	a.retransmits++
	dc := &chunk.Data{
		TSN: e.Data.TSN, StreamID: e.Data.StreamID, StreamSeq: e.Data.StreamSeq, PPI: e.Data.PPI,
		UserData: e.Data.UserData, Beginning: e.Data.Beginning, Ending: e.Data.Ending, Unordered: e.Data.Unordered,
	}
	pkt := &chunk.Packet{Header: chunk.CommonHeader{VerificationTag: a.peerVerificationTag}, Chunks: []chunk.Chunk{dc}}
	_ = a.writePacketLocked(pkt)
}
