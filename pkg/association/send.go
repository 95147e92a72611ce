/*
【ファイル概要: send.go】
送信ポンプ。優先順位は固定: 1) control キュー
（SACK・HEARTBEAT・SHUTDOWN・RECONFIG・FORWARD-TSN）、2) cwnd/a_rwnd
が許す限り pending から新規 DATA を払い出す。a_rwnd がゼロでも
inflight が空であれば 1 フラグメントだけプローブとして送る。
*/
package association

import (
	"time"

	"github.com/pion/ion-sctp/pkg/chunk"
	"github.com/pion/ion-sctp/pkg/timer"
)

const maxChunksPerPacket = 8

// runSendPumpLocked drains the control queue, then schedules as much
// fresh DATA as cwnd and the peer's advertised receiver window allow.
// Called after any state change that might free capacity: an inbound
// SACK, a new Write, a timer firing.
func (a *Association) runSendPumpLocked() {
	a.flushControlLocked()

	if a.state != StateEstablished && a.state != StateShutdownPending {
		return
	}

	var bundle []chunk.Chunk
	bundleBytes := chunk.CommonHeaderLength
	flushBundle := func() {
		if len(bundle) == 0 {
			return
		}
		pkt := &chunk.Packet{Chunks: bundle}
		if err := a.writePacketLocked(pkt); err != nil {
			Logger.Error(err, "failed to write DATA packet", "association", a.id)
		}
		bundle = nil
		bundleBytes = chunk.CommonHeaderLength
	}

	sentAny := false
	for {
		d := a.pending.Peek()
		if d == nil {
			a.cong.SetCwndLimited(false)
			break
		}

		inUse := a.inflight.Bytes()
		if inUse+len(d.UserData) > a.cong.Cwnd() {
			a.cong.SetCwndLimited(true)
			break
		}
		// Zero-window probing: once a_rwnd has closed and
		// nothing is outstanding, one DATA fragment may still be sent
		// ignoring a_rwnd; T3-rtx paces the next probe.
		probing := a.peerARwnd == 0 && inUse == 0
		if !probing && uint32(inUse+len(d.UserData)) > a.peerARwnd {
			break
		}

		d = a.pending.Pop()
		d.TSN = a.myNextTSN
		a.myNextTSN++
		a.inflight.Push(d, time.Now())
		d.MarkSent()

		dc := &chunk.Data{
			TSN: d.TSN, StreamID: d.StreamID, StreamSeq: d.StreamSeq, PPI: d.PPI,
			UserData: d.UserData, Beginning: d.Beginning, Ending: d.Ending, Unordered: d.Unordered,
		}
		// Bundle DATA greedily up to the path MTU; the padded
		// on-wire size of a DATA chunk is its 16-byte header+fixed
		// fields plus the payload, rounded up to 4 bytes.
		wire := 16 + len(d.UserData)
		wire += (4 - wire%4) % 4
		if len(bundle) > 0 && (bundleBytes+wire > a.cfg.MTU || len(bundle) >= maxChunksPerPacket) {
			flushBundle()
		}
		bundle = append(bundle, dc)
		bundleBytes += wire
		sentAny = true
	}
	flushBundle()

	if sentAny && !a.timers.Active(timer.T3Rtx) {
		a.timers.Schedule(timer.T3Rtx, a.rtt.RTO())
	}

	if a.state == StateShutdownPending {
		a.maybeSendShutdownLocked()
	}
}

// flushControlLocked writes every queued control chunk, each in its own
// packet: SACK/HEARTBEAT/etc. are small and latency-sensitive enough
// that coalescing them with DATA isn't worth the complexity here.
func (a *Association) flushControlLocked() {
	for {
		c := a.control.Pop()
		if c == nil {
			return
		}
		pkt := &chunk.Packet{Header: chunk.CommonHeader{VerificationTag: a.peerVerificationTag}, Chunks: []chunk.Chunk{c}}
		if err := a.writePacketLocked(pkt); err != nil {
			Logger.Error(err, "failed to write control packet", "association", a.id)
			continue
		}
		if c.Type() == chunk.TypeSack {
			a.sacksSent++
		}
		if c.Type() == chunk.TypeForwardTSN {
			a.forwardTSNsSent++
		}
	}
}
