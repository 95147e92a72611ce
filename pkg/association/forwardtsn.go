/*
【ファイル概要: forwardtsn.go】
Forward-TSN の生成（送信側）と消費（受信側）。生成は inflight の先頭
から「abandoned な連続run」を見つけ、ストリームごとの最大 SSN に
畳み込む（RFC 3758 §3.2）。
*/
package association

import (
	"github.com/pion/ion-sctp/pkg/chunk"
	"github.com/pion/ion-sctp/pkg/serial"
)

// maybeForwardTSNLocked looks for a contiguous run of already-abandoned
// fragments at the head of the inflight queue and, if there is one,
// drops it, advances advancedPeerTSNAckPoint to the run's last TSN and
// queues a Forward-TSN naming that TSN plus, for each stream in the run,
// the highest SSN seen in the run (RFC 3758 §3.2), whether or not that
// fragment ends its message. It then runs the send pump, so the
// Forward-TSN is written out before this returns.
func (a *Association) maybeForwardTSNLocked() {
	run := a.inflight.AbandonedRun()
	if len(run) == 0 {
		return
	}

	newCum := a.cumulativeTSNAckPoint
	maxSSN := make(map[uint16]uint16)
	order := make([]uint16, 0, 4)
	for _, e := range run {
		newCum = e.Data.TSN
		si := e.Data.StreamID
		if _, seen := maxSSN[si]; !seen {
			order = append(order, si)
		}
		if cur, ok := maxSSN[si]; !ok || serial.GreaterThan16(e.Data.StreamSeq, cur) {
			maxSSN[si] = e.Data.StreamSeq
		}
	}

	streams := make([]chunk.ForwardTSNStream, 0, len(order))
	for _, si := range order {
		streams = append(streams, chunk.ForwardTSNStream{StreamID: si, StreamSeq: maxSSN[si]})
	}

	a.advancedPeerTSNAckPoint = serial.Max32(a.advancedPeerTSNAckPoint, newCum)
	a.inflight.DropRun(len(run))
	a.control.Push(&chunk.ForwardTSN{NewCumulativeTSN: newCum, Streams: streams})
	a.runSendPumpLocked()
}

// handleForwardTSNLocked implements the receive side: advance
// peer_last_tsn, drop now-unreachable reassembly entries, skip each
// named stream's ordered delivery past its reported ssn, and decide
// delayed vs immediate SACK based on whether a gap remains.
func (a *Association) handleForwardTSNLocked(c *chunk.ForwardTSN) {
	if a.peerLastTSNValid && serial.LessThanOrEqual32(c.NewCumulativeTSN, a.peerLastTSN) {
		a.ackState = AckImmediate // S6: duplicate Forward-TSN still elicits a SACK
		return
	}

	a.peerLastTSN = c.NewCumulativeTSN
	a.peerLastTSNValid = true
	a.payload.DropThrough(c.NewCumulativeTSN)

	for {
		next, ok := a.payload.Front()
		if !ok || next != a.peerLastTSN+1 {
			break
		}
		d := a.payload.Pop(next)
		a.dispatchToStreamLocked(d)
		a.peerLastTSN = next
	}

	for _, s := range c.Streams {
		a.streams.SkipStream(s.StreamID, s.StreamSeq)
	}
	a.checkPendingIncomingResetsLocked()

	if a.payload.HasGapAfter(a.peerLastTSN) {
		a.ackState = AckImmediate // S5
	} else if a.ackState != AckImmediate {
		a.ackState = AckDelayed // S3, S4
	}
}
