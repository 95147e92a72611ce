/*
【ファイル概要: sack.go】
SACK 生成（ack-state 機械）。

ack_state は三値: Idle（直近 SACK 以降データなし）、Delayed（通常の
DATA 受信、遅延 SACK タイマーで後払い）、Immediate（ギャップ・重複・
2 個目の DATA のいずれかで即時送信）。handleDataLocked と
handleForwardTSNLocked が ack_state を上げ、ここではそれを読んで
実際に SACK を組み立てるだけにしている。
*/
package association

import (
	"github.com/pion/ion-sctp/pkg/chunk"
	"github.com/pion/ion-sctp/pkg/queue"
	"github.com/pion/ion-sctp/pkg/timer"
)

// maybeSendSackLocked emits a SACK if ack_state calls for one right
// now (Immediate), or arms the delayed-SACK timer if it doesn't
// already have one running (Delayed).
func (a *Association) maybeSendSackLocked() {
	switch a.ackState {
	case AckImmediate:
		a.sendSackLocked()
	case AckDelayed:
		if !a.timers.Active(timer.DelayedSack) {
			a.timers.Schedule(timer.DelayedSack, a.cfg.DelayedAckTimeout)
		}
	}
}

// sendSackLocked builds and queues a SACK reflecting the current
// receive state, then returns ack_state to idle.
func (a *Association) sendSackLocked() {
	sack := &chunk.Sack{
		CumulativeTSNAck: a.peerLastTSN,
		ARwnd:            a.recvWindowLocked(),
		GapAckBlocks:     toChunkGapAckBlocks(a.payload.GapAckBlocks(a.peerLastTSN)),
		DuplicateTSNs:    a.dups.Drain(),
	}
	a.control.Push(sack)
	a.ackState = AckIdle
	a.dataSinceSack = 0
	a.timers.Cancel(timer.DelayedSack)
	a.runSendPumpLocked()
}

// recvWindowLocked reports the receive window this association is
// still willing to advertise. Stream-level backpressure (the
// packetio.Buffer limits in pkg/stream) bounds actual memory use; here
// we simply advertise the configured ceiling — dynamic a_rwnd
// shrinkage for multihomed paths is out of scope for a single pipe.
func (a *Association) recvWindowLocked() uint32 {
	return uint32(a.cfg.RecvBufferBytes)
}

func toChunkGapAckBlocks(blocks []queue.GapAckBlock) []chunk.GapAckBlock {
	out := make([]chunk.GapAckBlock, len(blocks))
	for i, b := range blocks {
		out[i] = chunk.GapAckBlock{Start: b.Start, End: b.End}
	}
	return out
}
