/*
【ファイル概要: reconfig.go】
ストリームリセット（RECONFIG, RFC 6525）。

送信側は一度に一つの outgoing reset しか追跡しない（RFC 6525 も
実装に同時要求の直列化を許容している）。受信側は「要求された SI が
すべて配送済みか」を判定し、済んでいなければ InProgress を返して
pendingIncomingResets に積み、その後 peer_last_tsn が進むたびに
再評価する。
*/
package association

import (
	"github.com/pion/ion-sctp/pkg/chunk"
	"github.com/pion/ion-sctp/pkg/param"
	"github.com/pion/ion-sctp/pkg/serial"
	"github.com/pion/ion-sctp/pkg/timer"
)

// outgoingReset tracks this association's one in-flight stream-reset
// request.
type outgoingReset struct {
	seq     uint32
	streams []uint16
}

// incomingReset is a peer's reset request this association could not
// honor immediately because data up to SenderLastAssignedTSN had not
// all been delivered yet.
type incomingReset struct {
	responseSeq uint32
	lastTSN     uint32
	streams     []uint16
}

// ResetStream asks the peer to reset si. Only one outgoing reset may
// be in flight at a time; a second call while one is pending fails
// immediately.
func (a *Association) ResetStream(si uint16) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	if a.outgoingReset != nil {
		return ErrUnexpectedChunk
	}

	a.nextReconfigSeq++
	seq := a.nextReconfigSeq
	a.outgoingReset = &outgoingReset{seq: seq, streams: []uint16{si}}

	req := &param.OutgoingResetRequest{
		ReconfigRequestSequenceNumber: seq,
		SenderLastAssignedTSN:         a.lastAssignedTSNLocked(),
		StreamIdentifiers:             []uint16{si},
	}
	a.control.Push(&chunk.Reconfig{Params: []param.Param{req}})
	a.timers.Schedule(timer.Reconfig, a.rtt.RTO())
	a.runSendPumpLocked()
	return nil
}

func (a *Association) lastAssignedTSNLocked() uint32 {
	if a.myNextTSN == 0 {
		return 0
	}
	return a.myNextTSN - 1
}

func (a *Association) handleReconfigLocked(c *chunk.Reconfig) {
	for _, p := range c.Params {
		switch v := p.(type) {
		case *param.OutgoingResetRequest:
			a.handleIncomingResetRequestLocked(v)
		case *param.ReconfigResponse:
			a.handleReconfigResponseLocked(v)
		}
	}
}

func (a *Association) handleIncomingResetRequestLocked(req *param.OutgoingResetRequest) {
	resp := &param.ReconfigResponse{ReconfigResponseSequenceNumber: req.ReconfigRequestSequenceNumber}

	if !a.peerLastTSNValid || serial.GreaterThan32(req.SenderLastAssignedTSN, a.peerLastTSN) {
		resp.Result = param.ResultInProgress
		a.pendingIncomingResets = append(a.pendingIncomingResets, incomingReset{
			responseSeq: req.ReconfigRequestSequenceNumber,
			lastTSN:     req.SenderLastAssignedTSN,
			streams:     req.StreamIdentifiers,
		})
	} else {
		for _, si := range req.StreamIdentifiers {
			a.streams.Reset(si)
		}
		resp.Result = param.ResultSuccessPerformed
	}

	a.control.Push(&chunk.Reconfig{Params: []param.Param{resp}})
	a.runSendPumpLocked()
}

// checkPendingIncomingResetsLocked re-evaluates deferred incoming
// reset requests; called whenever peer_last_tsn advances.
func (a *Association) checkPendingIncomingResetsLocked() {
	if len(a.pendingIncomingResets) == 0 {
		return
	}
	remaining := a.pendingIncomingResets[:0]
	for _, r := range a.pendingIncomingResets {
		if a.peerLastTSNValid && serial.GreaterThanOrEqual32(a.peerLastTSN, r.lastTSN) {
			for _, si := range r.streams {
				a.streams.Reset(si)
			}
			resp := &param.ReconfigResponse{ReconfigResponseSequenceNumber: r.responseSeq, Result: param.ResultSuccessPerformed}
			a.control.Push(&chunk.Reconfig{Params: []param.Param{resp}})
		} else {
			remaining = append(remaining, r)
		}
	}
	a.pendingIncomingResets = remaining
}

func (a *Association) handleReconfigResponseLocked(resp *param.ReconfigResponse) {
	if a.outgoingReset == nil || a.outgoingReset.seq != resp.ReconfigResponseSequenceNumber {
		return
	}

	switch resp.Result {
	case param.ResultInProgress:
		a.timers.Schedule(timer.Reconfig, a.rtt.RTO())
		return
	case param.ResultSuccessPerformed, param.ResultSuccessNothingToDo:
		for _, si := range a.outgoingReset.streams {
			a.streams.Reset(si)
		}
	default:
		Logger.Info("stream reset denied", "association", a.id, "result", resp.Result.String())
	}

	a.timers.Cancel(timer.Reconfig)
	a.outgoingReset = nil
}
