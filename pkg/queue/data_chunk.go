/*
【ファイル概要: data_chunk.go】
DataChunk は一つのユーザーメッセージの一フラグメントを表す実装です。

abandoned フラグは timer コンテキスト（T3-rtx 失効や TTL 経過）からも
読み書きされるため、sync/atomic による小さなアトミックセルとして
保持します。
*/
package queue

import (
	"sync/atomic"
	"time"
)

// DataChunk is one fragment of one user message, queued for send or
// sitting inflight. It is the shared payload type threaded through
// Pending, Inflight, and Payload (reassembly).
type DataChunk struct {
	TSN       uint32
	StreamID  uint16
	StreamSeq uint16
	PPI       uint32
	UserData  []byte
	Beginning bool
	Ending    bool
	Unordered bool

	// MaxRtx is this fragment's partial-reliability retransmit budget
	// (stream.RexmitReliability); zero means unlimited (reliable or
	// timed policy, where Deadline governs instead).
	MaxRtx int
	// Deadline is this fragment's partial-reliability expiry
	// (stream.TimedReliability); the zero Time means no deadline.
	Deadline time.Time

	nsent     uint32
	abandoned int32
}

// NSent returns how many times this fragment has been (re)transmitted.
func (d *DataChunk) NSent() uint32 { return atomic.LoadUint32(&d.nsent) }

// MarkSent increments the transmit counter and returns the new value.
func (d *DataChunk) MarkSent() uint32 { return atomic.AddUint32(&d.nsent, 1) }

// ExceedsRetryBudget reports whether, after another retransmit
// attempt, this fragment's partial-reliability policy would be
// violated.
func (d *DataChunk) ExceedsRetryBudget(now time.Time) bool {
	if d.MaxRtx > 0 && int(d.NSent()) > d.MaxRtx {
		return true
	}
	if !d.Deadline.IsZero() && now.After(d.Deadline) {
		return true
	}
	return false
}

// Abandoned reports whether partial-reliability policy has given up on
// this fragment (max-rtx exceeded, or its deadline has passed).
func (d *DataChunk) Abandoned() bool { return atomic.LoadInt32(&d.abandoned) != 0 }

// Abandon flips the abandoned flag. Safe to call concurrently with
// Abandoned from a timer goroutine.
func (d *DataChunk) Abandon() { atomic.StoreInt32(&d.abandoned, 1) }

// EndsMessage reports whether this fragment is the last (or only)
// fragment of its message. Forward-TSN generation does not consult it.
func (d *DataChunk) EndsMessage() bool { return d.Ending }
