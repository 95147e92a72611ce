/*
【ファイル概要: inflight.go】
Inflight は送信済みで未 ACK の DataChunk を TSN 順に保持します。

TSN は送信時に association が単調に払い出すため、到着順＝TSN 昇順が
常に保たれる。そのため内部表現は「TSN 昇順スライス + O(1) 検索用
map」の組み合わせにしており、累積 ACK の前進（先頭からの一括除去）も
ギャップ ACK の突合（map 検索）もどちらも軽い。
*/
package queue

import (
	"time"

	"github.com/pion/ion-sctp/pkg/serial"
)

// fastRetransmitThreshold is the number of times a SACK may skip over
// an unacked TSN before it is nominated for fast retransmit.
const fastRetransmitThreshold = 3

// Entry is InflightEntry from the data model: a DataChunk plus the
// bookkeeping the retransmit/ack pipeline needs.
type Entry struct {
	Data              *DataChunk
	SentAt            time.Time
	RetransmitAt      time.Time
	Acked             bool
	MissCount         int
	everRetransmitted bool
}

// Inflight holds every DATA fragment sent but not yet cumulatively
// acked, ordered by TSN.
type Inflight struct {
	order []*Entry
	byTSN map[uint32]*Entry
	bytes int
}

// NewInflight returns an empty inflight queue.
func NewInflight() *Inflight {
	return &Inflight{byTSN: make(map[uint32]*Entry)}
}

// Push records a freshly sent fragment as inflight.
func (q *Inflight) Push(d *DataChunk, now time.Time) *Entry {
	e := &Entry{Data: d, SentAt: now}
	q.order = append(q.order, e)
	q.byTSN[d.TSN] = e
	q.bytes += len(d.UserData)
	return e
}

// Get looks up the inflight entry for tsn, if any.
func (q *Inflight) Get(tsn uint32) (*Entry, bool) {
	e, ok := q.byTSN[tsn]
	return e, ok
}

// Len reports how many fragments are still inflight.
func (q *Inflight) Len() int { return len(q.order) }

// Bytes reports total outstanding (unacked) payload bytes.
func (q *Inflight) Bytes() int { return q.bytes }

// All returns the inflight entries in TSN order. The caller must not
// mutate the slice.
func (q *Inflight) All() []*Entry { return q.order }

// AdvanceCumulative drops every entry with TSN <= tsn from the front
// of the queue (the peer has cumulatively acked them) and returns the
// bytes newly freed, for congestion-window accounting.
func (q *Inflight) AdvanceCumulative(tsn uint32) (freedBytes int, acked []*Entry) {
	i := 0
	for i < len(q.order) && serial.LessThanOrEqual32(q.order[i].Data.TSN, tsn) {
		e := q.order[i]
		delete(q.byTSN, e.Data.TSN)
		freedBytes += len(e.Data.UserData)
		acked = append(acked, e)
		i++
	}
	q.order = q.order[i:]
	q.bytes -= freedBytes
	return freedBytes, acked
}

// ApplyGapAcks marks entries covered by SACK gap-ack blocks (offsets
// from cumTSNAck) as acked, and increments the miss count of any
// unacked entry below the highest TSN this SACK reported as received —
// it has now been "skipped" once more. It returns newly-gap-acked
// bytes (for cwnd growth) and the entries that just crossed the
// fast-retransmit threshold.
func (q *Inflight) ApplyGapAcks(cumTSNAck uint32, blocks []GapAckBlock) (newlyAckedBytes int, fastRtx []*Entry) {
	if len(blocks) == 0 {
		return 0, nil
	}

	highest := cumTSNAck
	for _, b := range blocks {
		end := cumTSNAck + uint32(b.End)
		if serial.GreaterThan32(end, highest) {
			highest = end
		}
		for _, e := range q.order {
			off := e.Data.TSN - cumTSNAck
			if off >= uint32(b.Start) && off <= uint32(b.End) {
				if !e.Acked {
					e.Acked = true
					newlyAckedBytes += len(e.Data.UserData)
				}
			}
		}
	}

	for _, e := range q.order {
		if e.Acked {
			continue
		}
		if serial.LessThan32(e.Data.TSN, highest) {
			e.MissCount++
			if e.MissCount == fastRetransmitThreshold {
				fastRtx = append(fastRtx, e)
			}
		}
	}
	return newlyAckedBytes, fastRtx
}

// GapAckBlock mirrors chunk.GapAckBlock without importing the chunk
// package, keeping queue free of a codec dependency; association
// converts between the two at the call site.
type GapAckBlock struct {
	Start uint16
	End   uint16
}

// AbandonedRun walks the inflight queue from its head and returns the
// highest contiguous run of fragments whose Abandoned flag is set,
// used by create_forward_tsn. It stops at the first
// not-abandoned entry or the end of the queue.
func (q *Inflight) AbandonedRun() []*Entry {
	var run []*Entry
	for _, e := range q.order {
		if !e.Data.Abandoned() {
			break
		}
		run = append(run, e)
	}
	return run
}

// DropRun removes the first n entries unconditionally, used once
// create_forward_tsn has committed to never retransmitting them.
func (q *Inflight) DropRun(n int) {
	for i := 0; i < n && i < len(q.order); i++ {
		e := q.order[i]
		delete(q.byTSN, e.Data.TSN)
		q.bytes -= len(e.Data.UserData)
	}
	if n > len(q.order) {
		n = len(q.order)
	}
	q.order = q.order[n:]
}

// MarkRetransmitted bumps an entry's transmit bookkeeping and clears
// its miss count, as happens whenever it's resent (timed or fast).
func (q *Inflight) MarkRetransmitted(e *Entry, now time.Time) {
	e.Data.MarkSent()
	e.SentAt = now
	e.everRetransmitted = true
	e.MissCount = 0
}

// EligibleForRTTSample reports whether this entry was never
// retransmitted, per Karn's rule: only first-transmission
// round trips may be used as RTT samples.
func (e *Entry) EligibleForRTTSample() bool { return !e.everRetransmitted }
