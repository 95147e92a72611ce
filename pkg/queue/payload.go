/*
【ファイル概要: payload.go】
Payload は受信側の再組み立てキューです。map TSN → DataChunk に加え、
ギャップ追跡のための昇順 TSN リストを保持します。
*/
package queue

import (
	"sort"

	"github.com/pion/ion-sctp/pkg/serial"
)

// Payload holds out-of-order DATA fragments received above
// peer_last_tsn, keyed by TSN, until they can be delivered in order or
// dropped by a Forward-TSN advance.
type Payload struct {
	entries map[uint32]*DataChunk
	sorted  []uint32 // ascending TSNs currently buffered; kept sorted
}

// NewPayload returns an empty reassembly queue.
func NewPayload() *Payload {
	return &Payload{entries: make(map[uint32]*DataChunk)}
}

// Push inserts a fragment received out of order. It returns
// errDuplicateTSN if that TSN is already buffered; the caller should
// still record it for the SACK duplicate-TSN list.
func (p *Payload) Push(d *DataChunk) error {
	if _, ok := p.entries[d.TSN]; ok {
		return errDuplicateTSN
	}
	p.entries[d.TSN] = d
	i := sort.Search(len(p.sorted), func(i int) bool { return serial.GreaterThanOrEqual32(p.sorted[i], d.TSN) })
	p.sorted = append(p.sorted, 0)
	copy(p.sorted[i+1:], p.sorted[i:])
	p.sorted[i] = d.TSN
	return nil
}

// Has reports whether tsn is currently buffered.
func (p *Payload) Has(tsn uint32) bool {
	_, ok := p.entries[tsn]
	return ok
}

// Pop removes and returns the fragment for tsn, used once it delivers
// in order.
func (p *Payload) Pop(tsn uint32) *DataChunk {
	d, ok := p.entries[tsn]
	if !ok {
		return nil
	}
	delete(p.entries, tsn)
	i := sort.Search(len(p.sorted), func(i int) bool { return serial.GreaterThanOrEqual32(p.sorted[i], tsn) })
	if i < len(p.sorted) && p.sorted[i] == tsn {
		p.sorted = append(p.sorted[:i], p.sorted[i+1:]...)
	}
	return d
}

// Len reports how many out-of-order fragments are buffered.
func (p *Payload) Len() int { return len(p.entries) }

// Front returns the lowest buffered TSN and true, or (0, false) if empty.
func (p *Payload) Front() (uint32, bool) {
	if len(p.sorted) == 0 {
		return 0, false
	}
	return p.sorted[0], true
}

// DropThrough removes every buffered fragment with TSN <= tsn — used
// when a Forward-TSN advances peer_last_tsn past entries that can
// never deliver in order.
func (p *Payload) DropThrough(tsn uint32) {
	i := 0
	for i < len(p.sorted) && serial.LessThanOrEqual32(p.sorted[i], tsn) {
		delete(p.entries, p.sorted[i])
		i++
	}
	p.sorted = p.sorted[i:]
}

// GapAckBlocks converts the currently buffered out-of-order TSNs into
// SACK gap-ack blocks expressed as offsets from cumTSNAck.
func (p *Payload) GapAckBlocks(cumTSNAck uint32) []GapAckBlock {
	var blocks []GapAckBlock
	var start, end uint16
	active := false
	for _, tsn := range p.sorted {
		off := uint16(tsn - cumTSNAck)
		if active && off == end+1 {
			end = off
			continue
		}
		if active {
			blocks = append(blocks, GapAckBlock{Start: start, End: end})
		}
		start, end = off, off
		active = true
	}
	if active {
		blocks = append(blocks, GapAckBlock{Start: start, End: end})
	}
	return blocks
}

// HasGapAfter reports whether, after delivering everything through
// lastDelivered, a fragment still sits beyond a gap (i.e. the next
// buffered TSN is not lastDelivered+1). Forward-TSN handling uses this
// to decide delayed vs immediate SACK.
func (p *Payload) HasGapAfter(lastDelivered uint32) bool {
	front, ok := p.Front()
	if !ok {
		return false
	}
	return front != lastDelivered+1
}
