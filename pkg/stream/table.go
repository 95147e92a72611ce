/*
【ファイル概要: table.go】
Table は association が持つストリーム集合を SI で管理します。
get-or-create は idempotent な形にしている: 同じ SI を二度
CreateStream しても二つ目は既存のハンドルをそのまま返す。
*/
package stream

import (
	"context"
	"sync"

	"github.com/pion/ion-sctp/pkg/queue"
)

// Table owns every open stream of one association.
type Table struct {
	mu      sync.RWMutex
	streams map[uint16]*Stream
	accept  chan *Stream
	mtu     int
}

// NewTable returns an empty table whose accept_stream() queue holds up
// to acceptCapacity pending remotely-opened streams.
func NewTable(acceptCapacity int, mtu int) *Table {
	return &Table{
		streams: make(map[uint16]*Stream),
		accept:  make(chan *Stream, acceptCapacity),
		mtu:     mtu,
	}
}

// CreateStream returns the stream for si, creating it if absent. If
// accept is true and the accept queue has no room, creation fails and
// the stream is not added to the table — this is how a remotely
// initiated stream is refused under backpressure.
func (t *Table) CreateStream(si uint16, accept bool, reliability Reliability, write WriteFunc) (*Stream, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.streams[si]; ok {
		return s, nil
	}

	s := newStream(si, reliability, t.mtu, write)
	if accept {
		select {
		case t.accept <- s:
		default:
			return nil, ErrAcceptQueueFull
		}
	}
	t.streams[si] = s
	return s, nil
}

// Lookup returns the stream for si without creating one.
func (t *Table) Lookup(si uint16) (*Stream, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.streams[si]
	return s, ok
}

// Accept blocks until a remotely-opened stream is available or ctx is
// done.
func (t *Table) Accept(ctx context.Context) (*Stream, error) {
	select {
	case s := <-t.accept:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Remove deletes si from the table, e.g. once its stream reset
// completes.
func (t *Table) Remove(si uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.streams, si)
}

// Reset zeroes si's SSN counters in place, per a successful incoming
// or outgoing stream reset. The stream keeps its identity and
// any already-delivered messages stay delivered.
func (t *Table) Reset(si uint16) {
	t.mu.RLock()
	s, ok := t.streams[si]
	t.mu.RUnlock()
	if !ok {
		return
	}
	s.mu.Lock()
	s.nextOutSSN = 0
	s.nextInSSN = 0
	s.nextInSSNValid = false
	s.ordered = make(map[uint16]*message)
	s.readyOrdered = make(map[uint16]*message)
	s.mu.Unlock()
}

// Dispatch routes one inbound DATA fragment to its stream, creating
// the stream (participating in the accept queue) if this is the first
// fragment seen for si. A return of false means the stream could not be
// created because the accept queue was saturated and the fragment must
// be silently discarded; this does not abort the association. A fragment
// for a stream already in the table is always pushed to it, even if
// that stream has been closed, and true is returned.
func (t *Table) Dispatch(c *queue.DataChunk, write WriteFunc) (delivered bool) {
	s, ok := t.Lookup(c.StreamID)
	if !ok {
		var err error
		s, err = t.CreateStream(c.StreamID, true, ReliableReliability(), write)
		if err != nil {
			return false
		}
	}
	s.Push(c)
	return true
}

// SkipStream advances si's ordered-delivery cursor past ssn, as told by
// an inbound Forward-TSN report. A report naming a stream this
// association has never opened is a no-op.
func (t *Table) SkipStream(si uint16, ssn uint16) {
	s, ok := t.Lookup(si)
	if !ok {
		return
	}
	s.SkipOrderedTo(ssn)
}

// All returns every currently open stream. The caller must not mutate
// the slice.
func (t *Table) All() []*Stream {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Stream, 0, len(t.streams))
	for _, s := range t.streams {
		out = append(out, s)
	}
	return out
}
