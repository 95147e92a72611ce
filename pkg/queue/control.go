package queue

import (
	"github.com/gammazero/deque"
	"github.com/pion/ion-sctp/pkg/chunk"
)

// Control holds outbound non-DATA chunks (SACK, HEARTBEAT, SHUTDOWN,
// RECONFIG, FORWARD-TSN). The send pump always drains Control before
// fresh DATA. Retransmissions do not pass through the pump: the SACK
// and T3-rtx handlers write them out directly when they decide to
// retransmit, which can be before queued control chunks are flushed.
type Control struct {
	items deque.Deque
}

// NewControl returns an empty control queue.
func NewControl() *Control {
	c := &Control{}
	c.items.SetMinCapacity(4)
	return c
}

// Push enqueues a control chunk for the next outbound packet.
func (c *Control) Push(ch chunk.Chunk) { c.items.PushBack(ch) }

// Pop removes and returns the oldest queued control chunk, or nil.
func (c *Control) Pop() chunk.Chunk {
	if c.items.Len() == 0 {
		return nil
	}
	return c.items.PopFront().(chunk.Chunk)
}

// Len reports the number of queued control chunks.
func (c *Control) Len() int { return c.items.Len() }
