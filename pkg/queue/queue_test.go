package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInflightAdvanceCumulative(t *testing.T) {
	q := NewInflight()
	now := time.Unix(0, 0)
	for tsn := uint32(10); tsn <= 13; tsn++ {
		q.Push(&DataChunk{TSN: tsn, UserData: []byte("abc")}, now)
	}
	require.Equal(t, 4, q.Len())

	freed, acked := q.AdvanceCumulative(11)
	require.Equal(t, 6, freed)
	require.Len(t, acked, 2)
	require.Equal(t, 2, q.Len())

	_, stillThere := q.Get(12)
	require.True(t, stillThere)
	_, gone := q.Get(10)
	require.False(t, gone)
}

func TestInflightFastRetransmitThreshold(t *testing.T) {
	q := NewInflight()
	now := time.Unix(0, 0)
	q.Push(&DataChunk{TSN: 1, UserData: []byte("a")}, now)
	q.Push(&DataChunk{TSN: 2, UserData: []byte("b")}, now)

	// Each SACK gap-acks TSN 2 but skips TSN 1, three times in a row.
	var fastRtx []*Entry
	for i := 0; i < fastRetransmitThreshold; i++ {
		_, candidates := q.ApplyGapAcks(0, []GapAckBlock{{Start: 2, End: 2}})
		fastRtx = candidates
	}
	require.Len(t, fastRtx, 1)
	require.Equal(t, uint32(1), fastRtx[0].Data.TSN)
}

func TestPayloadGapTracking(t *testing.T) {
	p := NewPayload()
	require.NoError(t, p.Push(&DataChunk{TSN: 5}))
	require.ErrorIs(t, p.Push(&DataChunk{TSN: 5}), errDuplicateTSN)

	front, ok := p.Front()
	require.True(t, ok)
	require.Equal(t, uint32(5), front)

	require.True(t, p.HasGapAfter(3)) // next delivered would be 4, but 5 is buffered
	require.False(t, p.HasGapAfter(4))

	d := p.Pop(5)
	require.NotNil(t, d)
	require.Equal(t, 0, p.Len())
}

func TestPayloadDropThrough(t *testing.T) {
	p := NewPayload()
	require.NoError(t, p.Push(&DataChunk{TSN: 10}))
	require.NoError(t, p.Push(&DataChunk{TSN: 11}))
	require.NoError(t, p.Push(&DataChunk{TSN: 20}))

	p.DropThrough(11)
	require.Equal(t, 1, p.Len())
	front, _ := p.Front()
	require.Equal(t, uint32(20), front)
}

func TestDuplicateTracker(t *testing.T) {
	var d DuplicateTracker
	d.Push(5)
	d.Push(3)
	d.Push(5)
	require.Equal(t, 2, d.Len())
	out := d.Drain()
	require.Equal(t, []uint32{3, 5}, out)
	require.Equal(t, 0, d.Len())
}

func TestAbandonedRun(t *testing.T) {
	q := NewInflight()
	now := time.Unix(0, 0)
	c1 := &DataChunk{TSN: 1, StreamID: 1, Ending: true}
	c1.Abandon()
	c2 := &DataChunk{TSN: 2, StreamID: 1, Ending: true}
	c2.Abandon()
	c3 := &DataChunk{TSN: 3, StreamID: 2}
	q.Push(c1, now)
	q.Push(c2, now)
	q.Push(c3, now)

	run := q.AbandonedRun()
	require.Len(t, run, 2)
}
