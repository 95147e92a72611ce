package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pion/ion-sctp/pkg/queue"
)

func captureWrite() (WriteFunc, func() []*queue.DataChunk) {
	var all []*queue.DataChunk
	return func(fragments []*queue.DataChunk) error {
		all = append(all, fragments...)
		return nil
	}, func() []*queue.DataChunk { return all }
}

func TestWriteFragmentsToMTU(t *testing.T) {
	write, drain := captureWrite()
	s := newStream(7, ReliableReliability(), 4, write)

	require.NoError(t, s.Write([]byte("abcdefgh"), 42, false))
	frags := drain()
	require.Len(t, frags, 2)
	require.True(t, frags[0].Beginning)
	require.False(t, frags[0].Ending)
	require.False(t, frags[1].Beginning)
	require.True(t, frags[1].Ending)
	require.Equal(t, uint32(42), frags[1].PPI)
}

func TestPushAssemblesAndDelivers(t *testing.T) {
	write, _ := captureWrite()
	s := newStream(1, ReliableReliability(), 1200, write)

	s.Push(&queue.DataChunk{TSN: 1, StreamID: 1, StreamSeq: 0, PPI: 9, UserData: []byte("hel"), Beginning: true})
	s.Push(&queue.DataChunk{TSN: 2, StreamID: 1, StreamSeq: 0, PPI: 9, UserData: []byte("lo"), Ending: true})

	payload, ppi, err := s.Read(64)
	require.NoError(t, err)
	require.Equal(t, "hello", string(payload))
	require.Equal(t, uint32(9), ppi)
}

func TestPushHoldsOutOfOrderSSN(t *testing.T) {
	write, _ := captureWrite()
	s := newStream(1, ReliableReliability(), 1200, write)

	// SSN 1 arrives complete before SSN 0; must not be delivered yet.
	s.Push(&queue.DataChunk{TSN: 10, StreamID: 1, StreamSeq: 1, UserData: []byte("second"), Beginning: true, Ending: true})

	done := make(chan struct{})
	go func() {
		_, _, _ = s.Read(64)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("ssn 1 delivered before ssn 0 arrived")
	case <-time.After(30 * time.Millisecond):
	}

	s.Push(&queue.DataChunk{TSN: 9, StreamID: 1, StreamSeq: 0, UserData: []byte("first"), Beginning: true, Ending: true})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ssn 0 arriving never unblocked the read")
	}

	payload, _, err := s.Read(64)
	require.NoError(t, err)
	require.Equal(t, "second", string(payload))
}

func TestTableCreateStreamIdempotent(t *testing.T) {
	tbl := NewTable(4, 1200)
	write, _ := captureWrite()

	a, err := tbl.CreateStream(3, false, ReliableReliability(), write)
	require.NoError(t, err)
	b, err := tbl.CreateStream(3, false, ReliableReliability(), write)
	require.NoError(t, err)
	require.Same(t, a, b)
}

func TestTableAcceptQueueSaturation(t *testing.T) {
	tbl := NewTable(1, 1200)
	write, _ := captureWrite()

	_, err := tbl.CreateStream(1, true, ReliableReliability(), write)
	require.NoError(t, err)
	_, err = tbl.CreateStream(2, true, ReliableReliability(), write)
	require.ErrorIs(t, err, ErrAcceptQueueFull)

	_, ok := tbl.Lookup(2)
	require.False(t, ok, "stream must not appear in the table when the accept queue is saturated")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	accepted, err := tbl.Accept(ctx)
	require.NoError(t, err)
	require.Equal(t, uint16(1), accepted.StreamIdentifier())
}

func TestTableDispatchDropsWhenSaturated(t *testing.T) {
	tbl := NewTable(0, 1200)
	write, _ := captureWrite()

	delivered := tbl.Dispatch(&queue.DataChunk{StreamID: 5, Beginning: true, Ending: true}, write)
	require.False(t, delivered)
	_, ok := tbl.Lookup(5)
	require.False(t, ok)
}

func TestStreamCloseUnblocksRead(t *testing.T) {
	write, _ := captureWrite()
	s := newStream(1, ReliableReliability(), 1200, write)

	done := make(chan error, 1)
	go func() {
		_, _, err := s.Read(64)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.Close())

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("close never unblocked the pending read")
	}
}
