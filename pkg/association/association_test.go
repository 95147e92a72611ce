package association

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pion/ion-sctp/pkg/chunk"
	"github.com/pion/ion-sctp/pkg/queue"
	"github.com/pion/ion-sctp/pkg/rto"
	"github.com/pion/ion-sctp/pkg/stream"
)

// recordingConn is a Conn that records every packet handed to it
// instead of touching a real socket.
type recordingConn struct {
	sent [][]byte
}

func (c *recordingConn) WriteSCTPPacket(p []byte) error {
	c.sent = append(c.sent, append([]byte(nil), p...))
	return nil
}

func newTestAssociation(t *testing.T) (*Association, *recordingConn) {
	t.Helper()
	conn := &recordingConn{}
	cfg := DefaultConfig()
	a := New(cfg, conn, []byte("test-secret"))
	t.Cleanup(func() { a.mu.Lock(); _ = a.closeLocked(nil); a.mu.Unlock() })
	a.state = StateEstablished
	a.cong = rto.NewCongestion(cfg.MTU, 1<<20)
	a.peerARwnd = 1 << 20
	a.peerVerificationTag = 0xfeedface
	a.myNextTSN = 1
	a.cumulativeTSNAckPoint = 0
	a.advancedPeerTSNAckPoint = 0
	return a, conn
}

// --- S1: Forward-TSN, one abandoned fragment ---

func TestCreateForwardTSNOneAbandoned(t *testing.T) {
	a, conn := newTestAssociation(t)
	a.cumulativeTSNAckPoint = 9
	a.advancedPeerTSNAckPoint = 10

	d := &queue.DataChunk{TSN: 10, StreamID: 1, StreamSeq: 2, UserData: []byte("ABC"), Ending: true}
	d.Abandon()
	a.inflight.Push(d, time.Unix(0, 0))

	a.maybeForwardTSNLocked()

	require.Equal(t, uint32(10), a.advancedPeerTSNAckPoint)
	// maybeForwardTSNLocked runs the send pump, so the FORWARD-TSN has
	// already left the control queue and been written to the conn.
	require.Len(t, conn.sent, 1)
	pkt, err := chunk.Unmarshal(conn.sent[0])
	require.NoError(t, err)
	fwd, ok := pkt.Chunks[0].(*chunk.ForwardTSN)
	require.True(t, ok)
	require.Equal(t, uint32(10), fwd.NewCumulativeTSN)
	require.Len(t, fwd.Streams, 1)
	require.Equal(t, uint16(1), fwd.Streams[0].StreamID)
	require.Equal(t, uint16(2), fwd.Streams[0].StreamSeq)
}

// --- S2: Forward-TSN coalesces two streams, maximum SSN per SI ---

func TestCreateForwardTSNTwoStreams(t *testing.T) {
	a, conn := newTestAssociation(t)
	a.cumulativeTSNAckPoint = 9
	a.advancedPeerTSNAckPoint = 12

	now := time.Unix(0, 0)
	for _, d := range []*queue.DataChunk{
		{TSN: 10, StreamID: 1, StreamSeq: 2, Ending: true},
		{TSN: 11, StreamID: 1, StreamSeq: 3, Ending: true},
		{TSN: 12, StreamID: 2, StreamSeq: 1, Ending: true},
	} {
		d.Abandon()
		a.inflight.Push(d, now)
	}

	a.maybeForwardTSNLocked()

	require.Len(t, conn.sent, 1)
	pkt, err := chunk.Unmarshal(conn.sent[0])
	require.NoError(t, err)
	fwd := pkt.Chunks[0].(*chunk.ForwardTSN)
	require.Equal(t, uint32(12), fwd.NewCumulativeTSN)
	require.Len(t, fwd.Streams, 2)

	got := map[uint16]uint16{}
	for _, s := range fwd.Streams {
		got[s.StreamID] = s.StreamSeq
	}
	require.Equal(t, map[uint16]uint16{1: 3, 2: 1}, got)
}

// --- S3: Forward-TSN advances the receiver with no gap behind it ---

func TestHandleForwardTSNNoGap(t *testing.T) {
	a, _ := newTestAssociation(t)
	const p = 100
	a.peerLastTSN = p
	a.peerLastTSNValid = true

	a.handleForwardTSNLocked(&chunk.ForwardTSN{
		NewCumulativeTSN: p + 3,
		Streams:          []chunk.ForwardTSNStream{{StreamID: 0, StreamSeq: 0}},
	})

	require.Equal(t, uint32(p+3), a.peerLastTSN)
	require.Equal(t, AckDelayed, a.ackState)
}

// --- S4: a gap behind new_cumulative_tsn closes once Forward-TSN lands ---

func TestHandleForwardTSNClosesGapBehind(t *testing.T) {
	a, _ := newTestAssociation(t)
	const p = 100
	a.peerLastTSN = p
	a.peerLastTSNValid = true
	require.NoError(t, a.payload.Push(&queue.DataChunk{TSN: p + 2}))

	a.handleForwardTSNLocked(&chunk.ForwardTSN{
		NewCumulativeTSN: p + 1,
		Streams:          []chunk.ForwardTSNStream{{StreamID: 0, StreamSeq: 1}},
	})

	require.Equal(t, uint32(p+2), a.peerLastTSN)
	require.Equal(t, AckDelayed, a.ackState)
}

// --- S5: a gap that survives Forward-TSN forces an immediate SACK ---

func TestHandleForwardTSNPersistentGap(t *testing.T) {
	a, _ := newTestAssociation(t)
	const p = 100
	a.peerLastTSN = p
	a.peerLastTSNValid = true
	require.NoError(t, a.payload.Push(&queue.DataChunk{TSN: p + 3}))

	a.handleForwardTSNLocked(&chunk.ForwardTSN{
		NewCumulativeTSN: p + 1,
		Streams:          []chunk.ForwardTSNStream{{StreamID: 0, StreamSeq: 1}},
	})

	require.Equal(t, uint32(p+1), a.peerLastTSN)
	require.Equal(t, AckImmediate, a.ackState)
}

// --- S6: a duplicate Forward-TSN still elicits a SACK, without advancing ---

func TestHandleForwardTSNDuplicate(t *testing.T) {
	a, _ := newTestAssociation(t)
	const p = 100
	a.peerLastTSN = p
	a.peerLastTSNValid = true

	a.handleForwardTSNLocked(&chunk.ForwardTSN{
		NewCumulativeTSN: p,
		Streams:          []chunk.ForwardTSNStream{{StreamID: 0, StreamSeq: 1}},
	})

	require.Equal(t, uint32(p), a.peerLastTSN)
	require.Equal(t, AckImmediate, a.ackState)
}

// --- S7: the accept-queue bound refuses the C+1'th remotely opened stream ---

func TestAcceptQueueBound(t *testing.T) {
	a, _ := newTestAssociation(t)
	a.streams = stream.NewTable(2, a.cfg.MTU)

	for si := uint16(0); si < 2; si++ {
		_, err := a.streams.CreateStream(si, true, stream.ReliableReliability(), a.enqueueOutbound)
		require.NoError(t, err)
	}

	_, err := a.streams.CreateStream(2, true, stream.ReliableReliability(), a.enqueueOutbound)
	require.Error(t, err)
	_, ok := a.streams.Lookup(2)
	require.False(t, ok, "a refused stream must not appear in the table")

	// DATA for the refused SI is silently dropped, not aborted.
	delivered := a.streams.Dispatch(&queue.DataChunk{StreamID: 2, TSN: 1, Beginning: true, Ending: true}, a.enqueueOutbound)
	require.False(t, delivered)
}

// --- deliverAndAdvanceLocked must re-check deferred incoming resets ---

func TestDeliverAndAdvanceRechecksPendingReset(t *testing.T) {
	a, _ := newTestAssociation(t)
	a.peerLastTSN = 4
	a.peerLastTSNValid = true
	a.pendingIncomingResets = []incomingReset{{responseSeq: 7, lastTSN: 5, streams: []uint16{3}}}

	a.deliverAndAdvanceLocked(&queue.DataChunk{TSN: 5, StreamID: 1, Beginning: true, Ending: true})

	require.Equal(t, uint32(5), a.peerLastTSN)
	require.Empty(t, a.pendingIncomingResets, "the deferred reset should complete once its TSN condition is met")

	popped := a.control.Pop()
	require.NotNil(t, popped)
	reconfig, ok := popped.(*chunk.Reconfig)
	require.True(t, ok)
	require.Len(t, reconfig.Params, 1)
}

// --- SACK monotonicity / no spurious retransmit: a cumulative SACK ---
// --- cannot be followed by a backward CumulativeTSNAckPoint move ---

func TestHandleSackAdvancesCumulativeMonotonically(t *testing.T) {
	a, _ := newTestAssociation(t)
	now := time.Unix(0, 0)
	for tsn := uint32(1); tsn <= 3; tsn++ {
		a.inflight.Push(&queue.DataChunk{TSN: tsn, UserData: []byte("x")}, now)
	}

	a.handleSackLocked(&chunk.Sack{CumulativeTSNAck: 2, ARwnd: 1 << 16})
	require.Equal(t, uint32(2), a.cumulativeTSNAckPoint)
	require.Equal(t, 1, a.inflight.Len())

	a.handleSackLocked(&chunk.Sack{CumulativeTSNAck: 3, ARwnd: 1 << 16})
	require.Equal(t, uint32(3), a.cumulativeTSNAckPoint)
	require.Equal(t, 0, a.inflight.Len())
}

// --- zero-window probing: exactly one fragment escapes a closed a_rwnd ---

func TestSendPumpZeroWindowProbe(t *testing.T) {
	a, _ := newTestAssociation(t)
	a.peerARwnd = 0
	a.pending.Push(&queue.DataChunk{StreamID: 1, UserData: []byte("probe"), Beginning: true, Ending: true})
	a.pending.Push(&queue.DataChunk{StreamID: 1, UserData: []byte("second"), Beginning: true, Ending: true})

	a.runSendPumpLocked()

	require.Equal(t, 1, a.inflight.Len(), "only the probe fragment should have been sent while a_rwnd is zero")
	require.Equal(t, 1, a.pending.Len(), "the second fragment must wait for the window to reopen")
}

// --- handshake: active open emits INIT and arms T1-init ---

func TestAssociateEmitsInit(t *testing.T) {
	conn := &recordingConn{}
	a := New(DefaultConfig(), conn, []byte("secret"))
	t.Cleanup(func() { a.mu.Lock(); _ = a.closeLocked(nil); a.mu.Unlock() })

	require.NoError(t, a.Associate())
	require.Equal(t, StateCookieWait, a.State())
	require.Len(t, conn.sent, 1)

	pkt, err := chunk.Unmarshal(conn.sent[0])
	require.NoError(t, err)
	require.IsType(t, &chunk.Init{}, pkt.Chunks[0])
}

// --- handshake: a full four-way exchange reaches Established on both sides ---

func TestFullHandshakeReachesEstablished(t *testing.T) {
	clientConn := &recordingConn{}
	serverConn := &recordingConn{}
	client := New(DefaultConfig(), clientConn, []byte("secret"))
	server := New(DefaultConfig(), serverConn, []byte("secret"))
	t.Cleanup(func() { client.mu.Lock(); _ = client.closeLocked(nil); client.mu.Unlock() })
	t.Cleanup(func() { server.mu.Lock(); _ = server.closeLocked(nil); server.mu.Unlock() })

	require.NoError(t, client.Associate())
	require.Len(t, clientConn.sent, 1)

	require.NoError(t, server.HandleInbound(clientConn.sent[0]))
	require.Len(t, serverConn.sent, 1) // INIT-ACK

	require.NoError(t, client.HandleInbound(serverConn.sent[len(serverConn.sent)-1]))
	require.Equal(t, StateCookieEchoed, client.State())
	require.Len(t, clientConn.sent, 2) // COOKIE-ECHO

	require.NoError(t, server.HandleInbound(clientConn.sent[len(clientConn.sent)-1]))
	require.Equal(t, StateEstablished, server.State())
	require.Len(t, serverConn.sent, 2) // COOKIE-ACK

	require.NoError(t, client.HandleInbound(serverConn.sent[len(serverConn.sent)-1]))
	require.Equal(t, StateEstablished, client.State())
}

// --- a stale (reordered) SACK must not move the ack point backwards ---

func TestHandleSackIgnoresStaleCumulativeAck(t *testing.T) {
	a, _ := newTestAssociation(t)
	now := time.Unix(0, 0)
	for tsn := uint32(1); tsn <= 3; tsn++ {
		a.inflight.Push(&queue.DataChunk{TSN: tsn, UserData: []byte("x")}, now)
	}

	a.handleSackLocked(&chunk.Sack{CumulativeTSNAck: 3, ARwnd: 1 << 16})
	require.Equal(t, uint32(3), a.cumulativeTSNAckPoint)

	a.handleSackLocked(&chunk.Sack{CumulativeTSNAck: 2, ARwnd: 1 << 16})
	require.Equal(t, uint32(3), a.cumulativeTSNAckPoint, "a reordered SACK must be discarded")
}

// --- packets with the wrong verification tag are dropped whole ---

func TestHandleInboundRejectsWrongVerificationTag(t *testing.T) {
	a, _ := newTestAssociation(t)

	pkt := &chunk.Packet{
		Header: chunk.CommonHeader{VerificationTag: a.myVerificationTag + 1},
		Chunks: []chunk.Chunk{&chunk.Sack{CumulativeTSNAck: 1, ARwnd: 1500}},
	}
	raw, err := pkt.Marshal()
	require.NoError(t, err)

	require.ErrorIs(t, a.HandleInbound(raw), ErrWrongVerificationTag)
}

// --- an out-of-order fragment is delivered exactly once, after the gap fills ---

func TestOutOfOrderDataDeliveredOnce(t *testing.T) {
	a, _ := newTestAssociation(t)
	a.peerLastTSN = 0
	a.peerLastTSNValid = true

	// TSN 2 (ssn 1) arrives before TSN 1 (ssn 0): buffered, not delivered.
	a.handleDataLocked(&chunk.Data{TSN: 2, StreamID: 1, StreamSeq: 1, UserData: []byte("second"), Beginning: true, Ending: true})
	require.Equal(t, AckImmediate, a.ackState)
	require.Equal(t, 1, a.payload.Len())

	a.handleDataLocked(&chunk.Data{TSN: 1, StreamID: 1, StreamSeq: 0, UserData: []byte("first"), Beginning: true, Ending: true})
	require.Equal(t, uint32(2), a.peerLastTSN)
	require.Equal(t, 0, a.payload.Len())

	s, ok := a.streams.Lookup(1)
	require.True(t, ok)

	payload, _, err := s.Read(64)
	require.NoError(t, err)
	require.Equal(t, "first", string(payload))
	payload, _, err = s.Read(64)
	require.NoError(t, err)
	require.Equal(t, "second", string(payload))

	// A third read must block: the buffered fragment was handed to the
	// stream once, not once on arrival and again on gap fill.
	done := make(chan struct{})
	go func() {
		_, _, _ = s.Read(64)
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("a fragment was delivered twice")
	case <-time.After(30 * time.Millisecond):
	}
	require.NoError(t, s.Close())
	<-done
}

// --- the pump bundles several small DATA chunks into one packet ---

func TestSendPumpBundlesData(t *testing.T) {
	a, conn := newTestAssociation(t)
	for i := 0; i < 3; i++ {
		a.pending.Push(&queue.DataChunk{StreamID: 1, StreamSeq: uint16(i), UserData: []byte("x"), Beginning: true, Ending: true})
	}

	a.runSendPumpLocked()

	require.Len(t, conn.sent, 1, "small chunks should share one packet")
	pkt, err := chunk.Unmarshal(conn.sent[0])
	require.NoError(t, err)
	require.Len(t, pkt.Chunks, 3)
	for _, c := range pkt.Chunks {
		require.IsType(t, &chunk.Data{}, c)
	}
}

// --- T3-rtx exhaustion fails the association with an unreachable error ---

func TestT3ExhaustionClosesAssociation(t *testing.T) {
	a, _ := newTestAssociation(t)
	a.cfg.MaxAssocRetransmits = 1
	a.inflight.Push(&queue.DataChunk{TSN: 1, UserData: []byte("x")}, time.Unix(0, 0))

	a.handleT3RtxLocked() // first expiry still retransmits
	require.False(t, a.closed)

	a.handleT3RtxLocked() // second expiry exceeds the limit
	require.True(t, a.closed)
	require.ErrorIs(t, a.closeErr, ErrUnreachable)
}
