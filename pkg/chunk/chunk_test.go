package chunk

import (
	"testing"

	"github.com/pion/ion-sctp/pkg/param"
	"github.com/stretchr/testify/require"
)

func TestChunkRoundTrip(t *testing.T) {
	cases := []Chunk{
		&Init{initCommon{
			InitiateTag:                    1,
			AdvertisedReceiverWindowCredit: 128 * 1024,
			NumOutboundStreams:             10,
			NumInboundStreams:              10,
			InitialTSN:                     42,
			Params:                         []param.Param{&param.ForwardTSNSupported{}},
		}},
		&InitAck{initCommon{
			InitiateTag:                    2,
			AdvertisedReceiverWindowCredit: 128 * 1024,
			NumOutboundStreams:             10,
			NumInboundStreams:              10,
			InitialTSN:                     7,
			Params:                         []param.Param{&param.StateCookie{Cookie: []byte("cookie")}},
		}},
		&CookieEcho{Cookie: []byte("cookie")},
		&CookieAck{},
		&Data{TSN: 10, StreamID: 1, StreamSeq: 2, PPI: 0, UserData: []byte("hello"), Beginning: true, Ending: true},
		&Sack{
			CumulativeTSNAck: 9,
			ARwnd:            65536,
			GapAckBlocks:     []GapAckBlock{{Start: 2, End: 3}},
			DuplicateTSNs:    []uint32{11},
		},
		&Heartbeat{Info: param.HeartbeatInfo{Info: []byte{1, 2, 3, 4}}},
		&HeartbeatAck{Info: param.HeartbeatInfo{Info: []byte{1, 2, 3, 4}}},
		&Abort{Causes: []ErrorCause{{Code: 1, Info: []byte("bad")}}},
		&Shutdown{CumulativeTSNAck: 5},
		&ShutdownAck{},
		&ShutdownComplete{},
		&ErrorChunk{Causes: []ErrorCause{{Code: 2, Info: nil}}},
		&ForwardTSN{NewCumulativeTSN: 12, Streams: []ForwardTSNStream{{StreamID: 1, StreamSeq: 2}}},
		&Reconfig{Params: []param.Param{&param.OutgoingResetRequest{
			ReconfigRequestSequenceNumber: 1,
			SenderLastAssignedTSN:         9,
			StreamIdentifiers:             []uint16{1, 2},
		}}},
	}

	for _, want := range cases {
		raw, err := want.Marshal()
		require.NoError(t, err, "%T", want)
		require.Zero(t, len(raw)%4, "chunk %T must be 4-byte aligned", want)

		got, err := Build(raw)
		require.NoError(t, err, "%T", want)
		require.Equal(t, want.Type(), got.Type())

		raw2, err := got.Marshal()
		require.NoError(t, err)
		require.Equal(t, raw, raw2)
	}
}

func TestPacketRoundTrip(t *testing.T) {
	pkt := &Packet{
		Header: CommonHeader{SourcePort: 5000, DestinationPort: 5001, VerificationTag: 0xdeadbeef},
		Chunks: []Chunk{
			&Sack{CumulativeTSNAck: 1, ARwnd: 1500},
			&Data{TSN: 2, StreamID: 0, StreamSeq: 0, UserData: []byte("x"), Beginning: true, Ending: true},
		},
	}
	raw, err := pkt.Marshal()
	require.NoError(t, err)

	got, err := Unmarshal(raw)
	require.NoError(t, err)
	require.Equal(t, pkt.Header, got.Header)
	require.Len(t, got.Chunks, 2)

	raw2, err := got.Marshal()
	require.NoError(t, err)
	require.Equal(t, raw, raw2)
}

func TestPacketChecksumMismatch(t *testing.T) {
	pkt := &Packet{
		Header: CommonHeader{SourcePort: 1, DestinationPort: 2, VerificationTag: 3},
		Chunks: []Chunk{&CookieAck{}},
	}
	raw, err := pkt.Marshal()
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff // corrupt the last byte of the only chunk

	_, err = Unmarshal(raw)
	require.ErrorIs(t, err, errChecksumMismatch)
}

func TestUnhandledChunkTypeAction(t *testing.T) {
	// type 0x41 = 0b01000001: high bits 01 -> ActionDiscardReport.
	raw := []byte{0x41, 0, 0, 4}
	_, err := Build(raw)
	var uErr *UnhandledTypeError
	require.ErrorAs(t, err, &uErr)
	require.Equal(t, ActionDiscardReport, uErr.Action)
}
