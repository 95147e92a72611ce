package param

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParamRoundTrip(t *testing.T) {
	cases := []Param{
		&ForwardTSNSupported{},
		&SupportedExtensions{ChunkTypes: []uint8{192, 130}},
		&Random{RandomData: []byte{1, 2, 3, 4, 5, 6, 7}},
		&RequestedHMACAlgorithm{HMACIDs: []uint16{1, 2}},
		&ChunkList{ChunkTypes: []uint8{1, 2, 3}},
		&StateCookie{Cookie: []byte("opaque-cookie-blob")},
		&HeartbeatInfo{Info: []byte{0xde, 0xad, 0xbe, 0xef}},
		&OutgoingResetRequest{
			ReconfigRequestSequenceNumber:  1,
			ReconfigResponseSequenceNumber: 2,
			SenderLastAssignedTSN:          100,
			StreamIdentifiers:              []uint16{1, 2, 3},
		},
		&ReconfigResponse{ReconfigResponseSequenceNumber: 1, Result: ResultSuccessPerformed},
	}

	for _, want := range cases {
		raw, err := want.Marshal()
		require.NoError(t, err)
		require.Zero(t, len(raw)%4, "param %T must be 4-byte aligned", want)

		got, err := Build(raw)
		require.NoError(t, err)
		require.Equal(t, want.Type(), got.Type())

		raw2, err := got.Marshal()
		require.NoError(t, err)
		require.Equal(t, raw, raw2)
	}
}

func TestBuildUnhandledType(t *testing.T) {
	raw := []byte{0xff, 0xff, 0, 4}
	_, err := Build(raw)
	require.ErrorIs(t, err, errParamTypeUnhandled)
}

func TestBuildHeaderTooShort(t *testing.T) {
	_, err := Build([]byte{0, 1})
	require.ErrorIs(t, err, errParamHeaderTooShort)
}
