package chunk

import "encoding/binary"

// ForwardTSNStream names the highest SSN on one stream that the
// receiver should stop waiting for, because the sender has abandoned
// everything up to it (RFC 3758 §3.2).
type ForwardTSNStream struct {
	StreamID  uint16
	StreamSeq uint16
}

const forwardTSNFixedLen = 4

// ForwardTSN advances the cumulative ack point past abandoned,
// partially-reliable data without retransmitting it (RFC 3758 §3.2).
// Each StreamID appears at most once, paired with the maximum SSN
// abandoned on that stream.
type ForwardTSN struct {
	NewCumulativeTSN uint32
	Streams          []ForwardTSNStream
}

func (c *ForwardTSN) Type() Type { return TypeForwardTSN }

func (c *ForwardTSN) ValueLength() int { return forwardTSNFixedLen + len(c.Streams)*4 }

func (c *ForwardTSN) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	valueLen := int(h.len) - headerLength
	if valueLen < forwardTSNFixedLen || headerLength+valueLen > len(raw) {
		return errInvalidLength
	}
	body := raw[headerLength:]
	c.NewCumulativeTSN = binary.BigEndian.Uint32(body[0:4])

	streamsLen := valueLen - forwardTSNFixedLen
	if streamsLen%4 != 0 {
		return errInvalidLength
	}
	c.Streams = c.Streams[:0]
	for offset := forwardTSNFixedLen; offset < valueLen; offset += 4 {
		c.Streams = append(c.Streams, ForwardTSNStream{
			StreamID:  binary.BigEndian.Uint16(body[offset : offset+2]),
			StreamSeq: binary.BigEndian.Uint16(body[offset+2 : offset+4]),
		})
	}
	return nil
}

func (c *ForwardTSN) Marshal() ([]byte, error) {
	valueLen := c.ValueLength()
	total := headerLength + valueLen + paddingLength(headerLength+valueLen)
	buf := make([]byte, total)
	writeHeader(buf, TypeForwardTSN, 0, valueLen)
	body := buf[headerLength:]
	binary.BigEndian.PutUint32(body[0:4], c.NewCumulativeTSN)
	offset := forwardTSNFixedLen
	for _, s := range c.Streams {
		binary.BigEndian.PutUint16(body[offset:offset+2], s.StreamID)
		binary.BigEndian.PutUint16(body[offset+2:offset+4], s.StreamSeq)
		offset += 4
	}
	return buf, nil
}
