package chunk

import "encoding/binary"

const sackFixedLen = 12

// GapAckBlock reports a run of TSNs received above the cumulative ack
// point, as offsets from it (RFC 4960 §3.3.4).
type GapAckBlock struct {
	Start uint16
	End   uint16
}

// Sack is the Selective Acknowledgement chunk: the receiver's report
// of what has arrived, with gaps, duplicates, and the advertised
// receiver window.
type Sack struct {
	CumulativeTSNAck uint32
	ARwnd            uint32
	GapAckBlocks     []GapAckBlock
	DuplicateTSNs    []uint32
}

func (c *Sack) Type() Type { return TypeSack }

func (c *Sack) ValueLength() int {
	return sackFixedLen + len(c.GapAckBlocks)*4 + len(c.DuplicateTSNs)*4
}

func (c *Sack) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	valueLen := int(h.len) - headerLength
	if valueLen < sackFixedLen || headerLength+valueLen > len(raw) {
		return errInvalidLength
	}
	body := raw[headerLength:]
	c.CumulativeTSNAck = binary.BigEndian.Uint32(body[0:4])
	c.ARwnd = binary.BigEndian.Uint32(body[4:8])
	numGapBlocks := int(binary.BigEndian.Uint16(body[8:10]))
	numDup := int(binary.BigEndian.Uint16(body[10:12]))

	want := sackFixedLen + numGapBlocks*4 + numDup*4
	if want > valueLen {
		return errInvalidLength
	}

	c.GapAckBlocks = c.GapAckBlocks[:0]
	offset := sackFixedLen
	for i := 0; i < numGapBlocks; i++ {
		c.GapAckBlocks = append(c.GapAckBlocks, GapAckBlock{
			Start: binary.BigEndian.Uint16(body[offset : offset+2]),
			End:   binary.BigEndian.Uint16(body[offset+2 : offset+4]),
		})
		offset += 4
	}

	c.DuplicateTSNs = c.DuplicateTSNs[:0]
	for i := 0; i < numDup; i++ {
		c.DuplicateTSNs = append(c.DuplicateTSNs, binary.BigEndian.Uint32(body[offset:offset+4]))
		offset += 4
	}
	return nil
}

func (c *Sack) Marshal() ([]byte, error) {
	valueLen := c.ValueLength()
	total := headerLength + valueLen + paddingLength(headerLength+valueLen)
	buf := make([]byte, total)
	writeHeader(buf, TypeSack, 0, valueLen)
	body := buf[headerLength:]
	binary.BigEndian.PutUint32(body[0:4], c.CumulativeTSNAck)
	binary.BigEndian.PutUint32(body[4:8], c.ARwnd)
	binary.BigEndian.PutUint16(body[8:10], uint16(len(c.GapAckBlocks)))
	binary.BigEndian.PutUint16(body[10:12], uint16(len(c.DuplicateTSNs)))

	offset := sackFixedLen
	for _, g := range c.GapAckBlocks {
		binary.BigEndian.PutUint16(body[offset:offset+2], g.Start)
		binary.BigEndian.PutUint16(body[offset+2:offset+4], g.End)
		offset += 4
	}
	for _, tsn := range c.DuplicateTSNs {
		binary.BigEndian.PutUint32(body[offset:offset+4], tsn)
		offset += 4
	}
	return buf, nil
}
