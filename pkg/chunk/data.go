package chunk

import "encoding/binary"

// Data flag bits (RFC 4960 §3.3.1's DATA chunk, flags octet).
const (
	flagUnordered uint8 = 1 << 2
	flagBeginning uint8 = 1 << 1
	flagEnding    uint8 = 1 << 0
)

const dataFixedLen = 12

// Data is the DATA chunk: one fragment of one user message on one
// stream, addressed by TSN/SI/SSN.
type Data struct {
	TSN       uint32
	StreamID  uint16
	StreamSeq uint16
	PPI       uint32
	UserData  []byte
	Unordered bool
	Beginning bool
	Ending    bool
}

func (c *Data) Type() Type { return TypeData }

func (c *Data) ValueLength() int { return dataFixedLen + len(c.UserData) }

func (c *Data) flags() uint8 {
	var f uint8
	if c.Unordered {
		f |= flagUnordered
	}
	if c.Beginning {
		f |= flagBeginning
	}
	if c.Ending {
		f |= flagEnding
	}
	return f
}

func (c *Data) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	valueLen := int(h.len) - headerLength
	if valueLen < dataFixedLen || headerLength+valueLen > len(raw) {
		return errInvalidLength
	}
	c.Unordered = h.flags&flagUnordered != 0
	c.Beginning = h.flags&flagBeginning != 0
	c.Ending = h.flags&flagEnding != 0

	body := raw[headerLength:]
	c.TSN = binary.BigEndian.Uint32(body[0:4])
	c.StreamID = binary.BigEndian.Uint16(body[4:6])
	c.StreamSeq = binary.BigEndian.Uint16(body[6:8])
	c.PPI = binary.BigEndian.Uint32(body[8:12])
	c.UserData = append([]byte(nil), body[dataFixedLen:valueLen]...)
	return nil
}

func (c *Data) Marshal() ([]byte, error) {
	valueLen := c.ValueLength()
	total := headerLength + valueLen + paddingLength(headerLength+valueLen)
	buf := make([]byte, total)
	writeHeader(buf, TypeData, c.flags(), valueLen)
	body := buf[headerLength:]
	binary.BigEndian.PutUint32(body[0:4], c.TSN)
	binary.BigEndian.PutUint16(body[4:6], c.StreamID)
	binary.BigEndian.PutUint16(body[6:8], c.StreamSeq)
	binary.BigEndian.PutUint32(body[8:12], c.PPI)
	copy(body[dataFixedLen:], c.UserData)
	return buf, nil
}
