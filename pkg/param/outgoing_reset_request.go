package param

import "encoding/binary"

// OutgoingResetRequest is the RECONFIG parameter (RFC 6525 §4.1) that
// asks the peer to reset the listed outgoing streams, anchored to the
// sender's last-assigned TSN so the peer knows which data must be
// delivered before honoring the reset.
type OutgoingResetRequest struct {
	ReconfigRequestSequenceNumber  uint32
	ReconfigResponseSequenceNumber uint32
	SenderLastAssignedTSN          uint32
	StreamIdentifiers              []uint16
}

const outgoingResetRequestFixedLen = 12

func (p *OutgoingResetRequest) Type() Type { return TypeOutSSNResetReq }

func (p *OutgoingResetRequest) ValueLength() int {
	return outgoingResetRequestFixedLen + len(p.StreamIdentifiers)*2
}

func (p *OutgoingResetRequest) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	valueLen := int(h.len) - headerLength
	if valueLen < outgoingResetRequestFixedLen || headerLength+valueLen > len(raw) {
		return errParamInvalidLength
	}
	body := raw[headerLength:]
	p.ReconfigRequestSequenceNumber = binary.BigEndian.Uint32(body[0:4])
	p.ReconfigResponseSequenceNumber = binary.BigEndian.Uint32(body[4:8])
	p.SenderLastAssignedTSN = binary.BigEndian.Uint32(body[8:12])

	streamsLen := valueLen - outgoingResetRequestFixedLen
	if streamsLen%2 != 0 {
		return errParamInvalidLength
	}
	p.StreamIdentifiers = p.StreamIdentifiers[:0]
	for i := 0; i < streamsLen; i += 2 {
		p.StreamIdentifiers = append(p.StreamIdentifiers, binary.BigEndian.Uint16(body[outgoingResetRequestFixedLen+i:]))
	}
	return nil
}

func (p *OutgoingResetRequest) Marshal() ([]byte, error) {
	valueLen := p.ValueLength()
	total := headerLength + valueLen + paddingLength(headerLength+valueLen)
	buf := make([]byte, total)
	writeHeader(buf, TypeOutSSNResetReq, valueLen)
	body := buf[headerLength:]
	binary.BigEndian.PutUint32(body[0:4], p.ReconfigRequestSequenceNumber)
	binary.BigEndian.PutUint32(body[4:8], p.ReconfigResponseSequenceNumber)
	binary.BigEndian.PutUint32(body[8:12], p.SenderLastAssignedTSN)
	for i, si := range p.StreamIdentifiers {
		binary.BigEndian.PutUint16(body[outgoingResetRequestFixedLen+i*2:], si)
	}
	return buf, nil
}
