package param

import "encoding/binary"

// RequestedHMACAlgorithm lists the HMAC identifiers (RFC 4895 §4.2.1)
// the sender is willing to use for authenticated chunks. This engine
// does not negotiate authenticated chunks itself, but must still
// decode the parameter when a peer offers it during handshake.
type RequestedHMACAlgorithm struct {
	HMACIDs []uint16
}

func (p *RequestedHMACAlgorithm) Type() Type { return TypeReqHMACAlgo }

func (p *RequestedHMACAlgorithm) ValueLength() int { return len(p.HMACIDs) * 2 }

func (p *RequestedHMACAlgorithm) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	valueLen := int(h.len) - headerLength
	if valueLen < 0 || valueLen%2 != 0 || headerLength+valueLen > len(raw) {
		return errParamInvalidLength
	}
	p.HMACIDs = p.HMACIDs[:0]
	for i := 0; i < valueLen; i += 2 {
		p.HMACIDs = append(p.HMACIDs, binary.BigEndian.Uint16(raw[headerLength+i:]))
	}
	return nil
}

func (p *RequestedHMACAlgorithm) Marshal() ([]byte, error) {
	valueLen := p.ValueLength()
	total := headerLength + valueLen + paddingLength(headerLength+valueLen)
	buf := make([]byte, total)
	writeHeader(buf, TypeReqHMACAlgo, valueLen)
	for i, id := range p.HMACIDs {
		binary.BigEndian.PutUint16(buf[headerLength+i*2:], id)
	}
	return buf, nil
}
