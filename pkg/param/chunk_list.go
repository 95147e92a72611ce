package param

// ChunkList enumerates chunk types the sender wants authenticated
// (RFC 4895 §4.2.2). Decoded for interop; this engine never requires
// chunk authentication of its peer.
type ChunkList struct {
	ChunkTypes []uint8
}

func (p *ChunkList) Type() Type { return TypeChunkList }

func (p *ChunkList) ValueLength() int { return len(p.ChunkTypes) }

func (p *ChunkList) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	valueLen := int(h.len) - headerLength
	if valueLen < 0 || headerLength+valueLen > len(raw) {
		return errParamTooShort
	}
	p.ChunkTypes = append([]uint8(nil), raw[headerLength:headerLength+valueLen]...)
	return nil
}

func (p *ChunkList) Marshal() ([]byte, error) {
	valueLen := p.ValueLength()
	total := headerLength + valueLen + paddingLength(headerLength+valueLen)
	buf := make([]byte, total)
	writeHeader(buf, TypeChunkList, valueLen)
	copy(buf[headerLength:], p.ChunkTypes)
	return buf, nil
}
