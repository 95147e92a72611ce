package param

// SupportedExtensions lists chunk types the sender additionally
// understands (RFC 5061 §4.2.7). The association does not read a
// peer's list; RECONFIG and Forward-TSN use are not negotiated from it.
type SupportedExtensions struct {
	ChunkTypes []uint8
}

func (p *SupportedExtensions) Type() Type { return TypeSupportedExt }

func (p *SupportedExtensions) ValueLength() int { return len(p.ChunkTypes) }

func (p *SupportedExtensions) Unmarshal(raw []byte) error {
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

func (p *SupportedExtensions) Marshal() ([]byte, error) {
	valueLen := p.ValueLength()
	total := headerLength + valueLen + paddingLength(headerLength+valueLen)
	buf := make([]byte, total)
	writeHeader(buf, TypeSupportedExt, valueLen)
	copy(buf[headerLength:], p.ChunkTypes)
	return buf, nil
}
