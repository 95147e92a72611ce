package param

// Random carries the random data of a RANDOM parameter. This engine
// decodes and encodes it; the state-cookie MAC does not use it.
type Random struct {
	RandomData []byte
}

func (p *Random) Type() Type { return TypeRandom }

func (p *Random) ValueLength() int { return len(p.RandomData) }

func (p *Random) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	valueLen := int(h.len) - headerLength
	if valueLen < 0 || headerLength+valueLen > len(raw) {
		return errParamTooShort
	}
	p.RandomData = append([]byte(nil), raw[headerLength:headerLength+valueLen]...)
	return nil
}

func (p *Random) Marshal() ([]byte, error) {
	valueLen := p.ValueLength()
	total := headerLength + valueLen + paddingLength(headerLength+valueLen)
	buf := make([]byte, total)
	writeHeader(buf, TypeRandom, valueLen)
	copy(buf[headerLength:], p.RandomData)
	return buf, nil
}
