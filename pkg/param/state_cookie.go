package param

// StateCookie is an opaque, signed blob minted by the passive side in
// INIT-ACK and echoed back verbatim in COOKIE-ECHO. Its internal
// structure (tags, timestamps, HMAC) is owned by the association
// package's cookie minter/verifier, not by the codec: per RFC 4960
// §5.1.3 the cookie's contents are implementation-defined as long as
// it round-trips opaquely through the peer.
type StateCookie struct {
	Cookie []byte
}

func (p *StateCookie) Type() Type { return TypeStateCookie }

func (p *StateCookie) ValueLength() int { return len(p.Cookie) }

func (p *StateCookie) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	valueLen := int(h.len) - headerLength
	if valueLen < 0 || headerLength+valueLen > len(raw) {
		return errParamTooShort
	}
	p.Cookie = append([]byte(nil), raw[headerLength:headerLength+valueLen]...)
	return nil
}

func (p *StateCookie) Marshal() ([]byte, error) {
	valueLen := p.ValueLength()
	total := headerLength + valueLen + paddingLength(headerLength+valueLen)
	buf := make([]byte, total)
	writeHeader(buf, TypeStateCookie, valueLen)
	copy(buf[headerLength:], p.Cookie)
	return buf, nil
}
