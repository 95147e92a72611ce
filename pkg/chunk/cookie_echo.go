package chunk

// CookieEcho returns the state cookie minted by the passive side's
// INIT-ACK, verbatim (RFC 4960 §3.3.11). Its contents are opaque to
// the codec; the association's cookie verifier interprets them.
type CookieEcho struct {
	Cookie []byte
}

func (c *CookieEcho) Type() Type { return TypeCookieEcho }

func (c *CookieEcho) ValueLength() int { return len(c.Cookie) }

func (c *CookieEcho) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	valueLen := int(h.len) - headerLength
	if valueLen < 0 || headerLength+valueLen > len(raw) {
		return errInvalidLength
	}
	c.Cookie = append([]byte(nil), raw[headerLength:headerLength+valueLen]...)
	return nil
}

func (c *CookieEcho) Marshal() ([]byte, error) {
	valueLen := c.ValueLength()
	total := headerLength + valueLen + paddingLength(headerLength+valueLen)
	buf := make([]byte, total)
	writeHeader(buf, TypeCookieEcho, 0, valueLen)
	copy(buf[headerLength:], c.Cookie)
	return buf, nil
}

// CookieAck confirms a valid COOKIE-ECHO; carries no value (RFC 4960 §3.3.12).
type CookieAck struct{}

func (c *CookieAck) Type() Type { return TypeCookieAck }

func (c *CookieAck) ValueLength() int { return 0 }

func (c *CookieAck) Unmarshal(raw []byte) error {
	_, err := parseHeader(raw)
	return err
}

func (c *CookieAck) Marshal() ([]byte, error) {
	buf := make([]byte, headerLength)
	writeHeader(buf, TypeCookieAck, 0, 0)
	return buf, nil
}
