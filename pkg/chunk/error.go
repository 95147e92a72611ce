package chunk

// ErrorChunk reports a non-fatal protocol error to the peer (RFC 4960
// §3.3.10), as opposed to ABORT which is fatal.
type ErrorChunk struct {
	Causes []ErrorCause
}

func (c *ErrorChunk) Type() Type { return TypeError }

func (c *ErrorChunk) ValueLength() int { return causesLen(c.Causes) }

func (c *ErrorChunk) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	valueLen := int(h.len) - headerLength
	if valueLen < 0 || headerLength+valueLen > len(raw) {
		return errInvalidLength
	}
	causes, err := unmarshalCauses(raw[headerLength : headerLength+valueLen])
	if err != nil {
		return err
	}
	c.Causes = causes
	return nil
}

func (c *ErrorChunk) Marshal() ([]byte, error) {
	valueLen := c.ValueLength()
	total := headerLength + valueLen + paddingLength(headerLength+valueLen)
	buf := make([]byte, total)
	writeHeader(buf, TypeError, 0, valueLen)
	copy(buf[headerLength:], marshalCauses(c.Causes))
	return buf, nil
}
