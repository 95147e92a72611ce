package chunk

// abortFlagT marks an ABORT sent without a TCB (T-bit, RFC 4960 §3.3.7).
const abortFlagT uint8 = 1

// Abort unconditionally ends an association, optionally carrying cause
// codes explaining why (RFC 4960 §3.3.7). On receipt the association
// closes with an error whose reason is the first cause's info text;
// the cause codes themselves are not carried in that error.
type Abort struct {
	NoTCB  bool
	Causes []ErrorCause
}

func (c *Abort) Type() Type { return TypeAbort }

func (c *Abort) ValueLength() int { return causesLen(c.Causes) }

func (c *Abort) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	valueLen := int(h.len) - headerLength
	if valueLen < 0 || headerLength+valueLen > len(raw) {
		return errInvalidLength
	}
	c.NoTCB = h.flags&abortFlagT != 0
	causes, err := unmarshalCauses(raw[headerLength : headerLength+valueLen])
	if err != nil {
		return err
	}
	c.Causes = causes
	return nil
}

func (c *Abort) Marshal() ([]byte, error) {
	valueLen := c.ValueLength()
	total := headerLength + valueLen + paddingLength(headerLength+valueLen)
	buf := make([]byte, total)
	var flags uint8
	if c.NoTCB {
		flags = abortFlagT
	}
	writeHeader(buf, TypeAbort, flags, valueLen)
	copy(buf[headerLength:], marshalCauses(c.Causes))
	return buf, nil
}
