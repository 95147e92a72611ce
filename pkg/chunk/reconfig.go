package chunk

import "github.com/pion/ion-sctp/pkg/param"

// Reconfig carries one or two RECONFIG parameters: an
// OutgoingResetRequest, a ReconfigResponse, or both when a request and
// its response are piggybacked together (RFC 6525 §4).
type Reconfig struct {
	Params []param.Param
}

func (c *Reconfig) Type() Type { return TypeReconfig }

func (c *Reconfig) ValueLength() int {
	n := 0
	for _, p := range c.Params {
		n += headerLenOfParam(p)
	}
	return n
}

func (c *Reconfig) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	valueLen := int(h.len) - headerLength
	if valueLen < 0 || headerLength+valueLen > len(raw) {
		return errInvalidLength
	}
	c.Params = c.Params[:0]
	rest := raw[headerLength : headerLength+valueLen]
	for len(rest) > 0 {
		p, perr := param.Build(rest)
		if perr != nil {
			return perr
		}
		c.Params = append(c.Params, p)
		encoded, merr := p.Marshal()
		if merr != nil {
			return merr
		}
		rest = rest[len(encoded):]
	}
	return nil
}

func (c *Reconfig) Marshal() ([]byte, error) {
	valueLen := c.ValueLength()
	total := headerLength + valueLen + paddingLength(headerLength+valueLen)
	buf := make([]byte, total)
	writeHeader(buf, TypeReconfig, 0, valueLen)
	offset := headerLength
	for _, p := range c.Params {
		encoded, err := p.Marshal()
		if err != nil {
			return nil, err
		}
		copy(buf[offset:], encoded)
		offset += len(encoded)
	}
	return buf, nil
}
