package chunk

import (
	"encoding/binary"

	"github.com/pion/ion-sctp/pkg/param"
)

const initFixedLen = 16

// initCommon holds the fields shared byte-for-byte by INIT and
// INIT-ACK (RFC 4960 §3.3.1, §3.3.2).
type initCommon struct {
	InitiateTag                    uint32
	AdvertisedReceiverWindowCredit uint32
	NumOutboundStreams             uint16
	NumInboundStreams              uint16
	InitialTSN                     uint32
	Params                         []param.Param
}

func (c *initCommon) valueLength() int {
	n := initFixedLen
	for _, p := range c.Params {
		n += headerLenOfParam(p)
	}
	return n
}

// headerLenOfParam returns a parameter's padded on-wire size.
func headerLenOfParam(p param.Param) int {
	v := p.ValueLength()
	return 4 + v + paddingLength(4+v)
}

func (c *initCommon) unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	valueLen := int(h.len) - headerLength
	if valueLen < initFixedLen {
		return errInvalidLength
	}
	body := raw[headerLength:]
	c.InitiateTag = binary.BigEndian.Uint32(body[0:4])
	c.AdvertisedReceiverWindowCredit = binary.BigEndian.Uint32(body[4:8])
	c.NumOutboundStreams = binary.BigEndian.Uint16(body[8:10])
	c.NumInboundStreams = binary.BigEndian.Uint16(body[10:12])
	c.InitialTSN = binary.BigEndian.Uint32(body[12:16])

	c.Params = c.Params[:0]
	rest := body[initFixedLen:valueLen]
	for len(rest) > 0 {
		p, perr := param.Build(rest)
		if perr != nil {
			return perr
		}
		c.Params = append(c.Params, p)
		raw, merr := p.Marshal()
		if merr != nil {
			return merr
		}
		rest = rest[len(raw):]
	}
	return nil
}

func (c *initCommon) marshal(buf []byte) {
	binary.BigEndian.PutUint32(buf[0:4], c.InitiateTag)
	binary.BigEndian.PutUint32(buf[4:8], c.AdvertisedReceiverWindowCredit)
	binary.BigEndian.PutUint16(buf[8:10], c.NumOutboundStreams)
	binary.BigEndian.PutUint16(buf[10:12], c.NumInboundStreams)
	binary.BigEndian.PutUint32(buf[12:16], c.InitialTSN)

	offset := initFixedLen
	for _, p := range c.Params {
		raw, _ := p.Marshal()
		copy(buf[offset:], raw)
		offset += len(raw)
	}
}

// Init is the INIT chunk: opens an association (RFC 4960 §3.3.1).
type Init struct {
	initCommon
}

func (c *Init) Type() Type { return TypeInit }

func (c *Init) ValueLength() int { return c.valueLength() }

func (c *Init) Unmarshal(raw []byte) error { return c.unmarshal(raw) }

func (c *Init) Marshal() ([]byte, error) {
	valueLen := c.ValueLength()
	total := headerLength + valueLen + paddingLength(headerLength+valueLen)
	buf := make([]byte, total)
	writeHeader(buf, TypeInit, 0, valueLen)
	c.marshal(buf[headerLength:])
	return buf, nil
}

// InitAck is the INIT-ACK chunk, identical on the wire to INIT but for
// its type byte (RFC 4960 §3.3.2); it always carries a state cookie
// parameter.
type InitAck struct {
	initCommon
}

func (c *InitAck) Type() Type { return TypeInitAck }

func (c *InitAck) ValueLength() int { return c.valueLength() }

func (c *InitAck) Unmarshal(raw []byte) error { return c.unmarshal(raw) }

func (c *InitAck) Marshal() ([]byte, error) {
	valueLen := c.ValueLength()
	total := headerLength + valueLen + paddingLength(headerLength+valueLen)
	buf := make([]byte, total)
	writeHeader(buf, TypeInitAck, 0, valueLen)
	c.marshal(buf[headerLength:])
	return buf, nil
}
