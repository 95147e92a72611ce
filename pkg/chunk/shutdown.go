package chunk

import "encoding/binary"

// Shutdown initiates a graceful close once all inflight data has
// drained locally (RFC 4960 §3.3.8, §4.6).
type Shutdown struct {
	CumulativeTSNAck uint32
}

func (c *Shutdown) Type() Type { return TypeShutdown }

func (c *Shutdown) ValueLength() int { return 4 }

func (c *Shutdown) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	valueLen := int(h.len) - headerLength
	if valueLen != 4 || headerLength+valueLen > len(raw) {
		return errInvalidLength
	}
	c.CumulativeTSNAck = binary.BigEndian.Uint32(raw[headerLength : headerLength+4])
	return nil
}

func (c *Shutdown) Marshal() ([]byte, error) {
	buf := make([]byte, headerLength+4)
	writeHeader(buf, TypeShutdown, 0, 4)
	binary.BigEndian.PutUint32(buf[headerLength:], c.CumulativeTSNAck)
	return buf, nil
}

// ShutdownAck answers SHUTDOWN once the receiving side has also
// drained its own inflight data (RFC 4960 §3.3.9).
type ShutdownAck struct{}

func (c *ShutdownAck) Type() Type { return TypeShutdownAck }

func (c *ShutdownAck) ValueLength() int { return 0 }

func (c *ShutdownAck) Unmarshal(raw []byte) error {
	_, err := parseHeader(raw)
	return err
}

func (c *ShutdownAck) Marshal() ([]byte, error) {
	buf := make([]byte, headerLength)
	writeHeader(buf, TypeShutdownAck, 0, 0)
	return buf, nil
}

// ShutdownComplete closes the TCB on both sides (RFC 4960 §3.3.10).
type ShutdownComplete struct {
	NoTCB bool
}

func (c *ShutdownComplete) Type() Type { return TypeShutdownComplete }

func (c *ShutdownComplete) ValueLength() int { return 0 }

func (c *ShutdownComplete) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	c.NoTCB = h.flags&abortFlagT != 0
	return nil
}

func (c *ShutdownComplete) Marshal() ([]byte, error) {
	buf := make([]byte, headerLength)
	var flags uint8
	if c.NoTCB {
		flags = abortFlagT
	}
	writeHeader(buf, TypeShutdownComplete, flags, 0)
	return buf, nil
}
