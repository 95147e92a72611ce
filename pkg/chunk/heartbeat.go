package chunk

import "github.com/pion/ion-sctp/pkg/param"

// Heartbeat probes path liveness; the peer must echo its
// heartbeat-info parameter unchanged in HEARTBEAT-ACK (RFC 4960 §3.3.5).
type Heartbeat struct {
	Info param.HeartbeatInfo
}

func (c *Heartbeat) Type() Type { return TypeHeartbeat }

func (c *Heartbeat) ValueLength() int { return headerLenOfParam(&c.Info) }

func (c *Heartbeat) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	valueLen := int(h.len) - headerLength
	if valueLen <= 0 || headerLength+valueLen > len(raw) {
		return errInvalidLength
	}
	return c.Info.Unmarshal(raw[headerLength : headerLength+valueLen])
}

func (c *Heartbeat) Marshal() ([]byte, error) {
	valueLen := c.ValueLength()
	total := headerLength + valueLen + paddingLength(headerLength+valueLen)
	buf := make([]byte, total)
	writeHeader(buf, TypeHeartbeat, 0, valueLen)
	info, err := c.Info.Marshal()
	if err != nil {
		return nil, err
	}
	copy(buf[headerLength:], info)
	return buf, nil
}

// HeartbeatAck echoes the HEARTBEAT's heartbeat-info parameter
// unchanged (RFC 4960 §3.3.6); the association uses round-trip time
// from send to receipt as an RTT sample.
type HeartbeatAck struct {
	Info param.HeartbeatInfo
}

func (c *HeartbeatAck) Type() Type { return TypeHeartbeatAck }

func (c *HeartbeatAck) ValueLength() int { return headerLenOfParam(&c.Info) }

func (c *HeartbeatAck) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	valueLen := int(h.len) - headerLength
	if valueLen <= 0 || headerLength+valueLen > len(raw) {
		return errInvalidLength
	}
	return c.Info.Unmarshal(raw[headerLength : headerLength+valueLen])
}

func (c *HeartbeatAck) Marshal() ([]byte, error) {
	valueLen := c.ValueLength()
	total := headerLength + valueLen + paddingLength(headerLength+valueLen)
	buf := make([]byte, total)
	writeHeader(buf, TypeHeartbeatAck, 0, valueLen)
	info, err := c.Info.Marshal()
	if err != nil {
		return nil, err
	}
	copy(buf[headerLength:], info)
	return buf, nil
}
