package param

// HeartbeatInfo carries sender-defined opaque data that must be echoed
// back unchanged in the matching HEARTBEAT-ACK (RFC 4960 §3.3.6). This
// engine stamps it with a send timestamp so the RTT sample can be
// computed when the echo returns.
type HeartbeatInfo struct {
	Info []byte
}

func (p *HeartbeatInfo) Type() Type { return TypeHeartbeatInfo }

func (p *HeartbeatInfo) ValueLength() int { return len(p.Info) }

func (p *HeartbeatInfo) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	valueLen := int(h.len) - headerLength
	if valueLen < 0 || headerLength+valueLen > len(raw) {
		return errParamTooShort
	}
	p.Info = append([]byte(nil), raw[headerLength:headerLength+valueLen]...)
	return nil
}

func (p *HeartbeatInfo) Marshal() ([]byte, error) {
	valueLen := p.ValueLength()
	total := headerLength + valueLen + paddingLength(headerLength+valueLen)
	buf := make([]byte, total)
	writeHeader(buf, TypeHeartbeatInfo, valueLen)
	copy(buf[headerLength:], p.Info)
	return buf, nil
}
