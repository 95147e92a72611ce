package chunk

import "encoding/binary"

// ErrorCause is a TLV carried inside ABORT and ERROR chunks (RFC 4960
// §3.3.10). This engine treats cause codes as opaque: it surfaces
// them to the user as the reason an association failed without
// interpreting most of them itself.
type ErrorCause struct {
	Code uint16
	Info []byte
}

// CauseUserInitiatedAbort is the cause code carried by an ABORT the
// local user requested, with the user's reason as the cause info
// (RFC 4960 §3.3.10.12).
const CauseUserInitiatedAbort uint16 = 12

const causeHeaderLen = 4

func (e ErrorCause) paddedLen() int {
	return causeHeaderLen + len(e.Info) + paddingLength(causeHeaderLen+len(e.Info))
}

func marshalCauses(causes []ErrorCause) []byte {
	var total int
	for _, c := range causes {
		total += c.paddedLen()
	}
	buf := make([]byte, total)
	offset := 0
	for _, c := range causes {
		binary.BigEndian.PutUint16(buf[offset:offset+2], c.Code)
		binary.BigEndian.PutUint16(buf[offset+2:offset+4], uint16(causeHeaderLen+len(c.Info)))
		copy(buf[offset+causeHeaderLen:], c.Info)
		offset += c.paddedLen()
	}
	return buf
}

func unmarshalCauses(body []byte) ([]ErrorCause, error) {
	var causes []ErrorCause
	for len(body) > 0 {
		if len(body) < causeHeaderLen {
			return nil, errInvalidLength
		}
		code := binary.BigEndian.Uint16(body[0:2])
		length := int(binary.BigEndian.Uint16(body[2:4]))
		if length < causeHeaderLen || length > len(body) {
			return nil, errInvalidLength
		}
		causes = append(causes, ErrorCause{
			Code: code,
			Info: append([]byte(nil), body[causeHeaderLen:length]...),
		})
		adv := length + paddingLength(length)
		if adv > len(body) {
			break
		}
		body = body[adv:]
	}
	return causes, nil
}

func causesLen(causes []ErrorCause) int {
	var n int
	for _, c := range causes {
		n += c.paddedLen()
	}
	return n
}
