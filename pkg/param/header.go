package param

import "encoding/binary"

// Type identifies the wire type of a parameter TLV (RFC 4960 §3.2.1 plus
// the RFC 3758 / RFC 6525 extensions this engine understands).
type Type uint16

const (
	TypeHeartbeatInfo        Type = 1
	TypeReserved1            Type = 2
	TypeReserved2            Type = 3
	TypeReserved3            Type = 4
	TypeStateCookie          Type = 7
	TypeReqHMACAlgo          Type = 8
	TypeSupportedExt         Type = 0x8008
	TypeRandom               Type = 0x8002
	TypeChunkList            Type = 0x8003
	TypeForwardTSNSupp       Type = 0xc000
	TypeOutSSNResetReq       Type = 0x000d
	TypeReconfigResp         Type = 0x0010
)

func (t Type) String() string {
	switch t {
	case TypeHeartbeatInfo:
		return "heartbeat-info"
	case TypeStateCookie:
		return "state-cookie"
	case TypeReqHMACAlgo:
		return "requested-hmac-algorithm"
	case TypeSupportedExt:
		return "supported-extensions"
	case TypeRandom:
		return "random"
	case TypeChunkList:
		return "chunk-list"
	case TypeForwardTSNSupp:
		return "forward-tsn-supported"
	case TypeOutSSNResetReq:
		return "outgoing-ssn-reset-request"
	case TypeReconfigResp:
		return "reconfig-response"
	default:
		return "unknown"
	}
}

// headerLength is the fixed TLV header size shared by every parameter:
// a 16-bit type followed by a 16-bit length (header included, padding
// excluded).
const headerLength = 4

// paddingLength returns how many pad bytes bring n up to the next
// multiple of 4.
func paddingLength(n int) int {
	return (4 - n%4) % 4
}

type header struct {
	typ Type
	len uint16
}

func parseHeader(raw []byte) (header, error) {
	if len(raw) < headerLength {
		return header{}, errParamHeaderTooShort
	}
	h := header{
		typ: Type(binary.BigEndian.Uint16(raw[0:2])),
		len: binary.BigEndian.Uint16(raw[2:4]),
	}
	if int(h.len) > len(raw) {
		return header{}, errParamTooShort
	}
	return h, nil
}

func writeHeader(buf []byte, typ Type, valueLen int) {
	binary.BigEndian.PutUint16(buf[0:2], uint16(typ))
	binary.BigEndian.PutUint16(buf[2:4], uint16(headerLength+valueLen))
}
