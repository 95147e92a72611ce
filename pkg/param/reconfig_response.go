package param

import "encoding/binary"

// ResultCode is the outcome a peer reports for a reconfiguration
// request (RFC 6525 §4.4).
type ResultCode uint32

const (
	ResultSuccessNothingToDo ResultCode = iota
	ResultSuccessPerformed
	ResultDenied
	ResultErrorWrongSSN
	ResultErrorRequestAlreadyInProgress
	ResultErrorBadSequenceNumber
	ResultInProgress
)

func (r ResultCode) String() string {
	switch r {
	case ResultSuccessNothingToDo:
		return "success-nothing-to-do"
	case ResultSuccessPerformed:
		return "success-performed"
	case ResultDenied:
		return "denied"
	case ResultErrorWrongSSN:
		return "error-wrong-ssn"
	case ResultErrorRequestAlreadyInProgress:
		return "error-request-already-in-progress"
	case ResultErrorBadSequenceNumber:
		return "error-bad-sequence-number"
	case ResultInProgress:
		return "in-progress"
	default:
		return "unknown"
	}
}

// ReconfigResponse answers a RECONFIG request with a result code
// (RFC 6525 §4.4).
type ReconfigResponse struct {
	ReconfigResponseSequenceNumber uint32
	Result                         ResultCode
}

const reconfigResponseFixedLen = 8

func (p *ReconfigResponse) Type() Type { return TypeReconfigResp }

func (p *ReconfigResponse) ValueLength() int { return reconfigResponseFixedLen }

func (p *ReconfigResponse) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	valueLen := int(h.len) - headerLength
	if valueLen != reconfigResponseFixedLen || headerLength+valueLen > len(raw) {
		return errParamInvalidLength
	}
	body := raw[headerLength:]
	p.ReconfigResponseSequenceNumber = binary.BigEndian.Uint32(body[0:4])
	p.Result = ResultCode(binary.BigEndian.Uint32(body[4:8]))
	return nil
}

func (p *ReconfigResponse) Marshal() ([]byte, error) {
	buf := make([]byte, headerLength+reconfigResponseFixedLen)
	writeHeader(buf, TypeReconfigResp, reconfigResponseFixedLen)
	body := buf[headerLength:]
	binary.BigEndian.PutUint32(body[0:4], p.ReconfigResponseSequenceNumber)
	binary.BigEndian.PutUint32(body[4:8], uint32(p.Result))
	return buf, nil
}
