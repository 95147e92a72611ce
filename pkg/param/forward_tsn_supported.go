package param

// ForwardTSNSupported is an empty parameter (RFC 3758 §3.1): its mere
// presence in INIT/INIT-ACK is the signal. Forward-TSN is only enabled
// on an association once both endpoints have listed it.
type ForwardTSNSupported struct{}

func (p *ForwardTSNSupported) Type() Type { return TypeForwardTSNSupp }

func (p *ForwardTSNSupported) ValueLength() int { return 0 }

func (p *ForwardTSNSupported) Unmarshal(raw []byte) error {
	h, err := parseHeader(raw)
	if err != nil {
		return err
	}
	if h.len != headerLength {
		return errParamInvalidLength
	}
	return nil
}

func (p *ForwardTSNSupported) Marshal() ([]byte, error) {
	buf := make([]byte, headerLength)
	writeHeader(buf, TypeForwardTSNSupp, 0)
	return buf, nil
}
