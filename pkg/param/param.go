/*
【ファイル概要: param.go】
Param は全パラメータ種別が実装する共通コントラクトです。

build_param（Build 関数）は 16 ビットの type を読み取り、対応する
具象パラメータ型を構築して Param ハンドルとして返す多態ディスパッチです。
各パラメータ型が同じインターフェースを実装し、呼び出し側は
インターフェース経由の動的ディスパッチで全種別を同じ形で扱う。
*/
package param

// Param is implemented by every parameter kind this engine decodes and
// encodes: state cookie, forward-tsn-supported, supported-extensions,
// random, requested-hmac, chunk-list, heartbeat-info, outgoing-ssn-reset
// -request, reconfig-response.
type Param interface {
	// Unmarshal decodes raw (a full TLV, header included) into the
	// receiver. raw must not be retained past the call.
	Unmarshal(raw []byte) error
	// Marshal encodes the receiver as a padded TLV.
	Marshal() ([]byte, error)
	// ValueLength returns the un-padded value length (header excluded).
	ValueLength() int
	// Type returns the parameter's wire type.
	Type() Type
}

// Build reads the 16-bit type from raw and constructs the matching
// concrete Param, or errParamTypeUnhandled if raw's type isn't one of
// the nine kinds this engine understands. The INIT/INIT-ACK decoder
// that calls Build rejects the whole chunk on any error from it, an
// unhandled type included; the type's report bits are not consulted.
func Build(raw []byte) (Param, error) {
	h, err := parseHeader(raw)
	if err != nil {
		return nil, err
	}

	var p Param
	switch h.typ {
	case TypeForwardTSNSupp:
		p = &ForwardTSNSupported{}
	case TypeSupportedExt:
		p = &SupportedExtensions{}
	case TypeRandom:
		p = &Random{}
	case TypeReqHMACAlgo:
		p = &RequestedHMACAlgorithm{}
	case TypeChunkList:
		p = &ChunkList{}
	case TypeStateCookie:
		p = &StateCookie{}
	case TypeHeartbeatInfo:
		p = &HeartbeatInfo{}
	case TypeOutSSNResetReq:
		p = &OutgoingResetRequest{}
	case TypeReconfigResp:
		p = &ReconfigResponse{}
	default:
		return nil, errParamTypeUnhandled
	}

	if err := p.Unmarshal(raw); err != nil {
		return nil, err
	}
	return p, nil
}
