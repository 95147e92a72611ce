/*
【ファイル概要: chunk.go】
Chunk は全チャンク種別が実装する共通コントラクト。Build が 8 ビットの
type を読み取り、対応する具象チャンクを構築して返す多態ディスパッチです
（param.Build と対になる、チャンク側の build_param）。
*/
package chunk

// Chunk is implemented by every chunk kind this engine encodes and
// decodes.
type Chunk interface {
	Unmarshal(raw []byte) error
	Marshal() ([]byte, error)
	ValueLength() int
	Type() Type
}

// Build reads the chunk header from raw (a single chunk, unpadded
// length as declared, but raw may have trailing bytes belonging to
// later chunks/padding) and constructs the matching concrete Chunk.
// For a type this engine does not implement, it returns errUnhandledType
// together with the type's Action() so the caller can decide
// skip-vs-abort without re-parsing the header.
func Build(raw []byte) (Chunk, error) {
	h, err := parseHeader(raw)
	if err != nil {
		return nil, err
	}

	var c Chunk
	switch h.typ {
	case TypeInit:
		c = &Init{}
	case TypeInitAck:
		c = &InitAck{}
	case TypeCookieEcho:
		c = &CookieEcho{}
	case TypeCookieAck:
		c = &CookieAck{}
	case TypeData:
		c = &Data{}
	case TypeSack:
		c = &Sack{}
	case TypeHeartbeat:
		c = &Heartbeat{}
	case TypeHeartbeatAck:
		c = &HeartbeatAck{}
	case TypeAbort:
		c = &Abort{}
	case TypeShutdown:
		c = &Shutdown{}
	case TypeShutdownAck:
		c = &ShutdownAck{}
	case TypeShutdownComplete:
		c = &ShutdownComplete{}
	case TypeError:
		c = &ErrorChunk{}
	case TypeForwardTSN:
		c = &ForwardTSN{}
	case TypeReconfig:
		c = &Reconfig{}
	default:
		return nil, &UnhandledTypeError{Type: h.typ, Action: h.typ.Action()}
	}

	if err := c.Unmarshal(raw); err != nil {
		return nil, err
	}
	return c, nil
}

// UnhandledTypeError wraps errUnhandledType with the specific type and
// its report-bits action, so a caller can decide whether to abort the
// whole packet or just skip this chunk.
type UnhandledTypeError struct {
	Type   Type
	Action UnrecognizedAction
}

func (e *UnhandledTypeError) Error() string { return errUnhandledType.Error() }

func (e *UnhandledTypeError) Unwrap() error { return errUnhandledType }
