/*
【ファイル概要: packet.go】
SCTP の共通ヘッダ（12 バイト: src port, dst port, verification tag,
CRC32c）とチャンクの並びをフレーミングするコーデック。

CRC32c は checksum フィールドをゼロにした状態でパケット全体
（ヘッダ＋チャンク＋パディング）に対して計算される（RFC 4960 §6.8）。
Castagnoli 多項式の CRC32 は標準ライブラリの hash/crc32 が提供する
純粋な原始計算であり、このエンジンではそれをそのまま利用する。
*/
package chunk

import (
	"encoding/binary"
	"hash/crc32"
)

// CommonHeaderLength is the fixed 12-byte packet header.
const CommonHeaderLength = 12

var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

// CommonHeader is the packet-level header shared by every SCTP packet.
type CommonHeader struct {
	SourcePort      uint16
	DestinationPort uint16
	VerificationTag uint32
	Checksum        uint32
}

// Packet is a full SCTP datagram: one common header followed by one or
// more 4-byte-aligned chunks.
type Packet struct {
	Header CommonHeader
	Chunks []Chunk
}

// Unmarshal parses raw into a Packet, verifying the CRC32c checksum.
// It does not validate the verification tag against any particular
// association's expected tag; that is a protocol-level decision made
// by the caller, since during the handshake the expected tag
// varies by chunk type.
func Unmarshal(raw []byte) (*Packet, error) {
	if len(raw) < CommonHeaderLength {
		return nil, errPacketTooShort
	}

	hdr := CommonHeader{
		SourcePort:      binary.BigEndian.Uint16(raw[0:2]),
		DestinationPort: binary.BigEndian.Uint16(raw[2:4]),
		VerificationTag: binary.BigEndian.Uint32(raw[4:8]),
		// The checksum field is the one exception to network byte order
		// in the common header: it is written little-endian (RFC 4960 §6.8).
		Checksum: binary.LittleEndian.Uint32(raw[8:12]),
	}

	if !verifyChecksum(raw, hdr.Checksum) {
		return nil, errChecksumMismatch
	}

	var chunks []Chunk
	rest := raw[CommonHeaderLength:]
	for len(rest) > 0 {
		h, err := parseHeader(rest)
		if err != nil {
			// A zero-padded tail shorter than a chunk header is not an
			// error: it's alignment padding from the previous chunk.
			if len(rest) < headerLength && isZero(rest) {
				break
			}
			return nil, err
		}

		c, err := Build(rest[:h.len])
		if uErr, ok := err.(*UnhandledTypeError); ok {
			switch uErr.Action {
			case ActionDiscardSilent, ActionDiscardReport:
				return nil, uErr
			case ActionSkipSilent, ActionSkipReport:
				// skip the chunk and keep parsing; a nil entry marks its
				// position. ActionSkipReport is not passed back to the caller.
				chunks = append(chunks, nil)
				rest = advance(rest, int(h.len))
				continue
			}
		} else if err != nil {
			return nil, err
		}

		chunks = append(chunks, c)
		rest = advance(rest, int(h.len))
	}

	if len(chunks) == 0 {
		return nil, errPacketNoChunks
	}

	return &Packet{Header: hdr, Chunks: chunks}, nil
}

func advance(rest []byte, chunkLen int) []byte {
	total := chunkLen + paddingLength(chunkLen)
	if total > len(rest) {
		return nil
	}
	return rest[total:]
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// Marshal serializes the packet, computing and filling in the CRC32c
// checksum over the complete byte image.
func (p *Packet) Marshal() ([]byte, error) {
	total := CommonHeaderLength
	encoded := make([][]byte, len(p.Chunks))
	for i, c := range p.Chunks {
		raw, err := c.Marshal()
		if err != nil {
			return nil, err
		}
		encoded[i] = raw
		total += len(raw) + paddingLength(len(raw))
	}

	buf := make([]byte, total)
	binary.BigEndian.PutUint16(buf[0:2], p.Header.SourcePort)
	binary.BigEndian.PutUint16(buf[2:4], p.Header.DestinationPort)
	binary.BigEndian.PutUint32(buf[4:8], p.Header.VerificationTag)
	// checksum field (buf[8:12]) stays zero until computed below.

	offset := CommonHeaderLength
	for _, raw := range encoded {
		copy(buf[offset:], raw)
		offset += len(raw) + paddingLength(len(raw))
	}

	sum := crc32.Checksum(buf, castagnoliTable)
	binary.LittleEndian.PutUint32(buf[8:12], sum)
	p.Header.Checksum = sum
	return buf, nil
}

func verifyChecksum(raw []byte, want uint32) bool {
	tmp := make([]byte, len(raw))
	copy(tmp, raw)
	tmp[8], tmp[9], tmp[10], tmp[11] = 0, 0, 0, 0
	return crc32.Checksum(tmp, castagnoliTable) == want
}
