/*
【ファイル概要: errors.go】
chunk パッケージが返すデコードエラー。パケット全体を捨てるか
(HeaderTooShort/InvalidLength)、個別チャンクだけ捨てるか
(UnhandledType とその report ビット) は呼び出し側が決める。
*/
package chunk

import "errors"

var (
	errHeaderTooShort   = errors.New("chunk: header too short")
	errInvalidLength    = errors.New("chunk: length field inconsistent with buffer")
	errUnhandledType    = errors.New("chunk: unhandled chunk type")
	errChecksumMismatch = errors.New("chunk: CRC32c checksum mismatch")
	errPacketTooShort   = errors.New("chunk: packet shorter than common header")
	errPacketNoChunks   = errors.New("chunk: packet carries no chunks")
)
