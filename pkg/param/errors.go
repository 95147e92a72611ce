/*
【ファイル概要: errors.go】
param パッケージが返すエラーの一覧。

decode 系のエラーは呼び出し元のチャンクにそのまま返され、INIT/INIT-ACK
のデコードはパラメータのエラー（未知の type を含む）一つでチャンク全体を
失敗させる。type の report ビットは参照されない。param パッケージ自身は
abort するかどうかを判断しない。
*/
package param

import "errors"

var (
	// errParamHeaderTooShort is returned when fewer bytes remain than a
	// parameter TLV header (4 bytes) requires.
	errParamHeaderTooShort = errors.New("param: header too short")
	// errParamTooShort is returned when the declared length exceeds the
	// bytes actually available.
	errParamTooShort = errors.New("param: value shorter than declared length")
	// errParamTypeUnhandled is returned by Build for any type not in the
	// nine parameter kinds this engine knows how to decode.
	errParamTypeUnhandled = errors.New("param: unhandled parameter type")
	// errParamInvalidLength is returned when a fixed-size parameter's
	// declared length does not match its known size.
	errParamInvalidLength = errors.New("param: invalid length for type")
)
