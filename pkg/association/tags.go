/*
【ファイル概要: tags.go】
verification tag・初期 TSN 用の乱数生成。

pion/randutil の Generator を使う — ハンドシェイクの非暗号学的な乱数は
pion エコシステム内で一貫してこの薄いラッパーを通す慣習があり、
math/rand を直接叩く一行コードにしない。
*/
package association

import "github.com/pion/randutil"

var tagGenerator = randutil.NewMathRandomGenerator()

// randomTag returns a random 32-bit value suitable for a verification
// tag, initial TSN, or cookie nonce component (RFC 4960 §5.3.1 calls
// for these to be hard to guess but not cryptographically secure).
func randomTag() uint32 {
	return tagGenerator.Uint32()
}
