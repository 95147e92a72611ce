/*
【ファイル概要: heartbeat.go】
HEARTBEAT の送信と RTT サンプリング。

単一パスのみをサポートするこの実装では疎通監視目的の定期送信は
必須ではないが、RTT サンプルを DATA/SACK の往復に頼らず取得できる
手段として公開しておく（param.HeartbeatInfo のコメントが前提とする
「送信タイムスタンプを埋め込んで ACK で回収する」設計をそのまま使う）。
*/
package association

import (
	"encoding/binary"
	"time"

	"github.com/pion/ion-sctp/pkg/chunk"
	"github.com/pion/ion-sctp/pkg/param"
)

// Heartbeat queues a HEARTBEAT carrying the current time, so the
// matching HEARTBEAT-ACK can be turned into an RTT sample.
func (a *Association) Heartbeat() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || a.state != StateEstablished {
		return ErrClosed
	}
	hb := &chunk.Heartbeat{Info: param.HeartbeatInfo{Info: encodeHeartbeatTimestamp(time.Now())}}
	a.control.Push(hb)
	a.runSendPumpLocked()
	return nil
}

func encodeHeartbeatTimestamp(t time.Time) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(t.UnixNano()))
	return buf
}

func decodeHeartbeatTimestamp(info []byte) (time.Time, bool) {
	if len(info) < 8 {
		return time.Time{}, false
	}
	return time.Unix(0, int64(binary.BigEndian.Uint64(info[:8]))), true
}
