/*
【ファイル概要: reassembly.go】
message は同一メッセージに属する DATA フラグメント群（同一 SSN、連続
した TSN）を beginning/ending フラグに従って束ね、完成したら一つの
バイト列に組み立てます。
*/
package stream

import "github.com/pion/ion-sctp/pkg/queue"

type message struct {
	ssn      uint16
	byTSN    map[uint32]*queue.DataChunk
	beginTSN uint32
	endTSN   uint32
	hasBegin bool
	hasEnd   bool
}

func newMessage(ssn uint16) *message {
	return &message{ssn: ssn, byTSN: make(map[uint32]*queue.DataChunk)}
}

func (m *message) add(c *queue.DataChunk) {
	m.byTSN[c.TSN] = c
	if c.Beginning {
		m.beginTSN = c.TSN
		m.hasBegin = true
	}
	if c.Ending {
		m.endTSN = c.TSN
		m.hasEnd = true
	}
}

// ready reports whether every fragment from beginTSN through endTSN
// has arrived, i.e. the message can be assembled.
func (m *message) ready() bool {
	if !m.hasBegin || !m.hasEnd {
		return false
	}
	if m.beginTSN == m.endTSN {
		return true
	}
	for tsn := m.beginTSN; tsn != m.endTSN; tsn++ {
		if _, ok := m.byTSN[tsn]; !ok {
			return false
		}
	}
	return true
}

// assemble concatenates fragment payloads in TSN order. Caller must
// have checked ready() first.
func (m *message) assemble() (payload []byte, ppi uint32) {
	tsn := m.beginTSN
	for {
		c := m.byTSN[tsn]
		payload = append(payload, c.UserData...)
		ppi = c.PPI
		if tsn == m.endTSN {
			break
		}
		tsn++
	}
	return payload, ppi
}
