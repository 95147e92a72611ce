/*
【ファイル概要: pending.go】
Pending は送信待ちの DataChunk を保持する FIFO です。

gammazero/deque を使うのは pkg/twcc の Responder.buildTransportCCPacket
が一時ステータスキューとして同じ push-back/pop-front 形状の
deque.Deque を使っているのと同じ理由: 送信ポンプは windowが許す限り
先頭から取り出す。PushFront も用意しているが、現在の送信ポンプは
使っていない。
*/
package queue

import "github.com/gammazero/deque"

// Pending holds DataChunk fragments a stream has written but the send
// pump has not yet scheduled, awaiting cwnd/a_rwnd headroom.
type Pending struct {
	items deque.Deque
	bytes int
}

// NewPending returns an empty pending queue.
func NewPending() *Pending {
	p := &Pending{}
	p.items.SetMinCapacity(4)
	return p
}

// Push enqueues a fragment for later send.
func (p *Pending) Push(d *DataChunk) {
	p.items.PushBack(d)
	p.bytes += len(d.UserData)
}

// PushFront puts a fragment at the head of the queue, ahead of earlier
// writes. Nothing in the association currently calls it.
func (p *Pending) PushFront(d *DataChunk) {
	p.items.PushFront(d)
	p.bytes += len(d.UserData)
}

// Peek returns the head fragment without removing it, or nil if empty.
func (p *Pending) Peek() *DataChunk {
	if p.items.Len() == 0 {
		return nil
	}
	return p.items.Front().(*DataChunk)
}

// Pop removes and returns the head fragment, or nil if empty.
func (p *Pending) Pop() *DataChunk {
	if p.items.Len() == 0 {
		return nil
	}
	d := p.items.PopFront().(*DataChunk)
	p.bytes -= len(d.UserData)
	return d
}

// Len reports the number of queued fragments.
func (p *Pending) Len() int { return p.items.Len() }

// Bytes reports the total payload bytes currently queued.
func (p *Pending) Bytes() int { return p.bytes }
