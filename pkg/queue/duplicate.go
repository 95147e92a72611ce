/*
【ファイル概要: duplicate.go】
DuplicateTracker は SACK に載せる duplicate TSN リストを保持します。

構造とアルゴリズムは pkg/buffer/nack.go の nackQueue（ソート済みスライス
への sort.Search による挿入/削除）をそのまま流用しています。NACK が
「再送要求が必要な欠落パケット」を追跡するのに対し、こちらは
「既に受信済みだが再度届いた TSN」を次の SACK まで保持するだけなので、
再送カウントやキーフレーム要求の概念は不要で、push/drain だけが残った
単純な形になっています。
*/
package queue

import "sort"

// DuplicateTracker accumulates TSNs that arrived more than once since
// the last SACK, for that SACK's duplicate-TSN list.
type DuplicateTracker struct {
	tsns []uint32
}

// Push records tsn as a duplicate arrival, if not already pending.
func (d *DuplicateTracker) Push(tsn uint32) {
	i := sort.Search(len(d.tsns), func(i int) bool { return d.tsns[i] >= tsn })
	if i < len(d.tsns) && d.tsns[i] == tsn {
		return
	}
	d.tsns = append(d.tsns, 0)
	copy(d.tsns[i+1:], d.tsns[i:])
	d.tsns[i] = tsn
}

// Len reports how many duplicate TSNs are pending.
func (d *DuplicateTracker) Len() int { return len(d.tsns) }

// Drain returns the pending duplicate TSNs and clears the tracker,
// called once per SACK emitted.
func (d *DuplicateTracker) Drain() []uint32 {
	out := d.tsns
	d.tsns = nil
	return out
}
