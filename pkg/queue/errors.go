/*
【ファイル概要: errors.go】
queue パッケージが返すエラー。
*/
package queue

import "errors"

// errDuplicateTSN marks a DATA chunk already present in the
// reassembly window; callers record it for the SACK duplicate list
// instead of treating it as an error.
var errDuplicateTSN = errors.New("queue: duplicate tsn")
