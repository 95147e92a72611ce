/*
【ファイル概要: estimator.go】
RFC 6298 (+ RFC 4960 の SCTP 向け変形) の RTO 推定器。

Karn's rule（再送されたチャンクからは RTT サンプルを取らない）の
適用は呼び出し側（association の SACK 処理）の責務とし、ここでは
与えられたサンプルをそのまま式に当てはめるだけにしている。
*/
package rto

import "time"

// Estimator tracks srtt/rttvar/rto per RFC 6298, with SCTP's defaults
// (RFC 4960 §15): rto_initial=3s, rto_min=1s, rto_max=60s.
type Estimator struct {
	min, max  time.Duration
	srtt      time.Duration
	rttvar    time.Duration
	rto       time.Duration
	hasSample bool
}

// NewEstimator returns an estimator seeded at initial until the first
// RTT sample arrives.
func NewEstimator(initial, min, max time.Duration) *Estimator {
	return &Estimator{min: min, max: max, rto: initial}
}

// RTO returns the current retransmission timeout.
func (e *Estimator) RTO() time.Duration { return e.rto }

// Sample folds one new RTT measurement into the estimator.
func (e *Estimator) Sample(r time.Duration) {
	if !e.hasSample {
		e.srtt = r
		e.rttvar = r / 2
		e.hasSample = true
	} else {
		diff := e.srtt - r
		if diff < 0 {
			diff = -diff
		}
		e.rttvar = (3*e.rttvar + diff) / 4
		e.srtt = (7*e.srtt + r) / 8
	}

	rto := e.srtt + 4*e.rttvar
	e.rto = clamp(rto, e.min, e.max)
}

// BackOff doubles the RTO (exponential backoff on a retransmit timer
// expiry), clamped to max.
func (e *Estimator) BackOff() {
	e.rto = clamp(e.rto*2, e.min, e.max)
}

func clamp(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}
