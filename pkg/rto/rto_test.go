package rto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEstimatorFirstSample(t *testing.T) {
	e := NewEstimator(3*time.Second, time.Second, 60*time.Second)
	e.Sample(100 * time.Millisecond)
	require.Equal(t, time.Second, e.RTO()) // clamped to rto_min
}

func TestEstimatorConverges(t *testing.T) {
	e := NewEstimator(3*time.Second, 100*time.Millisecond, 60*time.Second)
	for i := 0; i < 50; i++ {
		e.Sample(200 * time.Millisecond)
	}
	require.InDelta(t, 200*time.Millisecond, e.RTO(), float64(20*time.Millisecond))
}

func TestEstimatorBackOff(t *testing.T) {
	e := NewEstimator(time.Second, 100*time.Millisecond, 2*time.Second)
	e.BackOff()
	require.Equal(t, 2*time.Second, e.RTO())
	e.BackOff()
	require.Equal(t, 2*time.Second, e.RTO()) // clamped to rto_max
}

func TestCongestionSlowStartThenAvoidance(t *testing.T) {
	c := NewCongestion(1200, 128*1024)
	require.Equal(t, 4380, c.Cwnd()) // min(4*1200, max(2*1200, 4380))
	c.ssthresh = 5000
	require.True(t, c.InSlowStart())

	c.OnNewDataAcked(1200)
	require.Equal(t, 4380+1200, c.Cwnd())

	for c.InSlowStart() {
		c.OnNewDataAcked(1200)
	}
	require.False(t, c.InSlowStart())

	c.SetCwndLimited(true)
	before := c.Cwnd()
	for i := 0; i < 10; i++ {
		c.OnNewDataAcked(1200)
	}
	require.Greater(t, c.Cwnd(), before)
}

func TestCongestionTimeoutAndFastRetransmit(t *testing.T) {
	c := NewCongestion(1200, 128*1024)
	c.cwnd = 20000
	c.OnTimeout()
	require.Equal(t, 1200, c.Cwnd())
	require.Equal(t, 10000, c.Ssthresh())

	c.cwnd = 20000
	c.OnFastRetransmit()
	require.Equal(t, 10000, c.Cwnd())
	require.Equal(t, 10000, c.Ssthresh())
}
