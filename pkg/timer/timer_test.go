package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduleFires(t *testing.T) {
	m := NewManager(4)
	tok := m.Schedule(T3Rtx, 10*time.Millisecond)
	require.Equal(t, T3Rtx, tok.Kind())

	select {
	case ev := <-m.Fired():
		require.Equal(t, T3Rtx, ev.Token.Kind())
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestCancelSuppressesFire(t *testing.T) {
	m := NewManager(4)
	m.Schedule(DelayedSack, 20*time.Millisecond)
	require.True(t, m.Cancel(DelayedSack))
	require.False(t, m.Active(DelayedSack))

	select {
	case ev := <-m.Fired():
		t.Fatalf("cancelled timer fired an effect: %+v", ev)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestRescheduleSupersedesPrevious(t *testing.T) {
	m := NewManager(4)
	m.Schedule(T1Init, 5*time.Millisecond)
	// Reschedule before the first one fires; only one event should arrive.
	tok := m.Schedule(T1Init, 30*time.Millisecond)

	select {
	case ev := <-m.Fired():
		require.Equal(t, tok, ev.Token)
	case <-time.After(time.Second):
		t.Fatal("rescheduled timer never fired")
	}

	select {
	case ev := <-m.Fired():
		t.Fatalf("superseded timer fired an extra effect: %+v", ev)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestCancelIdempotent(t *testing.T) {
	m := NewManager(4)
	require.False(t, m.Cancel(T2Shutdown))
	m.Schedule(T2Shutdown, time.Hour)
	require.True(t, m.Cancel(T2Shutdown))
	require.False(t, m.Cancel(T2Shutdown))
}

func TestRetransmitCounterExhausts(t *testing.T) {
	c := NewRetransmitCounter(3)
	require.True(t, c.Increment())
	require.True(t, c.Increment())
	require.True(t, c.Increment())
	require.False(t, c.Increment(), "a fourth attempt exceeds the limit of 3")
	require.Equal(t, 4, c.Count())
	c.Reset()
	require.Equal(t, 0, c.Count())
}
