package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	id   string
	cwnd int
}

func (f *fakeSource) InstanceID() string      { return f.id }
func (f *fakeSource) Cwnd() int               { return f.cwnd }
func (f *fakeSource) Ssthresh() int           { return 5000 }
func (f *fakeSource) RTO() float64            { return 0.3 }
func (f *fakeSource) InflightBytes() int      { return 1200 }
func (f *fakeSource) Retransmits() uint64     { return 2 }
func (f *fakeSource) SacksSent() uint64       { return 10 }
func (f *fakeSource) ForwardTSNsSent() uint64 { return 1 }

func collectAll(t *testing.T, c *Collector) []prometheus.Metric {
	t.Helper()
	ch := make(chan prometheus.Metric, 64)
	c.Collect(ch)
	close(ch)

	var out []prometheus.Metric
	for m := range ch {
		out = append(out, m)
	}
	return out
}

func TestCollectorReportsRegisteredSources(t *testing.T) {
	c := NewCollector("sctp_test")
	c.Register(&fakeSource{id: "assoc-1", cwnd: 4800})

	out := collectAll(t, c)
	require.NotEmpty(t, out)

	found := false
	for _, m := range out {
		var d dto.Metric
		require.NoError(t, m.Write(&d))
		if d.GetGauge() != nil && d.GetGauge().GetValue() == 4800 {
			found = true
		}
	}
	require.True(t, found, "expected cwnd gauge value 4800 among collected metrics")
}

func TestUnregisterStopsReporting(t *testing.T) {
	c := NewCollector("sctp_test2")
	c.Register(&fakeSource{id: "assoc-2", cwnd: 100})
	c.Unregister("assoc-2")

	out := collectAll(t, c)
	require.Empty(t, out)
}
