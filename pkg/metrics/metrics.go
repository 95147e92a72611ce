/*
【ファイル概要: metrics.go】
association の輻輳制御／RTT／再送状態を Prometheus に公開する
Collector です。

構造は runZeroInc-conniver の pkg/exporter/exporter.go（TCPInfoCollector）
に倣っています: 固定の prometheus.Desc 集合を用意し、Collect 時に
登録済みの各ソースから値を取り出して流すだけの薄い Collector で、
association 側には手を入れません。
*/
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Source is the read-only view an Association exposes for metrics
// collection, so this package never reaches into association internals
// directly.
type Source interface {
	InstanceID() string
	Cwnd() int
	Ssthresh() int
	RTO() float64
	InflightBytes() int
	Retransmits() uint64
	SacksSent() uint64
	ForwardTSNsSent() uint64
}

type desc struct {
	description *prometheus.Desc
	valueType   prometheus.ValueType
	supplier    func(s Source) float64
}

// Collector implements prometheus.Collector over every registered
// Association Source, labelled by instance id.
type Collector struct {
	mu      sync.Mutex
	sources map[string]Source
	descs   []desc
}

// NewCollector returns a Collector publishing metrics under prefix
// (e.g. "sctp").
func NewCollector(prefix string) *Collector {
	labels := []string{"association"}
	return &Collector{
		sources: make(map[string]Source),
		descs: []desc{
			{prometheus.NewDesc(prefix+"_cwnd_bytes", "Current congestion window.", labels, nil),
				prometheus.GaugeValue, func(s Source) float64 { return float64(s.Cwnd()) }},
			{prometheus.NewDesc(prefix+"_ssthresh_bytes", "Current slow-start threshold.", labels, nil),
				prometheus.GaugeValue, func(s Source) float64 { return float64(s.Ssthresh()) }},
			{prometheus.NewDesc(prefix+"_rto_seconds", "Current retransmission timeout.", labels, nil),
				prometheus.GaugeValue, func(s Source) float64 { return s.RTO() }},
			{prometheus.NewDesc(prefix+"_inflight_bytes", "Bytes sent but not yet cumulatively acked.", labels, nil),
				prometheus.GaugeValue, func(s Source) float64 { return float64(s.InflightBytes()) }},
			{prometheus.NewDesc(prefix+"_retransmits_total", "Total DATA fragment retransmissions.", labels, nil),
				prometheus.CounterValue, func(s Source) float64 { return float64(s.Retransmits()) }},
			{prometheus.NewDesc(prefix+"_sacks_sent_total", "Total SACK chunks sent.", labels, nil),
				prometheus.CounterValue, func(s Source) float64 { return float64(s.SacksSent()) }},
			{prometheus.NewDesc(prefix+"_forward_tsns_sent_total", "Total FORWARD-TSN chunks sent.", labels, nil),
				prometheus.CounterValue, func(s Source) float64 { return float64(s.ForwardTSNsSent()) }},
		},
	}
}

// Register adds an association's Source so future Collect calls
// include it. Idempotent per instance id.
func (c *Collector) Register(s Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources[s.InstanceID()] = s
}

// Unregister removes an association's Source, e.g. once it closes.
func (c *Collector) Unregister(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sources, id)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d.description
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, s := range c.sources {
		for _, d := range c.descs {
			ch <- prometheus.MustNewConstMetric(d.description, d.valueType, d.supplier(s), id)
		}
	}
}
