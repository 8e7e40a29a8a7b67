package world

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors of one world on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	tickSeconds   prometheus.Histogram
	blocks        prometheus.Gauge
	proxies       prometheus.Gauge
	proxyAdds     prometheus.Counter
	proxyRemoves  prometheus.Counter
	edits         *prometheus.CounterVec
	editsRejected *prometheus.CounterVec
	resyncs       prometheus.Counter
}

func newMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		tickSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxelsandbox",
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent in one simulation tick.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		blocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxelsandbox",
			Name:      "blocks",
			Help:      "Non-air voxels in the store.",
		}),
		proxies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxelsandbox",
			Name:      "render_proxies",
			Help:      "Render proxies currently held for the renderer.",
		}),
		proxyAdds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelsandbox",
			Name:      "render_proxy_adds_total",
			Help:      "Render proxies created.",
		}),
		proxyRemoves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelsandbox",
			Name:      "render_proxy_removes_total",
			Help:      "Render proxies destroyed.",
		}),
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxelsandbox",
			Name:      "edits_total",
			Help:      "Applied block edits.",
		}, []string{"action"}),
		editsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxelsandbox",
			Name:      "edits_rejected_total",
			Help:      "Edit clicks that changed nothing.",
		}, []string{"action", "reason"}),
		resyncs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelsandbox",
			Name:      "renderer_resyncs_total",
			Help:      "Full proxy resyncs sent to the renderer.",
		}),
	}
	m.reg.MustRegister(
		m.tickSeconds, m.blocks, m.proxies, m.proxyAdds, m.proxyRemoves,
		m.edits, m.editsRejected, m.resyncs,
	)
	return m
}

// Registry is served on /metrics.
func (w *World) Registry() *prometheus.Registry { return w.metrics.reg }

// Status is a thread-safe read-only view of the world, refreshed every tick.
type Status struct {
	Tick     uint64     `json:"tick"`
	Blocks   int        `json:"blocks"`
	Proxies  int        `json:"proxies"`
	Renderer bool       `json:"renderer"`
	Player   [3]float64 `json:"player"`
	Grounded bool       `json:"grounded"`
	StepMS   float64    `json:"step_ms"`
}

func (w *World) Status() Status {
	if w == nil {
		return Status{}
	}
	v := w.status.Load()
	if v == nil {
		return Status{}
	}
	s, ok := v.(Status)
	if !ok {
		return Status{}
	}
	return s
}

func (w *World) publishStatus(stepMS float64) {
	w.status.Store(Status{
		Tick:     w.tick.Load(),
		Blocks:   w.store.Len(),
		Proxies:  w.vis.Len(),
		Renderer: w.renderer != nil,
		Player:   [3]float64(w.player.Body.Pos),
		Grounded: w.player.Body.Grounded,
		StepMS:   stepMS,
	})
}
