// Package metrics owns the process registry every component registers into.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry bundles the registerer handed to components and the gatherer
// served on /metrics.
type Registry struct {
	*prometheus.Registry
	BuildInfo *prometheus.GaugeVec
}

// New creates a registry with the Go runtime and process collectors.
func New(version string) *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	info := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "avelements_build_info",
		Help: "Build information of the running gateway",
	}, []string{"version"})
	reg.MustRegister(info)
	info.WithLabelValues(version).Set(1)
	return &Registry{Registry: reg, BuildInfo: info}
}
