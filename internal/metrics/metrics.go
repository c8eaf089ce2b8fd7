// Package metrics exposes deedd's Prometheus counters and gauges. No
// example in the corpus wires prometheus/client_golang directly (it only
// appears as an indirect dependency), but it is a real, idiomatic choice
// for a long-running Go service's operational surface and is exercised
// here by the command dispatcher (internal/rpc) and the engine.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// CommandsTotal counts applied commands by name and outcome ("ok" or a
	// settlement.Code string).
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deedd",
		Subsystem: "engine",
		Name:      "commands_total",
		Help:      "Total settlement commands processed, by command name and outcome.",
	}, []string{"command", "outcome"})

	// OpenListings reports the current count of live primary listings.
	OpenListings = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "deedd",
		Subsystem: "engine",
		Name:      "open_listings",
		Help:      "Number of PropertyListings currently open.",
	})

	// RegionCacheHits and RegionCacheMisses track internal/external's LRU.
	RegionCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "deedd",
		Subsystem: "regioncache",
		Name:      "hits_total",
		Help:      "Region lookups served from cache.",
	})
	RegionCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "deedd",
		Subsystem: "regioncache",
		Name:      "misses_total",
		Help:      "Region lookups that required an upstream call.",
	})
)

// MustRegister registers every deedd metric against reg. Called once from
// cmd/deedd at startup.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(CommandsTotal, OpenListings, RegionCacheHits, RegionCacheMisses)
}
