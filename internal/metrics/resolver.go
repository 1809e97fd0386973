package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Resolver-related Prometheus metrics. These live in a standalone package to
// avoid import cycles between the resolver and HTTP packages.

var (
	ResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sso_resolutions_total",
		Help: "Resoluciones de identidad por provider y resultado",
	}, []string{"provider", "outcome"}) // outcome: fast_path|created|merged|error

	UnlinksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sso_unlinks_total",
		Help: "Unlinks de identidad por provider y resultado",
	}, []string{"provider", "result"}) // result: ok|error

	GroupJoinFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sso_group_join_failures_total",
		Help: "Fallos al agregar usuarios al grupo admin (best-effort)",
	}, []string{"provider"})
)

// Resolution outcomes.
const (
	OutcomeFastPath = "fast_path"
	OutcomeCreated  = "created"
	OutcomeMerged   = "merged"
	OutcomeError    = "error"
)

// RegisterResolver registers the resolver metrics on the given registry
// (or the default one if nil).
func RegisterResolver(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{ResolutionsTotal, UnlinksTotal, GroupJoinFailures} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// RecordResolution registra el resultado de una resolución.
func RecordResolution(provider, outcome string) {
	ResolutionsTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordUnlink registra el resultado de un unlink.
func RecordUnlink(provider, result string) {
	UnlinksTotal.WithLabelValues(provider, result).Inc()
}

// RecordGroupJoinFailure registra un fallo de group join.
func RecordGroupJoinFailure(provider string) {
	GroupJoinFailures.WithLabelValues(provider).Inc()
}
