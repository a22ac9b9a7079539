// Package metrics registers the Prometheus collectors this module's
// protect/unprotect pipelines and context store report against, following
// the teacher's package-level-vectors pattern (pkg/metrics/prometheus in
// the teacher repo); the vectors are registered by Register, not at init.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ProtectTotal counts every Protect call, success or failure.
	ProtectTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oscore_protect_total",
		Help: "Total number of protect operations attempted.",
	})
	// ProtectErrorsTotal counts protect failures by error kind.
	ProtectErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oscore_protect_errors_total",
		Help: "Total number of protect operations that failed, by error kind.",
	}, []string{"reason"})

	// UnprotectTotal counts every Unprotect call, success or failure.
	UnprotectTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oscore_unprotect_total",
		Help: "Total number of unprotect operations attempted.",
	})
	// UnprotectErrorsTotal counts unprotect failures by error kind.
	UnprotectErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oscore_unprotect_errors_total",
		Help: "Total number of unprotect operations that failed, by error kind.",
	}, []string{"reason"})

	// ReplayRejectedTotal counts Partial IVs rejected by a replay window.
	ReplayRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oscore_replay_rejected_total",
		Help: "Total number of inbound Partial IVs rejected as replays.",
	})

	// SealDuration times the AEAD Seal call made by Protect.
	SealDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "oscore_seal_duration_seconds",
		Help:    "Duration of the AES-CCM-16-64-128 seal call during protect.",
		Buckets: prometheus.DefBuckets,
	})
)

var registerOnce sync.Once

// Register adds every collector above to reg. It is idempotent (guarded
// by a sync.Once) so tests that construct multiple endpoints, or a CLI
// command invoked more than once in-process, never hit Prometheus's
// double-registration panic.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			ProtectTotal,
			ProtectErrorsTotal,
			UnprotectTotal,
			UnprotectErrorsTotal,
			ReplayRejectedTotal,
			SealDuration,
		)
	})
}
