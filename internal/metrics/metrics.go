// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session results for SessionsTotal.
const (
	ResultOK      = "ok"
	ResultAborted = "aborted"
	ResultError   = "error"
)

var (
	// FramesReadTotal counts frames returned by the capture channel
	FramesReadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_frames_read_total",
			Help: "Total number of frames read from capture channels",
		},
		[]string{"interface"},
	)

	// FramesDecodedTotal counts frames decoded into records, by transport protocol
	FramesDecodedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_frames_decoded_total",
			Help: "Total number of frames decoded into records",
		},
		[]string{"interface", "protocol"},
	)

	// FramesSkippedTotal counts frames that were not Ethernet/IPv4 or were malformed
	FramesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_frames_skipped_total",
			Help: "Total number of frames discarded by the decoder",
		},
		[]string{"interface"},
	)

	// ReadErrorsTotal counts read errors that were retried
	ReadErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_read_errors_total",
			Help: "Total number of retried capture read errors",
		},
		[]string{"interface"},
	)

	// SessionsTotal counts capture sessions by outcome
	SessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_sessions_total",
			Help: "Total number of capture sessions by result",
		},
		[]string{"result"},
	)
)
