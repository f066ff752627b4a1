// Package metrics exposes prometheus counters for the attendance pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsIssued counts QR sessions created.
	SessionsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qrattendance_sessions_issued_total",
		Help: "Number of QR sessions issued.",
	})

	// SubmissionsAccepted counts attendance rows written.
	SubmissionsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qrattendance_submissions_accepted_total",
		Help: "Number of accepted attendance submissions.",
	})

	// SubmissionsRejected counts domain refusals by reason.
	SubmissionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrattendance_submissions_rejected_total",
		Help: "Number of rejected attendance submissions by reason.",
	}, []string{"reason"})

	// MirrorFailures counts spreadsheet mirror attempts that failed. Missing
	// rows are acceptable but should be alertable; alert on this counter.
	MirrorFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qrattendance_mirror_failures_total",
		Help: "Number of failed spreadsheet mirror attempts.",
	})
)
