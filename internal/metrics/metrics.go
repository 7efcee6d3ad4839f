package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the session lifecycle and recording protocol. Mark failures
// are labeled by outcome so "already marked" noise is separable from real
// rejections.
var (
	SessionsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_sessions_issued_total",
		Help: "Number of period sessions issued.",
	})
	SessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_sessions_expired_total",
		Help: "Number of sessions transitioned to expired.",
	})
	SessionsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_sessions_deleted_total",
		Help: "Number of sessions deleted from history.",
	})
	MarksAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_marks_accepted_total",
		Help: "Number of successful attendance marks.",
	})
	MarksRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_marks_rejected_total",
		Help: "Number of rejected attendance marks by outcome.",
	}, []string{"reason"})
)
