// Package metrics holds Prometheus instruments that are used across the
// application.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LoginTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dsr_login_total",
			Help: "Login attempts by claimed role and outcome.",
		}, []string{"role", "outcome"})

	SessionExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dsr_session_expired_total",
			Help: "Sessions invalidated by the idle timeout.",
		})

	AccessDeniedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dsr_access_denied_total",
			Help: "Requests refused by the role gate, by operation.",
		}, []string{"operation"})

	EntryMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dsr_entry_mutations_total",
			Help: "Entry writes by action (create, update, delete).",
		}, []string{"action"})

	UploadBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dsr_upload_bytes_total",
			Help: "Cumulative bytes accepted from control-room uploads.",
		})

	UploadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dsr_upload_total",
			Help: "Control-room uploads by upload type.",
		}, []string{"upload_type"})

	ExportTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dsr_export_total",
			Help: "DSR documents rendered for download.",
		})
)

func init() {
	prometheus.MustRegister(
		LoginTotal,
		SessionExpiredTotal,
		AccessDeniedTotal,
		EntryMutationsTotal,
		UploadBytesTotal,
		UploadTotal,
		ExportTotal,
	)
}
