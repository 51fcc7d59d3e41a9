// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package game

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for command execution metrics.
const (
	StatusSuccess = "success"
	StatusUnknown = "unknown"
	StatusError   = "error"
)

// CommandExecutions is the counter for in-game command executions.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandExecutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tada_command_executions_total",
		Help: "Total number of in-game command executions",
	},
	[]string{"command", "status"},
)

// RegisterMetrics registers game package metrics with the given Prometheus
// registry. Call at startup to make metrics available on /metrics. Panics if
// registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(CommandExecutions)
}

// recordCommand increments the command execution counter.
func recordCommand(command, status string) {
	CommandExecutions.WithLabelValues(command, status).Inc()
}
