// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Login attempt result labels.
const (
	LoginSuccess     = "success"
	LoginNoUser      = "no_user"
	LoginBadPassword = "bad_password"
	LoginBanned      = "banned"
	LoginMultiple    = "multiple"
	LoginRefused     = "refused"
	LoginEmptyUserID = "empty_user_id"
)

// SessionsStarted is the counter for accepted connections.
// Use RegisterMetrics to register this with a Prometheus registry.
var SessionsStarted = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "tada_sessions_started_total",
		Help: "Total number of sessions started",
	},
)

// ActiveSessions is the gauge of currently-authenticated sessions.
// Use RegisterMetrics to register this with a Prometheus registry.
var ActiveSessions = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "tada_active_sessions",
		Help: "Number of currently authenticated sessions",
	},
)

// LoginAttempts is the counter for login attempts by result.
// Use RegisterMetrics to register this with a Prometheus registry.
var LoginAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tada_login_attempts_total",
		Help: "Total number of login attempts by result",
	},
	[]string{"result"},
)

// RegisterMetrics registers server package metrics with the given Prometheus
// registry. Call at startup to make metrics available on /metrics. Panics if
// registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(SessionsStarted)
	reg.MustRegister(ActiveSessions)
	reg.MustRegister(LoginAttempts)
}

// recordLogin increments the login attempt counter.
func recordLogin(result string) {
	LoginAttempts.WithLabelValues(result).Inc()
}
