// Package metrics exposes Prometheus counters for authentication outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lms"

// Recorder receives auth outcome events. Services accept a Recorder so tests can
// pass Nop and production wires *AuthMetrics.
type Recorder interface {
	Login(result string)
	Bridge(result string)
	Resolution(source, result string)
	Denial(surface, decision string)
	SessionsRevoked(n int)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Login(string)              {}
func (Nop) Bridge(string)             {}
func (Nop) Resolution(string, string) {}
func (Nop) Denial(string, string)     {}
func (Nop) SessionsRevoked(int)       {}

// AuthMetrics holds the auth counters registered on one registry.
type AuthMetrics struct {
	logins          *prometheus.CounterVec
	bridges         *prometheus.CounterVec
	resolutions     *prometheus.CounterVec
	denials         *prometheus.CounterVec
	sessionsRevoked prometheus.Counter
}

var _ Recorder = (*AuthMetrics)(nil)

// NewAuthMetrics registers the auth counters on reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &AuthMetrics{
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Password logins by result.",
		}, []string{"result"}),
		bridges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "bridge_total",
			Help:      "Token to session bridge attempts by result.",
		}, []string{"result"}),
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "resolutions_total",
			Help:      "Identity resolution attempts by source and result.",
		}, []string{"source", "result"}),
		denials: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "denials_total",
			Help:      "Requests denied by the authorization policy.",
		}, []string{"surface", "decision"}),
		sessionsRevoked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "sessions_revoked_total",
			Help:      "Sessions removed by bulk revocation.",
		}),
	}
}

// Login counts a login attempt.
func (m *AuthMetrics) Login(result string) {
	m.logins.WithLabelValues(result).Inc()
}

// Bridge counts a bridge attempt.
func (m *AuthMetrics) Bridge(result string) {
	m.bridges.WithLabelValues(result).Inc()
}

// Resolution counts one resolver outcome.
func (m *AuthMetrics) Resolution(source, result string) {
	m.resolutions.WithLabelValues(source, result).Inc()
}

// Denial counts a policy denial.
func (m *AuthMetrics) Denial(surface, decision string) {
	m.denials.WithLabelValues(surface, decision).Inc()
}

// SessionsRevoked adds n bulk-revoked sessions.
func (m *AuthMetrics) SessionsRevoked(n int) {
	if n > 0 {
		m.sessionsRevoked.Add(float64(n))
	}
}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}
