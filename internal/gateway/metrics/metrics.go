package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gateway
type Metrics struct {
	Logins         *prometheus.CounterVec
	Invocations    *prometheus.CounterVec
	InvokeFailures *prometheus.CounterVec
	LockedAccounts prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voting_gateway_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		Invocations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voting_gateway_invocations_total",
			Help: "Contract invocations relayed to the network, by kind",
		}, []string{"kind", "method"}),
		InvokeFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voting_gateway_invocation_failures_total",
			Help: "Contract invocations rejected by the network, by kind",
		}, []string{"kind", "method"}),
		LockedAccounts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voting_gateway_login_lockouts_total",
			Help: "Login attempts rejected because the account was locked",
		}),
	}
}

// IncrementLogin records a login attempt outcome ("success" or "failure")
func (m *Metrics) IncrementLogin(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

// IncrementInvocation records a relayed invocation ("submit" or "evaluate")
func (m *Metrics) IncrementInvocation(kind, method string) {
	m.Invocations.WithLabelValues(kind, method).Inc()
}

// IncrementInvokeFailure records a rejected invocation
func (m *Metrics) IncrementInvokeFailure(kind, method string) {
	m.InvokeFailures.WithLabelValues(kind, method).Inc()
}

// IncrementLockedAccounts increments the lockout rejection counter by 1
func (m *Metrics) IncrementLockedAccounts() {
	m.LockedAccounts.Inc()
}
