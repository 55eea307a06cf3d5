package service

import (
	"errors"
	"time"

	"money-transfer-service/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ledger's prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	transfers            *prometheus.CounterVec
	withdrawalsInitiated prometheus.Counter
	withdrawalsResolved  *prometheus.CounterVec
	pendingWithdrawals   prometheus.Gauge
	providerErrors       *prometheus.CounterVec
	reconcileDuration    prometheus.Histogram
}

// NewMetrics registers the ledger collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		transfers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "transfers_total",
			Help:      "Internal transfers by outcome.",
		}, []string{"result"}),
		withdrawalsInitiated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "withdrawals_initiated_total",
			Help:      "Withdrawals debited and submitted to the provider.",
		}),
		withdrawalsResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "withdrawals_resolved_total",
			Help:      "Pending withdrawals resolved by terminal status.",
		}, []string{"status"}),
		pendingWithdrawals: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "ledger",
			Name:      "pending_withdrawals",
			Help:      "Withdrawals awaiting a terminal provider status.",
		}),
		providerErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "provider_errors_total",
			Help:      "Failed withdrawal provider calls by operation.",
		}, []string{"operation"}),
		reconcileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "reconcile_pass_duration_seconds",
			Help:      "Duration of periodic reconciliation passes.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observeTransfer(err error) {
	if m == nil {
		return
	}
	m.transfers.WithLabelValues(transferResult(err)).Inc()
}

func transferResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	default:
		return "invalid"
	}
}

func (m *Metrics) withdrawalInitiated() {
	if m == nil {
		return
	}
	m.withdrawalsInitiated.Inc()
}

func (m *Metrics) withdrawalResolved(status domain.WithdrawalStatus) {
	if m == nil {
		return
	}
	m.withdrawalsResolved.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) setPending(n int) {
	if m == nil {
		return
	}
	m.pendingWithdrawals.Set(float64(n))
}

func (m *Metrics) providerError(operation string) {
	if m == nil {
		return
	}
	m.providerErrors.WithLabelValues(operation).Inc()
}

func (m *Metrics) observePass(d time.Duration) {
	if m == nil {
		return
	}
	m.reconcileDuration.Observe(d.Seconds())
}
