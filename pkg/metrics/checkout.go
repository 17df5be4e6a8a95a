package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// CheckoutMetrics records checkout outcomes and cart rejections.
type CheckoutMetrics struct {
	success  prometheus.Counter
	failure  *prometheus.CounterVec
	amount   prometheus.Histogram
	rejected prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	success := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_success_total",
		Help: "Checkouts that debited the customer.",
	})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failure_total",
		Help: "Checkouts rejected before any mutation.",
	}, []string{"reason"})
	amount := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_amount",
		Help:    "Total charged per successful checkout.",
		Buckets: prometheus.ExponentialBuckets(10, 4, 8),
	})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_line_rejected_total",
		Help: "Cart additions rejected for an invalid quantity.",
	})
	reg.MustRegister(success, failure, amount, rejected)
	return &CheckoutMetrics{
		success:  success,
		failure:  failure,
		amount:   amount,
		rejected: rejected,
	}
}

// ObserveSuccess counts a successful checkout and records its total.
func (c *CheckoutMetrics) ObserveSuccess(total decimal.Decimal) {
	if c == nil || c.success == nil {
		return
	}
	c.success.Inc()
	c.amount.Observe(total.InexactFloat64())
}

// IncFailure increments the failure counter for the given reason.
func (c *CheckoutMetrics) IncFailure(reason string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncRejectedLine counts a rejected cart addition.
func (c *CheckoutMetrics) IncRejectedLine() {
	if c == nil || c.rejected == nil {
		return
	}
	c.rejected.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
