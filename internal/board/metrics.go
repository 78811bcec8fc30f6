package board

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	purchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noticeboard_promotion_purchases_total",
		Help: "Confirmed promotion purchases by placement.",
	}, []string{"placement"})

	clearedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noticeboard_promotion_cleared_total",
		Help: "Expired placements cleared by the sweep.",
	}, []string{"placement"})

	paymentFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noticeboard_payment_failures_total",
		Help: "Failed payment starts and confirmations by kind.",
	}, []string{"kind"})

	sponsoredInjectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "noticeboard_feed_sponsored_injected_total",
		Help: "Sponsored entries injected into composed feeds.",
	})
)
