package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// チェックアウトまわりの計測。
type CheckoutMetrics struct {
	Checkouts       *prometheus.CounterVec
	StockRejections prometheus.Counter
	LatencyMS       prometheus.Histogram
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "checkout",
		Name:      "requests_total",
		Help:      "Total number of checkout attempts.",
	}, []string{"result"})
	stockRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "checkout",
		Name:      "stock_rejections_total",
		Help:      "Checkouts rejected because stock ran out.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "shop",
		Subsystem: "checkout",
		Name:      "duration_ms",
		Help:      "Checkout latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	reg.MustRegister(checkouts, stockRejections, latency)
	return &CheckoutMetrics{
		Checkouts:       checkouts,
		StockRejections: stockRejections,
		LatencyMS:       latency,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
