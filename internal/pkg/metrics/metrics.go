// Package metrics exposes Prometheus collectors for command handling,
// activity payouts, and the stock price walk.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_commands_total",
		Help: "Total number of handled commands by name and status",
	}, []string{"command", "status"})

	commandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bot_command_duration_seconds",
		Help:    "Command handling duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})

	activityPayouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_activity_payouts_total",
		Help: "Total number of chat activity payouts credited",
	})

	stockPrice = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bot_stock_price",
		Help: "Current price per tracked stock symbol",
	}, []string{"symbol"})
)

// RecordCommand reports one handled command with its outcome and
// duration.
func RecordCommand(command, status string, elapsed time.Duration) {
	commandsTotal.WithLabelValues(command, status).Inc()
	commandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

// RecordActivityPayout reports one credited chat payout.
func RecordActivityPayout() {
	activityPayouts.Inc()
}

// SetStockPrice reports the current price of a symbol.
func SetStockPrice(symbol string, price int64) {
	stockPrice.WithLabelValues(symbol).Set(float64(price))
}
