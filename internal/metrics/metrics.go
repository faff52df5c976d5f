// Package metrics exposes the bot's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScanCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_scan_cycles_total",
		Help: "Completed scan cycles.",
	})

	SignalsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_signals_total",
		Help: "Confluence signals detected.",
	}, []string{"symbol", "direction"})

	OrdersPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_orders_placed_total",
		Help: "Orders accepted by a broker.",
	}, []string{"broker"})

	OrdersRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_orders_rejected_total",
		Help: "Orders refused by a broker.",
	}, []string{"broker"})

	TradesSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_trades_settled_total",
		Help: "Trades settled by terminal status.",
	}, []string{"status"})

	BrokerSwitches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_broker_switches_total",
		Help: "Reconnects that changed the active broker.",
	})

	AccountBalance = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bot_account_balance",
		Help: "Last known account balance per broker.",
	}, []string{"broker"})

	OpenTrades = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bot_open_trades",
		Help: "Trades currently open.",
	})

	Sentiment = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bot_market_sentiment",
		Help: "Last computed market sentiment score.",
	})
)

// Handler serves the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
