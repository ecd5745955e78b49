package services

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Rounds       *prometheus.CounterVec
	Wagered      *prometheus.CounterVec
	PaidOut      *prometheus.CounterVec
	Subsidies    prometheus.Counter
	HttpRequests *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Rounds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casino_rounds_total",
				Help: "Resolved rounds by game and outcome",
			},
			[]string{"game", "outcome"},
		),
		Wagered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casino_wagered_units_total",
				Help: "Units staked by game",
			},
			[]string{"game"},
		),
		PaidOut: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casino_paid_out_units_total",
				Help: "Units paid back by game",
			},
			[]string{"game"},
		),
		Subsidies: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "casino_subsidies_total",
				Help: "Bankruptcy top-ups granted",
			},
		),
		HttpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
	}
}

func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.Rounds, m.Wagered, m.PaidOut, m.Subsidies, m.HttpRequests)
}

func (m *Metrics) Bet(game string, stake int64) {
	m.Wagered.WithLabelValues(game).Add(float64(stake))
}

func (m *Metrics) Resolved(game, outcome string, payout int64) {
	m.Rounds.WithLabelValues(game, outcome).Inc()
	if payout > 0 {
		m.PaidOut.WithLabelValues(game).Add(float64(payout))
	}
}

// Middleware counts requests by route template, not raw path.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.HttpRequests.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
