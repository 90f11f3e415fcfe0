// Package metrics holds the prometheus collectors for the game server.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	Guesses       *prometheus.CounterVec
	GamesStarted  *prometheus.CounterVec
	GamesFinished *prometheus.CounterVec
	WSClients     prometheus.Gauge
}

// New registers the collectors on a fresh registry, together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		Guesses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kelime",
			Name:      "guesses_total",
			Help:      "Submitted guesses by mode and outcome (accepted, wrong_length, not_in_dictionary, game_over).",
		}, []string{"mode", "outcome"}),
		GamesStarted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kelime",
			Name:      "games_started_total",
			Help:      "Sessions created by mode.",
		}, []string{"mode"}),
		GamesFinished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kelime",
			Name:      "games_finished_total",
			Help:      "Finished games by mode and result (won, lost).",
		}, []string{"mode", "result"}),
		WSClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "kelime",
			Name:      "ws_clients",
			Help:      "Connected live score clients.",
		}),
	}
}

func (m *Metrics) Guess(mode int, outcome string) {
	m.Guesses.WithLabelValues(strconv.Itoa(mode), outcome).Inc()
}

func (m *Metrics) Started(mode int) {
	m.GamesStarted.WithLabelValues(strconv.Itoa(mode)).Inc()
}

func (m *Metrics) Finished(mode int, won bool) {
	result := "lost"
	if won {
		result = "won"
	}
	m.GamesFinished.WithLabelValues(strconv.Itoa(mode), result).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
