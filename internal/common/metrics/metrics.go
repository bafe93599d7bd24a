// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "dialogue-navigator/internal/common/errors"
)

// Turn outcomes.
const (
	OutcomeMatched = "matched"
	OutcomeInvalid = "invalid"
	OutcomeCommand = "command"
)

// Navigation kinds.
const (
	NavigationFollowup = "followup"
	NavigationRoot     = "root"
	NavigationStay     = "stay"
	NavigationEnd      = "end"
)

// Metrics holds the per-turn counters of a session.
type Metrics struct {
	TurnsTotal       *prometheus.CounterVec
	MatchesTotal     *prometheus.CounterVec
	NavigationsTotal *prometheus.CounterVec
}

// New registers the counters on reg. A nil reg creates a private registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		TurnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialogue_turns_total",
				Help: "Total number of input lines processed, by outcome",
			},
			[]string{"outcome"},
		),
		MatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialogue_matches_total",
				Help: "Total number of resolved selections, by matching strategy",
			},
			[]string{"strategy"},
		),
		NavigationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialogue_navigations_total",
				Help: "Total number of node transitions, by kind",
			},
			[]string{"kind"},
		),
	}
}

func (m *Metrics) RecordTurn(outcome string) {
	if m == nil {
		return
	}
	m.TurnsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordMatch(strategy string) {
	if m == nil {
		return
	}
	m.MatchesTotal.WithLabelValues(strategy).Inc()
}

// InitMatches exports a zero series per strategy before any match is made.
func (m *Metrics) InitMatches(strategies ...string) {
	if m == nil {
		return
	}
	for _, s := range strategies {
		m.MatchesTotal.WithLabelValues(s)
	}
}

func (m *Metrics) RecordNavigation(kind string) {
	if m == nil {
		return
	}
	m.NavigationsTotal.WithLabelValues(kind).Inc()
}

// WriteTextfile writes everything g gathers to path in the Prometheus text
// format, for the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return apperrors.NewMetricsExportFailedError(path, err)
	}
	return nil
}
