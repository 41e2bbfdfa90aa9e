// Package metrics exposes the server's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActionsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "truco_actions_applied_total",
			Help: "Actions accepted by the match engine, by event type",
		},
		[]string{"event"},
	)
	ActionsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "truco_actions_rejected_total",
			Help: "Actions rejected by the match engine, by rule reason",
		},
		[]string{"reason"},
	)
	MatchesStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "truco_matches_started_total",
			Help: "Matches whose full roster connected and play began",
		},
	)
	RoundsPlayed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "truco_rounds_played_total",
			Help: "Rounds settled across all matches",
		},
	)
	ActiveMatches = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "truco_active_matches",
			Help: "Matches currently registered in the lobby",
		},
	)
	MatchesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "truco_matches_finished_total",
			Help: "Matches that reached a terminal state, by mode",
		},
		[]string{"mode"},
	)
	ConnectedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "truco_connected_clients",
			Help: "Websocket connections currently open",
		},
	)
)

func init() {
	prometheus.MustRegister(ActionsApplied)
	prometheus.MustRegister(ActionsRejected)
	prometheus.MustRegister(MatchesStarted)
	prometheus.MustRegister(RoundsPlayed)
	prometheus.MustRegister(ActiveMatches)
	prometheus.MustRegister(MatchesFinished)
	prometheus.MustRegister(ConnectedClients)
}
