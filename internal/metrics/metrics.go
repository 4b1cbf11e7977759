// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UtterancesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hark_utterances_total",
		Help: "Utterances returned by the capture backend, by state and outcome.",
	}, []string{"state", "outcome"}) // outcome: heard, silence

	WakeDetectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hark_wake_detections_total",
		Help: "Wake phrases detected while idle.",
	})

	IntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hark_intents_total",
		Help: "Classified utterances by matched intent.",
	}, []string{"intent"})

	SessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hark_sessions_total",
		Help: "Finished conversations by how they ended.",
	}, []string{"reason"}) // reason: end_phrase, no_input, exit

	TurnsPerSession = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hark_turns_per_session",
		Help:    "Commands handled per conversation.",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})

	SpeakFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hark_speak_failures_total",
		Help: "Responses that could not be voiced, by voice backend.",
	}, []string{"voice"})

	SpeakDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hark_speak_duration_seconds",
		Help:    "Time spent voicing one response.",
		Buckets: prometheus.DefBuckets,
	}, []string{"voice"})

	State = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hark_dialogue_state",
		Help: "Current dialogue state (0 idle, 1 engaged, 2 terminated).",
	})
)
