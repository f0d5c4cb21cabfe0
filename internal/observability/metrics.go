package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	suggestionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wodcoach",
		Subsystem: "suggestions",
		Name:      "total",
		Help:      "Suggestions requested from the model, by kind and outcome.",
	}, []string{"kind", "outcome"})
	workoutCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wodcoach",
		Subsystem: "workouts",
		Name:      "recorded_total",
		Help:      "Workout records saved, by workout type.",
	}, []string{"type"})
	lastWorkoutGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wodcoach",
		Subsystem: "workouts",
		Name:      "last_recorded_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout record saved.",
	})
)

func init() {
	prometheus.MustRegister(suggestionCounter, workoutCounter, lastWorkoutGauge)
}

// RecordSuggestion counts one model call for a gym or wod suggestion.
func RecordSuggestion(kind, outcome string) {
	suggestionCounter.WithLabelValues(kind, outcome).Inc()
}

// RecordWorkouts counts n saved records of one type and moves the watermark.
func RecordWorkouts(workoutType string, n int, ts time.Time) {
	if n <= 0 {
		return
	}
	workoutCounter.WithLabelValues(workoutType).Add(float64(n))
	if !ts.IsZero() {
		lastWorkoutGauge.Set(float64(ts.Unix()))
	}
}
