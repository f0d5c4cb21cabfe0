package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordSuggestion(t *testing.T) {
	before := testutil.ToFloat64(suggestionCounter.WithLabelValues("wod", "rate_limited"))
	RecordSuggestion("wod", "rate_limited")
	require.Equal(t, before+1, testutil.ToFloat64(suggestionCounter.WithLabelValues("wod", "rate_limited")))
}

func TestRecordWorkouts(t *testing.T) {
	before := testutil.ToFloat64(workoutCounter.WithLabelValues("gym"))
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	RecordWorkouts("gym", 3, ts)
	require.Equal(t, before+3, testutil.ToFloat64(workoutCounter.WithLabelValues("gym")))
	require.Equal(t, float64(ts.Unix()), testutil.ToFloat64(lastWorkoutGauge))

	RecordWorkouts("gym", 0, ts.Add(time.Hour))
	require.Equal(t, before+3, testutil.ToFloat64(workoutCounter.WithLabelValues("gym")))
	require.Equal(t, float64(ts.Unix()), testutil.ToFloat64(lastWorkoutGauge))
}
