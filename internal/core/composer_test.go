package core

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kiraleos/wodcoach/internal/store"
)

func newTestComposer(t *testing.T) (*store.MemoryStore, *Composer) {
	t.Helper()
	db := store.NewMemoryStore()
	prompts := NewPromptFile(filepath.Join(t.TempDir(), "prompts.json"))
	require.NoError(t, prompts.Save(Prompts{GymPrompt: "GYM", WodPrompt: "WOD"}))
	return db, NewComposer(NewHistoryService(db), prompts)
}

func TestBuildGymPrompt(t *testing.T) {
	ctx := context.Background()
	db, c := newTestComposer(t)

	require.NoError(t, db.AddWorkout(ctx, "2025-01-01", 1, store.WorkoutGym, store.Details{
		store.KeyMuscleGroup: "Chest", store.KeyExercise: "Bench press", store.KeyMaxWeight: "80", store.KeySets: "5", store.KeyReps: "6",
	}))
	require.NoError(t, db.AddWorkout(ctx, "2025-01-04", 1, store.WorkoutGym, store.Details{
		store.KeyMuscleGroup: "Back", store.KeyExercise: "Row", store.KeyMaxWeight: "60", store.KeySets: "4", store.KeyReps: "10",
	}))

	got, err := c.BuildGymPrompt(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "GYM\nHere is my workout history:\n"+
		"Date: 2025-01-04, Muscle Group: Back, Exercise: Row, Max Weight: 60, Sets: 4, Reps: 10\n"+
		"Date: 2025-01-01, Muscle Group: Chest, Exercise: Bench press, Max Weight: 80, Sets: 5, Reps: 6"+
		"\n\nNow, based on the above, please provide today's workout program.", got)
}

func TestBuildGymPromptWithoutHistory(t *testing.T) {
	_, c := newTestComposer(t)

	got, err := c.BuildGymPrompt(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "GYM\nHere is my workout history:\n\n\nNow, based on the above, please provide today's workout program.", got)
}

func TestBuildWodPrompt(t *testing.T) {
	ctx := context.Background()
	db, c := newTestComposer(t)

	got, err := c.BuildWodPrompt(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "WOD\nHere is my last saved WOD workout:\nNo recorded WOD session."+
		"\n\nNow, based on the above, please provide today's complete WOD program. The weight should be in kilograms.", got)

	require.NoError(t, db.AddWorkout(ctx, "2025-03-01", 1, store.WorkoutWod, store.Details{
		store.KeyWodBlocks: "Block 1: run", store.KeyWodDifficulty: "too easy",
	}))
	got, err = c.BuildWodPrompt(ctx, 1)
	require.NoError(t, err)
	require.Contains(t, got, "\nDate: 2025-03-01, WOD Workout: Block 1: run, Feedback: too easy\n")
}

func TestFormatWodRecordKeyPrecedence(t *testing.T) {
	w := store.Workout{Date: "2025-03-01", Details: store.Details{
		"exercises":        "legacy exercises",
		store.KeyWodBlocks: "blocks",
	}}
	require.Equal(t, "Date: 2025-03-01, WOD Workout: legacy exercises, Feedback: ", FormatWodRecord(w))

	w.Details["wod_workout"] = "explicit"
	require.Equal(t, "Date: 2025-03-01, WOD Workout: explicit, Feedback: ", FormatWodRecord(w))

	require.Equal(t, "Date: 2025-03-02, WOD Workout: , Feedback: ", FormatWodRecord(store.Workout{Date: "2025-03-02"}))
}
