package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/kiraleos/wodcoach/internal/store"
)

const (
	gymHistoryHeader = "\nHere is my workout history:\n"
	gymPromptFooter  = "\n\nNow, based on the above, please provide today's workout program."
	wodHistoryHeader = "\nHere is my last saved WOD workout:\n"
	wodPromptFooter  = "\n\nNow, based on the above, please provide today's complete WOD program. The weight should be in kilograms."
	noWodSession     = "No recorded WOD session."
)

// wodTextKeys are tried in order when rendering the last WOD into a prompt.
var wodTextKeys = []string{"wod_workout", "exercises", store.KeyWodBlocks}

// Composer turns a user's history and the current templates into a model prompt.
type Composer struct {
	history *HistoryService
	prompts *PromptFile
}

func NewComposer(history *HistoryService, prompts *PromptFile) *Composer {
	return &Composer{history: history, prompts: prompts}
}

func (c *Composer) BuildGymPrompt(ctx context.Context, userID int64) (string, error) {
	templates, err := c.prompts.Load()
	if err != nil {
		return "", err
	}
	recent, err := c.history.RecentGymHistory(ctx, userID, DefaultHistoryLimit)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(recent))
	for _, w := range recent {
		lines = append(lines, FormatGymRecord(w))
	}
	return templates.GymPrompt + gymHistoryHeader + strings.Join(lines, "\n") + gymPromptFooter, nil
}

func (c *Composer) BuildWodPrompt(ctx context.Context, userID int64) (string, error) {
	templates, err := c.prompts.Load()
	if err != nil {
		return "", err
	}
	last, err := c.history.LastWodWorkout(ctx, userID)
	if err != nil {
		return "", err
	}

	historyText := noWodSession
	if last != nil {
		historyText = FormatWodRecord(*last)
	}
	return templates.WodPrompt + wodHistoryHeader + historyText + wodPromptFooter, nil
}

func FormatGymRecord(w store.Workout) string {
	return fmt.Sprintf("Date: %s, Muscle Group: %s, Exercise: %s, Max Weight: %s, Sets: %s, Reps: %s",
		w.Date,
		w.Details[store.KeyMuscleGroup],
		w.Details[store.KeyExercise],
		w.Details[store.KeyMaxWeight],
		w.Details[store.KeySets],
		w.Details[store.KeyReps],
	)
}

func FormatWodRecord(w store.Workout) string {
	var text string
	for _, key := range wodTextKeys {
		if v, ok := w.Details[key]; ok {
			text = v
			break
		}
	}
	return fmt.Sprintf("Date: %s, WOD Workout: %s, Feedback: %s", w.Date, text, w.Details[store.KeyWodDifficulty])
}
