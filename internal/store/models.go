package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidDetails is returned when a details key or value is not valid UTF-8.
var ErrInvalidDetails = errors.New("details must be valid UTF-8")

type WorkoutType string

const (
	WorkoutGym WorkoutType = "gym"
	WorkoutWod WorkoutType = "wod"
)

// Details keys used by the app. The mapping itself is open-ended.
const (
	KeyMuscleGroup   = "muscle_group"
	KeyExercise      = "exercise"
	KeyMaxWeight     = "max_weight"
	KeySets          = "sets"
	KeyReps          = "reps"
	KeyWodBlocks     = "wod_blocks"
	KeyWodDifficulty = "wod_difficulty"
)

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Details is the flat per-type payload of a workout.
type Details map[string]string

type Workout struct {
	ID          int64       `json:"id"`
	Date        string      `json:"date"` // YYYY-MM-DD
	UserID      int64       `json:"user_id"`
	WorkoutType WorkoutType `json:"workout_type"`
	Details     Details     `json:"details"`
}

func (d Details) Clone() Details {
	if d == nil {
		return nil
	}
	out := make(Details, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Validate rejects details that JSON encoding would rewrite.
func (d Details) Validate() error {
	for k, v := range d {
		if !utf8.ValidString(k) {
			return fmt.Errorf("%w: key %q", ErrInvalidDetails, k)
		}
		if !utf8.ValidString(v) {
			return fmt.Errorf("%w: value of %q", ErrInvalidDetails, k)
		}
	}
	return nil
}

// EncodeDetails serialises details for the details_json column.
func EncodeDetails(d Details) (string, error) {
	if d == nil {
		d = Details{}
	}
	if err := d.Validate(); err != nil {
		return "", err
	}
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to marshal details: %w", err)
	}
	return string(b), nil
}

func DecodeDetails(s string) (Details, error) {
	d := Details{}
	if s == "" {
		return d, nil
	}
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return Details{}, fmt.Errorf("failed to unmarshal details: %w", err)
	}
	return d, nil
}
