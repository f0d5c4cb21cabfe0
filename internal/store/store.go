package store

import (
	"context"
	"fmt"

	"github.com/kiraleos/wodcoach/internal/config"
)

// WorkoutStore is the uniform CRUD contract shared by every backend.
type WorkoutStore interface {
	AddUser(ctx context.Context, username string) (int64, error)
	GetUsers(ctx context.Context) ([]User, error)
	AddWorkout(ctx context.Context, date string, userID int64, workoutType WorkoutType, details Details) error
	GetAllWorkouts(ctx context.Context) ([]Workout, error)
	// DeleteWorkout removes the record with the given id. A non-empty workoutType
	// restricts the delete to a record of that type; a mismatch deletes nothing.
	DeleteWorkout(ctx context.Context, id int64, workoutType WorkoutType) error
	ClearAll(ctx context.Context) error
	Close() error
}

// Open builds the backend selected by cfg.
func Open(ctx context.Context, cfg config.StoreConfig) (WorkoutStore, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return NewSQLiteStore(cfg.DBPath)
	case config.BackendPostgres:
		return NewPostgresStore(ctx, cfg.DatabaseURL)
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
