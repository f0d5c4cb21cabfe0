package store

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the durable backend for deployments that already run Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS workouts (
			id BIGSERIAL PRIMARY KEY,
			date TEXT,
			user_id BIGINT,
			workout_type TEXT,
			details_json TEXT
		)
	`)
	return err
}

func (s *PostgresStore) AddUser(ctx context.Context, username string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, "INSERT INTO users (username) VALUES ($1) RETURNING id", username).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) GetUsers(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, username FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) AddWorkout(ctx context.Context, date string, userID int64, workoutType WorkoutType, details Details) error {
	detailsJSON, err := EncodeDetails(details)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		"INSERT INTO workouts (date, user_id, workout_type, details_json) VALUES ($1, $2, $3, $4)",
		date, userID, string(workoutType), detailsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert workout: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAllWorkouts(ctx context.Context) ([]Workout, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, COALESCE(date, ''), COALESCE(user_id, 0), COALESCE(workout_type, ''), COALESCE(details_json, '')
		FROM workouts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query workouts: %w", err)
	}
	defer rows.Close()

	workouts := []Workout{}
	for rows.Next() {
		var (
			w           Workout
			workoutType string
			detailsJSON string
		)
		if err := rows.Scan(&w.ID, &w.Date, &w.UserID, &workoutType, &detailsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan workout row: %w", err)
		}
		w.WorkoutType = WorkoutType(workoutType)

		details, err := DecodeDetails(detailsJSON)
		if err != nil {
			log.Printf("Warning: workout %d has unreadable details: %v. Details will be empty.", w.ID, err)
		}
		w.Details = details
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

func (s *PostgresStore) DeleteWorkout(ctx context.Context, id int64, workoutType WorkoutType) error {
	var err error
	if workoutType != "" {
		_, err = s.pool.Exec(ctx, "DELETE FROM workouts WHERE id = $1 AND workout_type = $2", id, string(workoutType))
	} else {
		_, err = s.pool.Exec(ctx, "DELETE FROM workouts WHERE id = $1", id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete workout %d: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) ClearAll(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin clear: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM users"); err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM workouts"); err != nil {
		return fmt.Errorf("failed to delete workouts: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}
	return nil
}
