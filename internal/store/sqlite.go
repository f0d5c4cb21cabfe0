package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database file at path and ensures the schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        username TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS workouts (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        date TEXT,
        user_id INTEGER,
        workout_type TEXT,
        details_json TEXT -- flat JSON object of string values
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods
func (s *SQLiteStore) AddUser(ctx context.Context, username string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO users (username) VALUES (?)", username)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read user id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) GetUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, username FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Username); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Workout methods
func (s *SQLiteStore) AddWorkout(ctx context.Context, date string, userID int64, workoutType WorkoutType, details Details) error {
	detailsJSON, err := EncodeDetails(details)
	if err != nil {
		return err
	}

	stmt, err := s.db.PrepareContext(ctx, "INSERT INTO workouts (date, user_id, workout_type, details_json) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare workout insert: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.ExecContext(ctx, date, userID, string(workoutType), detailsJSON); err != nil {
		return fmt.Errorf("failed to execute workout insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetAllWorkouts(ctx context.Context) ([]Workout, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, date, user_id, workout_type, details_json FROM workouts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query workouts: %w", err)
	}
	defer rows.Close()

	workouts := []Workout{}
	for rows.Next() {
		var (
			w           Workout
			date        sql.NullString
			userID      sql.NullInt64
			workoutType sql.NullString
			detailsJSON sql.NullString
		)
		if err := rows.Scan(&w.ID, &date, &userID, &workoutType, &detailsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan workout row: %w", err)
		}
		w.Date = date.String
		w.UserID = userID.Int64
		w.WorkoutType = WorkoutType(workoutType.String)

		details, err := DecodeDetails(detailsJSON.String)
		if err != nil {
			log.Printf("Warning: workout %d has unreadable details (%.50s...): %v. Details will be empty.", w.ID, detailsJSON.String, err)
		}
		w.Details = details
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

func (s *SQLiteStore) DeleteWorkout(ctx context.Context, id int64, workoutType WorkoutType) error {
	var err error
	if workoutType != "" {
		_, err = s.db.ExecContext(ctx, "DELETE FROM workouts WHERE id = ? AND workout_type = ?", id, string(workoutType))
	} else {
		_, err = s.db.ExecContext(ctx, "DELETE FROM workouts WHERE id = ?", id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete workout %d: %w", id, err)
	}
	return nil
}

// ClearAll empties both tables. AUTOINCREMENT keeps ids from being reused afterwards.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin clear: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM users"); err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM workouts"); err != nil {
		return fmt.Errorf("failed to delete workouts: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}
	return nil
}
