package store

import (
	"context"
	"sync"
)

// MemoryStore keeps users and workouts for the lifetime of the process.
type MemoryStore struct {
	mu            sync.RWMutex
	users         []User
	workouts      []Workout
	nextUserID    int64
	nextWorkoutID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         []User{},
		workouts:      []Workout{},
		nextUserID:    1,
		nextWorkoutID: 1,
	}
}

func (m *MemoryStore) AddUser(ctx context.Context, username string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user := User{ID: m.nextUserID, Username: username}
	m.users = append(m.users, user)
	m.nextUserID++
	return user.ID, nil
}

func (m *MemoryStore) GetUsers(ctx context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]User, len(m.users))
	copy(out, m.users)
	return out, nil
}

func (m *MemoryStore) AddWorkout(ctx context.Context, date string, userID int64, workoutType WorkoutType, details Details) error {
	if err := details.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if details == nil {
		details = Details{}
	}
	m.workouts = append(m.workouts, Workout{
		ID:          m.nextWorkoutID,
		Date:        date,
		UserID:      userID,
		WorkoutType: workoutType,
		Details:     details.Clone(),
	})
	m.nextWorkoutID++
	return nil
}

func (m *MemoryStore) GetAllWorkouts(ctx context.Context) ([]Workout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Workout, len(m.workouts))
	for i, w := range m.workouts {
		w.Details = w.Details.Clone()
		out[i] = w
	}
	return out, nil
}

func (m *MemoryStore) DeleteWorkout(ctx context.Context, id int64, workoutType WorkoutType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.workouts[:0]
	for _, w := range m.workouts {
		if w.ID == id && (workoutType == "" || w.WorkoutType == workoutType) {
			continue
		}
		kept = append(kept, w)
	}
	m.workouts = kept
	return nil
}

// ClearAll drops every record but keeps the id counters, so ids are never reused.
func (m *MemoryStore) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = []User{}
	m.workouts = []Workout{}
	return nil
}

func (m *MemoryStore) Close() error { return nil }
