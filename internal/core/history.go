package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/kiraleos/wodcoach/internal/store"
)

const DefaultHistoryLimit = 5

// GymSession is every gym record logged on the most recent training date.
type GymSession struct {
	Date    string          `json:"date"`
	Records []store.Workout `json:"records"`
}

// HistoryService derives per-user views over the store. It never writes.
type HistoryService struct {
	dbStore store.WorkoutStore
}

func NewHistoryService(db store.WorkoutStore) *HistoryService {
	return &HistoryService{dbStore: db}
}

func (s *HistoryService) userWorkouts(ctx context.Context, userID int64, workoutType store.WorkoutType) ([]store.Workout, error) {
	all, err := s.dbStore.GetAllWorkouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load workouts: %w", err)
	}
	out := []store.Workout{}
	for _, w := range all {
		if w.WorkoutType == workoutType && w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

// sortedGym returns the user's gym records, newest date first. Dates compare as
// plain strings; records sharing a date keep store order.
func (s *HistoryService) sortedGym(ctx context.Context, userID int64) ([]store.Workout, error) {
	gym, err := s.userWorkouts(ctx, userID, store.WorkoutGym)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(gym, func(i, j int) bool {
		return gym[i].Date > gym[j].Date
	})
	return gym, nil
}

func (s *HistoryService) RecentGymHistory(ctx context.Context, userID int64, limit int) ([]store.Workout, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	gym, err := s.sortedGym(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(gym) > limit {
		gym = gym[:limit]
	}
	return gym, nil
}

// LastGymSession returns nil when the user has no gym history.
func (s *HistoryService) LastGymSession(ctx context.Context, userID int64) (*GymSession, error) {
	gym, err := s.sortedGym(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(gym) == 0 {
		return nil, nil
	}

	session := &GymSession{Date: gym[0].Date}
	for _, w := range gym {
		if w.Date == session.Date {
			session.Records = append(session.Records, w)
		}
	}
	return session, nil
}

// LastWodWorkout picks the most recently inserted WOD (highest id), not the latest date.
func (s *HistoryService) LastWodWorkout(ctx context.Context, userID int64) (*store.Workout, error) {
	wods, err := s.userWorkouts(ctx, userID, store.WorkoutWod)
	if err != nil {
		return nil, err
	}
	var last *store.Workout
	for i := range wods {
		if last == nil || wods[i].ID > last.ID {
			last = &wods[i]
		}
	}
	return last, nil
}

func (s *HistoryService) GymHistory(ctx context.Context, userID int64) ([]store.Workout, error) {
	return s.userWorkouts(ctx, userID, store.WorkoutGym)
}

func (s *HistoryService) WodHistory(ctx context.Context, userID int64) ([]store.Workout, error) {
	return s.userWorkouts(ctx, userID, store.WorkoutWod)
}
