package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/kiraleos/wodcoach/internal/auth"
	"github.com/kiraleos/wodcoach/internal/observability"
	"github.com/kiraleos/wodcoach/internal/store"
)

// ErrUnauthorized is returned when a non-admin user calls an admin action.
var ErrUnauthorized = errors.New("unauthorized")

// Notices shown to the user after an action.
const (
	NoticeGymSaved        = "%d gym workout record(s) saved successfully."
	NoticeNoGymData       = "No valid workout data provided."
	NoticeWodSaved        = "WOD workout recorded successfully."
	NoticeNoWodData       = "No WOD workout data provided."
	NoticeFeedbackSaved   = "WOD workout and feedback recorded successfully."
	NoticeMissingFeedback = "Missing WOD workout data or feedback."
	NoticeWodDeleted      = "WOD record deleted successfully."
	NoticeWodDeleteFailed = "Failed to delete WOD record."
	NoticeUnauthorized    = "Unauthorized access."
	NoticeCleared         = "Database cleared successfully."
	NoticePromptsSaved    = "Prompts saved successfully."
	NoticeEnterUsername   = "Please enter a new username."
	NoticeSelectUser      = "Please select an existing user or enter a new username."
	NoticeNoSession       = "Please select a user first."
	NoticeLoggedOut       = "Logged out successfully."
)

const (
	dateLayout = "2006-01-02"
	maxGymRows = 5
	newUserKey = "new"
)

// GymRow is one line of the gym recording form.
type GymRow struct {
	MuscleGroup string `json:"muscle_group"`
	Exercise    string `json:"exercise"`
	MaxWeight   string `json:"max_weight"`
	Sets        string `json:"sets"`
	Reps        string `json:"reps"`
}

// details trims every field and reports whether the row is complete.
func (r GymRow) details() (store.Details, bool) {
	d := store.Details{
		store.KeyMuscleGroup: strings.TrimSpace(r.MuscleGroup),
		store.KeyExercise:    strings.TrimSpace(r.Exercise),
		store.KeyMaxWeight:   strings.TrimSpace(r.MaxWeight),
		store.KeySets:        strings.TrimSpace(r.Sets),
		store.KeyReps:        strings.TrimSpace(r.Reps),
	}
	for _, v := range d {
		if v == "" {
			return nil, false
		}
	}
	return d, true
}

// Selection is the outcome of SelectUser. Session is nil when nobody was selected.
type Selection struct {
	Session *auth.Session `json:"session,omitempty"`
	Admin   bool          `json:"admin"`
	Notice  string        `json:"notice,omitempty"`
}

type GymSuggestion struct {
	Suggestion  string      `json:"suggestion"`
	Rendered    string      `json:"rendered"`
	Outcome     string      `json:"outcome"`
	LastSession *GymSession `json:"last_session"`
}

type WodSuggestion struct {
	Suggestion string         `json:"suggestion"`
	Outcome    string         `json:"outcome"`
	Blocks     []string       `json:"blocks"`
	Highlights string         `json:"highlights"`
	SavedWod   string         `json:"saved_wod"`
	LastWod    *store.Workout `json:"last_wod"`
}

// WorkoutService runs the user-facing actions: picking a user, recording
// workouts, asking the model for the next session and admin maintenance.
type WorkoutService struct {
	dbStore    store.WorkoutStore
	history    *HistoryService
	composer   *Composer
	prompts    *PromptFile
	llmService *LLMService
	logPrompts bool
	now        func() time.Time
}

func NewWorkoutService(db store.WorkoutStore, prompts *PromptFile, llm *LLMService, logPrompts bool) *WorkoutService {
	history := NewHistoryService(db)
	return &WorkoutService{
		dbStore:    db,
		history:    history,
		composer:   NewComposer(history, prompts),
		prompts:    prompts,
		llmService: llm,
		logPrompts: logPrompts,
		now:        time.Now,
	}
}

func (s *WorkoutService) today() string {
	return s.now().Format(dateLayout)
}

func (s *WorkoutService) Users(ctx context.Context) ([]store.User, error) {
	return s.dbStore.GetUsers(ctx)
}

// SelectUser resolves the index form: selection is an existing user id, "new",
// or empty; newUser is the name typed in the free-text field.
func (s *WorkoutService) SelectUser(ctx context.Context, selection, newUser string) (Selection, error) {
	newUser = strings.TrimSpace(newUser)

	switch {
	case selection == newUserKey:
		if newUser == "" {
			return Selection{Notice: NoticeEnterUsername}, nil
		}
		return s.createUser(ctx, newUser)

	case selection != "":
		id, err := strconv.ParseInt(selection, 10, 64)
		if err != nil {
			return Selection{Notice: NoticeSelectUser}, nil
		}
		users, err := s.dbStore.GetUsers(ctx)
		if err != nil {
			return Selection{}, fmt.Errorf("failed to list users: %w", err)
		}
		for _, u := range users {
			if u.ID == id {
				log.Printf("Selected existing user: %d", id)
				return Selection{
					Session: &auth.Session{UserID: u.ID, Username: u.Username},
					Admin:   auth.IsAdmin(u.Username),
				}, nil
			}
		}
		return Selection{Notice: NoticeSelectUser}, nil

	case newUser != "":
		return s.createUser(ctx, newUser)

	default:
		return Selection{Notice: NoticeSelectUser}, nil
	}
}

func (s *WorkoutService) createUser(ctx context.Context, name string) (Selection, error) {
	log.Printf("Creating new user: %s", name)
	id, err := s.dbStore.AddUser(ctx, name)
	if err != nil {
		return Selection{}, fmt.Errorf("failed to create user: %w", err)
	}
	return Selection{
		Session: &auth.Session{UserID: id, Username: name},
		Admin:   auth.IsAdmin(name),
	}, nil
}

// RecordGym saves the complete rows among the first five. A blank date means today.
func (s *WorkoutService) RecordGym(ctx context.Context, userID int64, date string, rows []GymRow) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = s.today()
	}
	if len(rows) > maxGymRows {
		rows = rows[:maxGymRows]
	}

	saved := 0
	for _, row := range rows {
		details, ok := row.details()
		if !ok {
			continue
		}
		if err := s.dbStore.AddWorkout(ctx, date, userID, store.WorkoutGym, details); err != nil {
			observability.RecordWorkouts(string(store.WorkoutGym), saved, s.now())
			return "", fmt.Errorf("failed to save gym row: %w", err)
		}
		saved++
	}

	if saved == 0 {
		return NoticeNoGymData, nil
	}
	observability.RecordWorkouts(string(store.WorkoutGym), saved, s.now())
	return fmt.Sprintf(NoticeGymSaved, saved), nil
}

func (s *WorkoutService) RecordWod(ctx context.Context, userID int64, wod string) (string, error) {
	if strings.TrimSpace(wod) == "" {
		return NoticeNoWodData, nil
	}
	if err := s.addWod(ctx, userID, store.Details{store.KeyWodBlocks: wod}); err != nil {
		return "", err
	}
	return NoticeWodSaved, nil
}

func (s *WorkoutService) RecordWodFeedback(ctx context.Context, userID int64, wod, feedback string) (string, error) {
	if strings.TrimSpace(wod) == "" || strings.TrimSpace(feedback) == "" {
		return NoticeMissingFeedback, nil
	}
	details := store.Details{
		store.KeyWodBlocks:     wod,
		store.KeyWodDifficulty: feedback,
	}
	if err := s.addWod(ctx, userID, details); err != nil {
		return "", err
	}
	return NoticeFeedbackSaved, nil
}

func (s *WorkoutService) addWod(ctx context.Context, userID int64, details store.Details) error {
	if err := s.dbStore.AddWorkout(ctx, s.today(), userID, store.WorkoutWod, details); err != nil {
		return fmt.Errorf("failed to save wod: %w", err)
	}
	observability.RecordWorkouts(string(store.WorkoutWod), 1, s.now())
	return nil
}

// DeleteWod removes a WOD by id. Ids that do not name a WOD are left alone.
func (s *WorkoutService) DeleteWod(ctx context.Context, id int64) (string, error) {
	if err := s.dbStore.DeleteWorkout(ctx, id, store.WorkoutWod); err != nil {
		log.Printf("Failed to delete WOD record %d: %v", id, err)
		return NoticeWodDeleteFailed, err
	}
	return NoticeWodDeleted, nil
}

func (s *WorkoutService) GymHistory(ctx context.Context, userID int64) ([]store.Workout, error) {
	return s.history.GymHistory(ctx, userID)
}

func (s *WorkoutService) WodHistory(ctx context.Context, userID int64) ([]store.Workout, error) {
	return s.history.WodHistory(ctx, userID)
}

func (s *WorkoutService) SuggestGym(ctx context.Context, userID int64) (GymSuggestion, error) {
	prompt, err := s.composer.BuildGymPrompt(ctx, userID)
	if err != nil {
		return GymSuggestion{}, err
	}
	last, err := s.history.LastGymSession(ctx, userID)
	if err != nil {
		return GymSuggestion{}, err
	}
	if s.logPrompts {
		log.Printf("Gym Suggest Prompt: %s", prompt)
	}

	completion := s.llmService.Query(ctx, prompt)
	observability.RecordSuggestion(string(store.WorkoutGym), completion.Outcome.String())
	return GymSuggestion{
		Suggestion:  completion.Text,
		Rendered:    MarkdownBold(completion.Text),
		Outcome:     completion.Outcome.String(),
		LastSession: last,
	}, nil
}

func (s *WorkoutService) SuggestWod(ctx context.Context, userID int64) (WodSuggestion, error) {
	prompt, err := s.composer.BuildWodPrompt(ctx, userID)
	if err != nil {
		return WodSuggestion{}, err
	}
	last, err := s.history.LastWodWorkout(ctx, userID)
	if err != nil {
		return WodSuggestion{}, err
	}
	if s.logPrompts {
		log.Printf("WOD Suggest Prompt: %s", prompt)
	}

	completion := s.llmService.Query(ctx, prompt)
	observability.RecordSuggestion(string(store.WorkoutWod), completion.Outcome.String())

	blocks := SegmentWodResponse(completion.Text)
	return WodSuggestion{
		Suggestion: completion.Text,
		Outcome:    completion.Outcome.String(),
		Blocks:     blocks,
		Highlights: ExtractBlocks(completion.Text),
		SavedWod:   strings.Join(blocks, "\n"),
		LastWod:    last,
	}, nil
}

func (s *WorkoutService) ClearAll(ctx context.Context, username string) (string, error) {
	if !auth.IsAdmin(username) {
		return NoticeUnauthorized, ErrUnauthorized
	}
	if err := s.dbStore.ClearAll(ctx); err != nil {
		return "", fmt.Errorf("failed to clear database: %w", err)
	}
	log.Println("Database cleared by admin")
	return NoticeCleared, nil
}

func (s *WorkoutService) Prompts(username string) (Prompts, error) {
	if !auth.IsAdmin(username) {
		return Prompts{}, ErrUnauthorized
	}
	return s.prompts.Load()
}

func (s *WorkoutService) SavePrompts(username string, p Prompts) (string, error) {
	if !auth.IsAdmin(username) {
		return NoticeUnauthorized, ErrUnauthorized
	}
	if err := s.prompts.Save(p); err != nil {
		return "", err
	}
	return NoticePromptsSaved, nil
}
