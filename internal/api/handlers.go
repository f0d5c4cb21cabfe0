package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kiraleos/wodcoach/internal/auth"
	"github.com/kiraleos/wodcoach/internal/core"
	"github.com/kiraleos/wodcoach/internal/store"
)

const (
	sessionCookie  = "session"
	genericFailure = "An error occurred. Please try again."
)

type ctxKey string

const sessionKey ctxKey = "session"

type APIHandler struct {
	workoutService *core.WorkoutService
	sessionSecret  string
}

func NewAPIHandler(ws *core.WorkoutService, sessionSecret string) *APIHandler {
	return &APIHandler{workoutService: ws, sessionSecret: sessionSecret}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeNotice(w http.ResponseWriter, status int, notice string) {
	writeJSON(w, status, map[string]string{"notice": notice})
}

func writeFailure(w http.ResponseWriter, action string, err error) {
	log.Printf("Error in %s: %v", action, err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": genericFailure})
}

func sessionFromContext(ctx context.Context) auth.Session {
	s, _ := ctx.Value(sessionKey).(auth.Session)
	return s
}

// SessionMiddleware accepts the session token from a Bearer header or the session cookie.
func (h *APIHandler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			tokenString = ""
			if c, err := r.Cookie(sessionCookie); err == nil {
				tokenString = c.Value
			}
		}
		if tokenString == "" {
			writeNotice(w, http.StatusUnauthorized, core.NoticeNoSession)
			return
		}

		session, err := auth.ValidateSessionToken(h.sessionSecret, tokenString)
		if err != nil {
			log.Printf("Rejected session token: %v", err)
			writeNotice(w, http.StatusUnauthorized, core.NoticeNoSession)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *APIHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.workoutService.Users(r.Context())
	if err != nil {
		writeFailure(w, "ListUsersHandler", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

type SessionRequest struct {
	UserSelect string `json:"user_select"`
	NewUser    string `json:"new_user"`
}

type SessionResponse struct {
	Token string       `json:"token"`
	User  auth.Session `json:"user"`
	Admin bool         `json:"admin"`
}

func (h *APIHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	sel, err := h.workoutService.SelectUser(r.Context(), req.UserSelect, req.NewUser)
	if err != nil {
		writeFailure(w, "CreateSessionHandler", err)
		return
	}
	if sel.Session == nil {
		writeNotice(w, http.StatusBadRequest, sel.Notice)
		return
	}

	token, err := auth.GenerateSessionToken(h.sessionSecret, *sel.Session)
	if err != nil {
		writeFailure(w, "CreateSessionHandler", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, SessionResponse{Token: token, User: *sel.Session, Admin: sel.Admin})
}

func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeNotice(w, http.StatusOK, core.NoticeLoggedOut)
}

// workoutsResponse is the shape of both history endpoints.
type workoutsResponse struct {
	Workouts []store.Workout `json:"workouts"`
}

func (h *APIHandler) GymHistoryHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	workouts, err := h.workoutService.GymHistory(r.Context(), session.UserID)
	if err != nil {
		writeFailure(w, "GymHistoryHandler", err)
		return
	}
	writeJSON(w, http.StatusOK, workoutsResponse{Workouts: workouts})
}

type RecordGymRequest struct {
	Date string        `json:"date"`
	Rows []core.GymRow `json:"rows"`
}

func (h *APIHandler) RecordGymHandler(w http.ResponseWriter, r *http.Request) {
	var req RecordGymRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	session := sessionFromContext(r.Context())
	notice, err := h.workoutService.RecordGym(r.Context(), session.UserID, req.Date, req.Rows)
	if err != nil {
		writeFailure(w, "RecordGymHandler", err)
		return
	}
	if notice == core.NoticeNoGymData {
		writeNotice(w, http.StatusOK, notice)
		return
	}
	writeNotice(w, http.StatusCreated, notice)
}

func (h *APIHandler) WodHistoryHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	workouts, err := h.workoutService.WodHistory(r.Context(), session.UserID)
	if err != nil {
		writeFailure(w, "WodHistoryHandler", err)
		return
	}
	writeJSON(w, http.StatusOK, workoutsResponse{Workouts: workouts})
}

type RecordWodRequest struct {
	WodWorkout string `json:"wod_workout"`
	Feedback   string `json:"feedback,omitempty"`
}

func (h *APIHandler) RecordWodHandler(w http.ResponseWriter, r *http.Request) {
	var req RecordWodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	session := sessionFromContext(r.Context())
	notice, err := h.workoutService.RecordWod(r.Context(), session.UserID, req.WodWorkout)
	if err != nil {
		writeFailure(w, "RecordWodHandler", err)
		return
	}
	if notice == core.NoticeNoWodData {
		writeNotice(w, http.StatusOK, notice)
		return
	}
	writeNotice(w, http.StatusCreated, notice)
}

func (h *APIHandler) RecordWodFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var req RecordWodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	session := sessionFromContext(r.Context())
	notice, err := h.workoutService.RecordWodFeedback(r.Context(), session.UserID, req.WodWorkout, req.Feedback)
	if err != nil {
		writeFailure(w, "RecordWodFeedbackHandler", err)
		return
	}
	if notice == core.NoticeMissingFeedback {
		writeNotice(w, http.StatusOK, notice)
		return
	}
	writeNotice(w, http.StatusCreated, notice)
}

func (h *APIHandler) DeleteWodHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "workoutID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid workout ID", http.StatusBadRequest)
		return
	}

	notice, err := h.workoutService.DeleteWod(r.Context(), id)
	if err != nil {
		writeNotice(w, http.StatusInternalServerError, notice)
		return
	}
	writeNotice(w, http.StatusOK, notice)
}

func (h *APIHandler) SuggestGymHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	suggestion, err := h.workoutService.SuggestGym(r.Context(), session.UserID)
	if err != nil {
		writeFailure(w, "SuggestGymHandler", err)
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}

func (h *APIHandler) SuggestWodHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	suggestion, err := h.workoutService.SuggestWod(r.Context(), session.UserID)
	if err != nil {
		writeFailure(w, "SuggestWodHandler", err)
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}

func (h *APIHandler) GetPromptsHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	prompts, err := h.workoutService.Prompts(session.Username)
	if errors.Is(err, core.ErrUnauthorized) {
		writeNotice(w, http.StatusForbidden, core.NoticeUnauthorized)
		return
	}
	if err != nil {
		writeFailure(w, "GetPromptsHandler", err)
		return
	}
	writeJSON(w, http.StatusOK, prompts)
}

func (h *APIHandler) SavePromptsHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	var req core.Prompts
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	notice, err := h.workoutService.SavePrompts(session.Username, req)
	if errors.Is(err, core.ErrUnauthorized) {
		writeNotice(w, http.StatusForbidden, notice)
		return
	}
	if err != nil {
		writeFailure(w, "SavePromptsHandler", err)
		return
	}
	writeNotice(w, http.StatusOK, notice)
}

func (h *APIHandler) ClearAllHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	notice, err := h.workoutService.ClearAll(r.Context(), session.Username)
	if errors.Is(err, core.ErrUnauthorized) {
		writeNotice(w, http.StatusForbidden, notice)
		return
	}
	if err != nil {
		writeFailure(w, "ClearAllHandler", err)
		return
	}
	writeNotice(w, http.StatusOK, notice)
}
