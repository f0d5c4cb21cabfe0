package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kiraleos/wodcoach/internal/core"
	"github.com/kiraleos/wodcoach/internal/store"
)

type stubProvider struct {
	reply string
	err   error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(context.Context, string) (string, error) {
	return p.reply, p.err
}

type testServer struct {
	router   http.Handler
	db       *store.MemoryStore
	provider *stubProvider
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := store.NewMemoryStore()
	provider := &stubProvider{reply: "Block 1: warm\nBlock 2: **lift**\nBlock 3: metcon"}
	prompts := core.NewPromptFile(filepath.Join(t.TempDir(), "prompts.json"))
	svc := core.NewWorkoutService(db, prompts, core.NewLLMService(provider), false)
	return &testServer{
		router:   NewRouter(NewAPIHandler(svc, "test-secret")),
		db:       db,
		provider: provider,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, name string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/session", "", SessionRequest{UserSelect: "new", NewUser: name})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeNotice(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["notice"]
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateSession(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/session", "", SessionRequest{UserSelect: "new"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, core.NoticeEnterUsername, decodeNotice(t, rec))

	rec = s.do(t, http.MethodPost, "/api/session", "", SessionRequest{UserSelect: "new", NewUser: "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "alice", resp.User.Username)
	require.False(t, resp.Admin)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, sessionCookie, cookies[0].Name)
	require.Equal(t, resp.Token, cookies[0].Value)

	rec = s.do(t, http.MethodPost, "/api/session", "", SessionRequest{UserSelect: fmt.Sprint(resp.User.UserID)})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"users":[{"id":1,"username":"alice"}]}`, rec.Body.String())
}

func TestSessionRequired(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/workouts/gym", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, core.NoticeNoSession, decodeNotice(t, rec))

	rec = s.do(t, http.MethodGet, "/api/workouts/gym", "forged", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionCookieIsAccepted(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "carol")

	req := httptest.NewRequest(http.MethodGet, "/api/workouts/wod", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"workouts":[]}`, rec.Body.String())
}

func TestNonBearerAuthorizationFallsBackToCookie(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "dave")

	req := httptest.NewRequest(http.MethodGet, "/api/workouts/gym", nil)
	req.Header.Set("Authorization", "Basic ZGF2ZTpzZWNyZXQ=")
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/workouts/gym", nil)
	req.Header.Set("Authorization", "Basic ZGF2ZTpzZWNyZXQ=")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/logout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, core.NoticeLoggedOut, decodeNotice(t, rec))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "", cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge)
}

func TestRecordAndListGym(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice")

	rec := s.do(t, http.MethodPost, "/api/workouts/gym", token, RecordGymRequest{
		Date: "2025-05-01",
		Rows: []core.GymRow{
			{MuscleGroup: "Chest", Exercise: "Bench", MaxWeight: "80", Sets: "5", Reps: "6"},
			{MuscleGroup: "Back"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "1 gym workout record(s) saved successfully.", decodeNotice(t, rec))

	rec = s.do(t, http.MethodPost, "/api/workouts/gym", token, RecordGymRequest{Rows: []core.GymRow{{}}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, core.NoticeNoGymData, decodeNotice(t, rec))

	rec = s.do(t, http.MethodGet, "/api/workouts/gym", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp workoutsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Workouts, 1)
	require.Equal(t, "2025-05-01", resp.Workouts[0].Date)
	require.Equal(t, "Bench", resp.Workouts[0].Details[store.KeyExercise])

	other := s.login(t, "bob")
	rec = s.do(t, http.MethodGet, "/api/workouts/gym", other, nil)
	require.JSONEq(t, `{"workouts":[]}`, rec.Body.String())
}

func TestRecordAndDeleteWod(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice")

	rec := s.do(t, http.MethodPost, "/api/workouts/wod", token, RecordWodRequest{})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, core.NoticeNoWodData, decodeNotice(t, rec))

	rec = s.do(t, http.MethodPost, "/api/workouts/wod", token, RecordWodRequest{WodWorkout: "Block 1: row"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, core.NoticeWodSaved, decodeNotice(t, rec))

	rec = s.do(t, http.MethodPost, "/api/workouts/wod/feedback", token, RecordWodRequest{WodWorkout: "Block 1: row"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, core.NoticeMissingFeedback, decodeNotice(t, rec))

	rec = s.do(t, http.MethodPost, "/api/workouts/wod/feedback", token, RecordWodRequest{WodWorkout: "Block 1: bike", Feedback: "perfect"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, core.NoticeFeedbackSaved, decodeNotice(t, rec))

	rec = s.do(t, http.MethodGet, "/api/workouts/wod", token, nil)
	var resp workoutsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Workouts, 2)
	require.Equal(t, "perfect", resp.Workouts[1].Details[store.KeyWodDifficulty])

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/workouts/wod/%d", resp.Workouts[0].ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, core.NoticeWodDeleted, decodeNotice(t, rec))

	rec = s.do(t, http.MethodDelete, "/api/workouts/wod/abc", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	all, err := s.db.GetAllWorkouts(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "Block 1: bike", all[0].Details[store.KeyWodBlocks])
}

func TestSuggestions(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice")

	rec := s.do(t, http.MethodGet, "/api/suggestions/wod", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var wod core.WodSuggestion
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&wod))
	require.Equal(t, []string{"Block 1: warm\n", "Block 2: **lift**\n", "Block 3: metcon"}, wod.Blocks)
	require.Equal(t, "Block 2: **lift**<br>Block 3: metcon", wod.Highlights)
	require.Equal(t, "ok", wod.Outcome)
	require.Nil(t, wod.LastWod)

	s.provider.err = core.ErrBadResponse
	rec = s.do(t, http.MethodGet, "/api/suggestions/gym", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var gym core.GymSuggestion
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&gym))
	require.Equal(t, core.FallbackText, gym.Suggestion)
	require.Equal(t, "bad_response", gym.Outcome)

	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `wodcoach_suggestions_total{kind="gym",outcome="bad_response"}`)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	user := s.login(t, "bob")
	admin := s.login(t, "Admin")

	rec := s.do(t, http.MethodGet, "/api/prompts", user, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, core.NoticeUnauthorized, decodeNotice(t, rec))

	rec = s.do(t, http.MethodPut, "/api/prompts", user, core.Prompts{GymPrompt: "x", WodPrompt: "y"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/admin/clear", user, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, core.NoticeUnauthorized, decodeNotice(t, rec))

	rec = s.do(t, http.MethodGet, "/api/prompts", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var prompts core.Prompts
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&prompts))
	require.Equal(t, core.DefaultPrompts(), prompts)

	rec = s.do(t, http.MethodPut, "/api/prompts", admin, core.Prompts{GymPrompt: "gym <b>", WodPrompt: "wod & more"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, core.NoticePromptsSaved, decodeNotice(t, rec))

	rec = s.do(t, http.MethodGet, "/api/prompts", admin, nil)
	require.JSONEq(t, `{"gym_prompt":"gym <b>","wod_prompt":"wod & more"}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/admin/clear", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, core.NoticeCleared, decodeNotice(t, rec))

	users, err := s.db.GetUsers(context.Background())
	require.NoError(t, err)
	require.Empty(t, users)
}
