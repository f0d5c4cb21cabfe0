package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Get("/users", apiHandler.ListUsersHandler)
		r.Post("/session", apiHandler.CreateSessionHandler)
		r.Post("/logout", apiHandler.LogoutHandler)

		// Routes that act for the selected user
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.SessionMiddleware)

			r.Get("/workouts/gym", apiHandler.GymHistoryHandler)
			r.Post("/workouts/gym", apiHandler.RecordGymHandler)
			r.Get("/workouts/wod", apiHandler.WodHistoryHandler)
			r.Post("/workouts/wod", apiHandler.RecordWodHandler)
			r.Post("/workouts/wod/feedback", apiHandler.RecordWodFeedbackHandler)
			r.Delete("/workouts/wod/{workoutID}", apiHandler.DeleteWodHandler)

			r.Get("/suggestions/gym", apiHandler.SuggestGymHandler)
			r.Get("/suggestions/wod", apiHandler.SuggestWodHandler)

			// Admin only; the handlers answer 403 for everyone else
			r.Get("/prompts", apiHandler.GetPromptsHandler)
			r.Put("/prompts", apiHandler.SavePromptsHandler)
			r.Post("/admin/clear", apiHandler.ClearAllHandler)
		})
	})

	return r
}
