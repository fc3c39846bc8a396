package server

import (
	"log/slog"
	"net/http"

	"github.com/ah91648/roomie-roster-sub000/internal/config"
	"github.com/ah91648/roomie-roster-sub000/internal/engine"
	"github.com/ah91648/roomie-roster-sub000/internal/handlers"
	"github.com/ah91648/roomie-roster-sub000/internal/middleware"
	"github.com/ah91648/roomie-roster-sub000/internal/repository"
	"github.com/ah91648/roomie-roster-sub000/internal/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	router *chi.Mux
	config config.Config
}

func New(store *repository.Store, cfg config.Config, authService *services.AuthService, scheduler *engine.Engine) *Server {
	authHandler := handlers.NewAuthHandler(authService)
	roommateHandler := handlers.NewRoommateHandler(store.Roommates)
	choreHandler := handlers.NewChoreHandler(store.Chores, scheduler)
	assignmentHandler := handlers.NewAssignmentHandler(store.Assignments, scheduler)
	leaderboardHandler := handlers.NewLeaderboardHandler(store.Roommates, store.Assignments)
	adminHandler := handlers.NewAdminHandler(store.Roommates, store.Settings)
	apiHandler := handlers.NewAPIHandler(store.Roommates, store.Chores, store.Assignments, store.APITokens, store.Settings)
	icalHandler := handlers.NewICalHandler(store.Assignments, store.APITokens, store.Settings, cfg.FeedToken)

	router := chi.NewRouter()

	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Get("/auth/login", authHandler.Login)
	router.Get("/auth/callback", authHandler.Callback)
	router.Post("/auth/dev-login", authHandler.DevLogin)
	router.Post("/auth/logout", authHandler.Logout)

	router.Get("/calendar.ics", icalHandler.Feed)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(authService))
		r.Use(chimiddleware.Throttle(100))

		r.Get("/api/me", authHandler.Me)
		r.Get("/api/settings", adminHandler.GetSettings)
		r.Get("/api/leaderboard", leaderboardHandler.Standings)

		r.Get("/api/roommates", roommateHandler.List)
		r.Get("/api/roommates/{id}", roommateHandler.Get)

		r.Get("/api/chores", choreHandler.List)
		r.Get("/api/chores/{id}", choreHandler.Get)

		r.Get("/api/assignments", assignmentHandler.List)
		r.Get("/api/assignments/mine", assignmentHandler.Mine)
		r.Get("/api/assignments/by-roommate", assignmentHandler.ByRoommate)
		r.Post("/api/chores/{id}/assign", assignmentHandler.AssignOne)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/api/roommates", roommateHandler.Create)
			r.Put("/api/roommates/{id}", roommateHandler.Update)
			r.Delete("/api/roommates/{id}", roommateHandler.Delete)

			r.Post("/api/chores", choreHandler.Create)
			r.Put("/api/chores/{id}", choreHandler.Update)
			r.Delete("/api/chores/{id}", choreHandler.Delete)

			r.Post("/api/assignments/run", assignmentHandler.Run)

			r.Post("/api/admin/roommates/{id}/promote", adminHandler.PromoteRoommate)
			r.Post("/api/admin/roommates/{id}/demote", adminHandler.DemoteRoommate)
			r.Put("/api/admin/settings", adminHandler.UpdateSettings)

			r.Get("/api/admin/tokens", apiHandler.ListTokens)
			r.Post("/api/admin/tokens", apiHandler.CreateToken)
			r.Delete("/api/admin/tokens/{id}", apiHandler.DeleteToken)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.APITokenAuth(store.APITokens, store.Roommates))
		r.Use(chimiddleware.Throttle(100))

		r.Get("/api/v1/roommates", apiHandler.ListRoommates)
		r.Get("/api/v1/chores", apiHandler.ListChores)
		r.Get("/api/v1/assignments", apiHandler.ListAssignments)
		r.Get("/api/v1/stats", apiHandler.Stats)
	})

	return &Server{
		router: router,
		config: cfg,
	}
}

func (server *Server) Start() error {
	address := ":" + server.config.Port
	slog.Info("starting server", "address", address)
	return http.ListenAndServe(address, server.router)
}
