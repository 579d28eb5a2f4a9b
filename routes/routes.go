package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/mobaarena/esports-platform/handlers"
	"github.com/mobaarena/esports-platform/middleware"
)

// SetupRoutes wires the full HTTP surface. Read endpoints for tournament
// state are public; mutations sit behind the authenticator with capability
// checks layered per group.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	adminHandler *handlers.AdminHandler,
	eventHandler *handlers.EventHandler,
	teamHandler *handlers.TeamHandler,
	memberHandler *handlers.MemberHandler,
	groupHandler *handlers.GroupHandler,
	stageHandler *handlers.StageHandler,
	matchHandler *handlers.MatchHandler,
	wsHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Get("/swagger/*", httpSwagger.Handler())

	router.Post("/auth/login", authHandler.Login)

	// Live updates; join/leave is message-driven, no auth required for
	// public tournament state.
	router.Get("/ws", wsHandler.ServeWs)

	router.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.Get("/{eventID}", eventHandler.GetEventByID)
		r.Get("/{eventID}/bracket", eventHandler.GetBracket)
		r.Get("/{eventID}/teams", teamHandler.ListTeams)
		r.Get("/{eventID}/groups", groupHandler.ListGroups)
		r.Get("/{eventID}/stages", stageHandler.ListStages)
		r.Get("/{eventID}/matches", matchHandler.ListMatches)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.RequireAdmin)

			r.Post("/", eventHandler.CreateEvent)
			r.Patch("/{eventID}", eventHandler.UpdateEvent)
			r.Patch("/{eventID}/status", eventHandler.UpdateEventStatus)
			r.Delete("/{eventID}", eventHandler.DeleteEvent)
			r.Post("/{eventID}/logo", eventHandler.UploadLogo)

			r.Post("/{eventID}/teams", teamHandler.RegisterTeam)

			r.Post("/{eventID}/groups", groupHandler.CreateGroup)
			r.Post("/{eventID}/stages", stageHandler.CreateStage)
			r.Post("/{eventID}/matches", matchHandler.CreateMatch)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/{teamID}", teamHandler.GetTeamByID)

		// Teams may update their own profile with their access token, so
		// these routes authenticate without the admin gate; the service
		// enforces ownership.
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Patch("/{teamID}", teamHandler.UpdateTeam)
			r.Post("/{teamID}/logo", teamHandler.UploadLogo)
			r.Delete("/{teamID}", teamHandler.DeleteTeam)

			r.Get("/{teamID}/members", memberHandler.ListMembers)
			r.Post("/{teamID}/members", memberHandler.CreateMember)
		})
	})

	router.Route("/members", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Patch("/{memberID}", memberHandler.UpdateMember)
		r.Delete("/{memberID}", memberHandler.DeleteMember)
	})

	router.Route("/groups", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.RequireAdmin)

		r.Patch("/{groupID}", groupHandler.UpdateGroup)
		r.Delete("/{groupID}", groupHandler.DeleteGroup)
		r.Post("/{groupID}/teams", groupHandler.AddTeam)
		r.Delete("/{groupID}/teams/{teamID}", groupHandler.RemoveTeam)
	})

	router.Route("/stages", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.RequireAdmin)

		r.Patch("/{stageID}", stageHandler.UpdateStage)
		r.Delete("/{stageID}", stageHandler.DeleteStage)
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetMatchByID)
		r.Get("/{matchID}/rounds", matchHandler.ListRounds)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.RequireAdmin)

			r.Patch("/{matchID}", matchHandler.UpdateMatch)
			r.Patch("/{matchID}/score", matchHandler.UpdateScore)
			r.Delete("/{matchID}", matchHandler.DeleteMatch)
			r.Post("/{matchID}/rounds", matchHandler.CreateRound)
		})
	})

	router.Route("/rounds", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.RequireAdmin)

		r.Patch("/{roundID}", matchHandler.UpdateRound)
		r.Delete("/{roundID}", matchHandler.DeleteRound)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.RequireSuperAdmin)

		r.Get("/stats", adminHandler.GetStats)
		r.Post("/users", adminHandler.CreateAdmin)
	})
}
