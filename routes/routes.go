package routes

import (
	"github.com/faceoff-gg/progression/handlers"
	"github.com/faceoff-gg/progression/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func SetupRoutes(
	router *chi.Mux,
	rateLimiter *middleware.RateLimiter,
	teamHandler *handlers.TeamHandler,
	matchHandler *handlers.MatchHandler,
	seriaHandler *handlers.SeriaHandler,
	playoffHandler *handlers.PlayoffHandler,
	groupHandler *handlers.GroupHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(rateLimiter.Handler)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", teamHandler.ListTeams)
		r.Post("/", teamHandler.CreateTeam)
		r.Get("/{teamID}", teamHandler.GetTeamByID)
		r.Put("/{teamID}", teamHandler.UpdateTeam)
		r.Delete("/{teamID}", teamHandler.DeleteTeam)
		r.Post("/{teamID}/logo", teamHandler.UploadTeamLogo)
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", matchHandler.ListMatches)
		r.Post("/", matchHandler.CreateMatch)
		r.Get("/{matchID}", matchHandler.GetMatchByID)
		r.Patch("/{matchID}", matchHandler.UpdateMatch)
		r.Post("/{matchID}/reset", matchHandler.ResetMatch)
		r.Delete("/{matchID}", matchHandler.DeleteMatch)
	})

	router.Route("/series", func(r chi.Router) {
		r.Get("/", seriaHandler.ListSeries)
		r.Post("/", seriaHandler.CreateSeria)
		r.Get("/{seriaID}", seriaHandler.GetSeriaByID)
		r.Put("/{seriaID}/map-pool", seriaHandler.UpdateMapPool)
		r.Post("/{seriaID}/play", seriaHandler.PlayMatch)
		r.Post("/{seriaID}/change-last", seriaHandler.ChangeLastMatch)
		r.Post("/{seriaID}/reset-last", seriaHandler.ResetLastMatch)
		r.Delete("/{seriaID}", seriaHandler.DeleteSeria)
	})

	router.Route("/playoffs", func(r chi.Router) {
		r.Get("/", playoffHandler.ListPlayoffs)
		r.Post("/", playoffHandler.CreatePlayoff)
		r.Get("/{playoffID}", playoffHandler.GetPlayoffByID)
		r.Get("/{playoffID}/bracket", playoffHandler.GetFullBracket)
		r.Post("/{playoffID}/series/{seriaID}/play", playoffHandler.PlayMatch)
		r.Post("/{playoffID}/series/{seriaID}/change-last", playoffHandler.ChangeLastMatch)
		r.Post("/{playoffID}/series/{seriaID}/reset-last", playoffHandler.ResetLastMatch)
		r.Delete("/{playoffID}/rounds/last", playoffHandler.DestroyLastRound)
		r.Delete("/{playoffID}", playoffHandler.DeletePlayoff)
	})

	router.Route("/groups", func(r chi.Router) {
		r.Get("/", groupHandler.ListGroups)
		r.Post("/", groupHandler.CreateGroup)
		r.Get("/{groupID}", groupHandler.GetGroupByID)
		r.Get("/{groupID}/tables", groupHandler.GetSortedTables)
		r.Post("/{groupID}/stages", groupHandler.AddStage)
		r.Post("/{groupID}/games", groupHandler.AddGamesToStage)
		r.Post("/{groupID}/games/{gameID}/play", groupHandler.PlayGame)
		r.Post("/{groupID}/games/{gameID}/reset", groupHandler.ResetGame)
		r.Delete("/{groupID}/stages/last", groupHandler.DestroyLastStage)
		r.Delete("/{groupID}", groupHandler.DeleteGroup)
	})
}
