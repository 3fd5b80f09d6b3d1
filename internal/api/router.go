package api

import (
	authAPI "crash_backend/internal/api/auth"
	gameAPI "crash_backend/internal/api/game"
	"crash_backend/internal/middleware"
	"crash_backend/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type RouterDeps struct {
	Game *gameAPI.Handler
	Auth *authAPI.Handler
	WS   http.Handler
	// Verifier guards the authenticated endpoints
	Verifier service.AuthService
}

func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	}))

	r.Get("/healthz", deps.Game.Health)
	r.Handle("/ws", deps.WS)

	r.Route("/api", func(rr chi.Router) {
		rr.Get("/config", deps.Game.Config)
		rr.Get("/state", deps.Game.State)
		rr.Get("/history", deps.Game.History)
		rr.Get("/stats", deps.Game.Stats)

		rr.Post("/auth/guest", deps.Auth.Guest)
		rr.With(middleware.Auth(deps.Verifier)).Get("/me", deps.Auth.Me)
	})

	return r
}
