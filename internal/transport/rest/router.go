package rest

import (
	"net/http"
	"os"
	"trivio/internal/service"
	"trivio/internal/transport/rest/handler"
	"trivio/internal/transport/rest/middleware"
	"trivio/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService *service.AuthService
	SetService  *service.SetService
	GameService *service.GameService
	LiveService *service.LiveService
	WSHub       *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	setHandler := handler.NewSetHandler(c.SetService)
	gameHandler := handler.NewGameHandler(c.GameService)
	liveHandler := handler.NewLiveHandler(c.LiveService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.LiveService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/live/join", liveHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/live/claim", liveHandler.Claim).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/games/{gameId}/host", wsHandler.HostWS).Methods("GET")
	v1.HandleFunc("/ws/games/{gameId}/player", wsHandler.PlayerWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Host routes (require host auth)
	hostRoutes := v1.NewRoute().Subrouter()
	hostRoutes.Use(authMW.RequireHost)

	hostRoutes.HandleFunc("/sets", setHandler.Create).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/sets", setHandler.List).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/sets/{setId}", setHandler.Get).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/sets/{setId}", setHandler.Update).Methods("PUT", "OPTIONS")
	hostRoutes.HandleFunc("/sets/{setId}", setHandler.Delete).Methods("DELETE", "OPTIONS")

	hostRoutes.HandleFunc("/games", gameHandler.Start).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/state", gameHandler.State).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/games/history", gameHandler.History).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/games/finish", gameHandler.Finish).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/contestants", gameHandler.Contestants).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/games/teams", gameHandler.AddTeam).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/teams/saved", gameHandler.AddSavedTeam).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/teams/{index}", gameHandler.RemoveTeam).Methods("DELETE", "OPTIONS")
	hostRoutes.HandleFunc("/games/teams/{index}/score", gameHandler.EditScore).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/clue/select", gameHandler.SelectClue).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/clue/wager", gameHandler.Wager).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/clue/correct", gameHandler.MarkCorrect).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/clue/incorrect", gameHandler.MarkIncorrect).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/clue/daily", gameHandler.GradeDailyDouble).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/clue/finish", gameHandler.FinishClue).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/clue/undo", gameHandler.UndoClue).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/round/skip", gameHandler.SkipRound).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/final/begin", gameHandler.BeginFinal).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/final/wager", gameHandler.FinalWager).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/final/answer", gameHandler.FinalAnswer).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/final/advance", gameHandler.FinalAdvance).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/final/back", gameHandler.FinalBack).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/final/correct", gameHandler.FinalCorrect).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/final/incorrect", gameHandler.FinalIncorrect).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/final/reveal", gameHandler.FinalReveal).Methods("POST", "OPTIONS")

	hostRoutes.HandleFunc("/live", liveHandler.Create).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/live", liveHandler.Get).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/live/display", liveHandler.SetDisplay).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/live/buzzers/enable", liveHandler.EnableBuzzers).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/live/buzzers/clear", liveHandler.ClearBuzzers).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/live/grade", liveHandler.Grade).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/live/players", liveHandler.Players).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/live/leaderboard", liveHandler.Leaderboard).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/live/end", liveHandler.End).Methods("POST", "OPTIONS")

	// Player routes (require player auth)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/live/buzz", liveHandler.Buzz).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/live/response", liveHandler.SubmitResponse).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/live/wager", liveHandler.SubmitWager).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
