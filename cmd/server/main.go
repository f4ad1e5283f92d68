package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"trivio/config"
	"trivio/internal/cache"
	"trivio/internal/game"
	"trivio/internal/repository"
	"trivio/internal/service"
	"trivio/internal/transport/rest"
	"trivio/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisAddr := cfg.RedisAddr
	// Remove redis:// prefix if present
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	setRepo := repository.NewSetRepo(db)
	contestantRepo := repository.NewContestantRepo(db)
	recordRepo := repository.NewRecordRepo(db)
	liveRepo := repository.NewLiveRepo(db)

	// Initialize caches
	sessionCache := cache.NewSessionCache(rdb)
	leaderboard := cache.NewLeaderboardCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService()
	setSvc := service.NewSetService(setRepo)
	gameSvc := service.NewGameService(setSvc, contestantRepo, recordRepo, func() game.Narrator {
		return game.NewTimedNarrator(cfg.ReadingCharsPerSec)
	})
	defer gameSvc.Close()
	liveSvc := service.NewLiveService(liveRepo, sessionCache, leaderboard, authSvc, cfg.CountdownSec)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	liveSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService: authSvc,
		SetService:  setSvc,
		GameService: gameSvc,
		LiveService: liveSvc,
		WSHub:       wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST/GET /v1/sets")
		log.Println("  POST /v1/games (+ clue, round, final ops)")
		log.Println("  POST /v1/live, /v1/live/join, /v1/live/buzz")
		log.Println("  WS  /v1/ws/games/{gameId}/host")
		log.Println("  WS  /v1/ws/games/{gameId}/player")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
