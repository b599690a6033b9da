package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/harutok/counts-service/internal/cache"
	"github.com/harutok/counts-service/internal/config"
	"github.com/harutok/counts-service/internal/events"
	"github.com/harutok/counts-service/internal/http/handlers/counters"
	usersHandlers "github.com/harutok/counts-service/internal/http/handlers/users"
	wsHandlers "github.com/harutok/counts-service/internal/http/handlers/websocket"
	"github.com/harutok/counts-service/internal/http/middleware"
	"github.com/harutok/counts-service/internal/storage/postgres"
	"github.com/harutok/counts-service/internal/types"
	"github.com/harutok/counts-service/internal/utils/response"
	"github.com/harutok/counts-service/internal/websocket"
)

func main() {
	// load config
	cfg := config.MustLoad()

	// database setup
	pg, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	slog.Info("Connected to Postgres database")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	slog.Info("Connected to Redis")

	store := cache.NewCacheService(pg, redisClient)

	// live count-up event feed
	hub := websocket.NewHub()
	go hub.Run()
	publisher := events.NewEventPublisher(hub)

	rateLimits := middleware.NewRateLimitConfig(redisClient, cfg.RateLimit.CountUpPerMinute)

	// setup server
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pg.Db.PingContext(r.Context()); err != nil {
			response.WriteJSON(w, http.StatusServiceUnavailable, response.Response{Error: "database unavailable"})
			return
		}
		response.WriteJSON(w, http.StatusOK, response.OK(nil))
	})

	router.HandleFunc("GET /users", usersHandlers.GetUser(store))
	router.HandleFunc("POST /users", usersHandlers.AddUser(store))

	router.HandleFunc("GET /roly-poly/{userId}", counters.GetDay(store, types.RolyPoly))
	router.Handle("POST /roly-poly/{userId}",
		rateLimits.RateLimitedHandler("roly-poly", counters.CountUp(store, publisher, types.RolyPoly)))

	router.HandleFunc("GET /others/{userId}", counters.GetDay(store, types.Others))
	router.Handle("POST /others/{userId}",
		rateLimits.RateLimitedHandler("others", counters.CountUp(store, publisher, types.Others)))

	router.HandleFunc("GET /ws", wsHandlers.WebSocketHandler(hub))

	server := http.Server{
		Addr:    cfg.HTTPServer.Address,
		Handler: middleware.RequestID(router),
	}

	log.Println("server started on", cfg.HTTPServer.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %s", err)
		}
	}()

	<-done

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		slog.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
		return
	}

	slog.Info("Server stopped")
}
