package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"livecoder-service/internal/app"
	"livecoder-service/internal/config"
	"livecoder-service/internal/domain"
	"livecoder-service/internal/infra/memory"
	pgloader "livecoder-service/internal/infra/postgres"
	redisinfra "livecoder-service/internal/infra/redis"
	"livecoder-service/internal/scoring"
	transport "livecoder-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the challenge server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.CatalogLoader = memory.NewStaticCatalogLoader(sampleCatalog())
	if pool != nil {
		loader = pgloader.NewCatalogLoader(pool)
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var questionRepo app.QuestionRepository
	if redisClient != nil {
		questionRepo = redisinfra.NewQuestionRepository(redisClient, loader, questionTTL)
	} else {
		questionRepo = memory.NewQuestionRepository(loader, questionTTL)
	}

	var registry app.RoomRegistry
	if redisClient != nil {
		registry = redisinfra.NewRoomRegistry(redisClient, redisTTL)
	} else {
		registry = memory.NewRoomRegistry()
	}

	hub := transport.NewHub()
	service := app.NewRoomService(registry, questionRepo, scoring.NewKeywordScorer(), hub, cfg.Challenge.QuestionSeconds)
	wsHandler := transport.NewWSHandler(service, hub)
	restHandler := transport.NewRESTHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("POST /rooms", restHandler.CreateRoom)
	mux.HandleFunc("GET /rooms/{id}", restHandler.RoomExists)
	mux.HandleFunc("POST /submit", restHandler.Submit)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting livecoder service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCatalog provides a minimal question bank; swap this loader with the
// Postgres-backed one in production.
func sampleCatalog() []domain.Question {
	javaTemplate := "public class Main {\n    public static void main(String[] args) {\n        System.out.println(\"Welcome to LiveCoder\");\n    }\n}"
	return []domain.Question{
		{
			Title:       "Array Sum",
			Description: "Given an array of integers, print the sum of its elements.",
			Topic:       "Arrays",
			Difficulty:  "easy",
			Constraints: []string{"1 <= n <= 10^4"},
			Templates:   map[string]string{"java": javaTemplate},
		},
		{
			Title:       "Reverse Array",
			Description: "Print the elements of the given array in reverse order.",
			Topic:       "Arrays",
			Difficulty:  "easy",
			Constraints: []string{"1 <= n <= 10^4"},
			Templates:   map[string]string{"java": javaTemplate},
		},
		{
			Title:       "Valid Parentheses",
			Description: "Determine whether the input string of brackets is balanced.",
			Topic:       "Stacks",
			Difficulty:  "medium",
			Templates:   map[string]string{"java": javaTemplate},
		},
	}
}
