package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitquiz-service/internal/app"
	"fitquiz-service/internal/config"
	"fitquiz-service/internal/domain"
	"fitquiz-service/internal/infra/memory"
	pgstore "fitquiz-service/internal/infra/postgres"
	rediscache "fitquiz-service/internal/infra/redis"
	transport "fitquiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz scheduling server",
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
	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var users app.UserRepository
	var answers app.AnswerRecorder
	var source memory.QuizSource
	if pool != nil {
		users = pgstore.NewUserStore(pool)
		source = pgstore.NewQuizSource(pool)

		db, err := openBunDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		answers = pgstore.NewAnswerStore(db)
	} else {
		log.Println("no postgres url configured, running with in-memory demo data")
		userStore := memory.NewUserStore()
		for _, user := range sampleUsers() {
			userStore.Seed(user)
		}
		users = userStore
		source = memory.NewStaticQuizSource(sampleQuizzes())
		answers = memory.NewAnswerStore()
	}

	var quizzes app.QuizRepository
	if redisClient != nil {
		quizzes = rediscache.NewQuizRepository(redisClient, source, cacheTTL)
	} else {
		quizzes = memory.NewQuizRepository(source, cacheTTL)
	}

	service := app.NewQuizService(users, quizzes, answers)
	handler := transport.NewHandler(service)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	handler.Register(mux)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting fitquiz service on :%s", finalPort)
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

// sampleQuizzes seeds the demo mode with one admin-assigned quiz and one
// interval quiz so both scheduling paths can be exercised locally.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"onboarding": {
			ID:       "onboarding",
			Name:     "Onboarding check-in",
			IsActive: true,
			Questions: []domain.Question{
				{
					ID:     "q1",
					Prompt: "How often do you currently exercise?",
					Options: []domain.Option{
						{ID: "o1", Text: "Rarely"},
						{ID: "o2", Text: "1-2 times a week"},
						{ID: "o3", Text: "3+ times a week"},
					},
				},
			},
			TriggerType:       domain.TriggerAdminAssignment,
			TimeFrameHandling: domain.AllUsers,
			CompletionMessage: "Welcome aboard! Your coach will review your answers.",
		},
		"weekly-checkin": {
			ID:       "weekly-checkin",
			Name:     "Weekly check-in",
			IsActive: true,
			Questions: []domain.Question{
				{
					ID:     "q1",
					Prompt: "How did training feel this week?",
					Options: []domain.Option{
						{ID: "o1", Text: "Easy"},
						{ID: "o2", Text: "Just right"},
						{ID: "o3", Text: "Too hard"},
					},
				},
			},
			TriggerType:        domain.TriggerTimeInterval,
			TriggerStartFrom:   domain.StartFromLastQuiz,
			TriggerDelayAmount: 7,
			TriggerDelayUnit:   domain.DelayDays,
			TimeFrameHandling:  domain.RespectTimeFrame,
		},
	}
}

func sampleUsers() []domain.User {
	now := time.Now()
	return []domain.User{
		{
			ID:        "demo-user",
			CreatedAt: now,
			TimeFrame: &domain.TimeFrame{IsWithinTimeFrame: true},
			PendingQuizzes: domain.PendingQueue{
				{QuizID: "onboarding", AssignedAt: now, AssignedBy: "admin"},
			},
		},
	}
}
