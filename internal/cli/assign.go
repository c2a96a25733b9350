package cli

import (
	"fmt"
	"time"

	"fitquiz-service/internal/app"
	"fitquiz-service/internal/config"
	"fitquiz-service/internal/infra/memory"
	pgstore "fitquiz-service/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewAssignCmd assigns a quiz to a user from the command line, the same path
// the admin CRM takes through the HTTP API.
func NewAssignCmd(configPath *string) *cobra.Command {
	var assignedBy string

	cmd := &cobra.Command{
		Use:   "assign <userID> <quizID>",
		Short: "Assign a quiz to a user's pending queue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}

			ctx := cmd.Context()
			pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			db, err := openBunDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			quizzes := memory.NewQuizRepository(pgstore.NewQuizSource(pool), time.Minute)
			service := app.NewQuizService(pgstore.NewUserStore(pool), quizzes, pgstore.NewAnswerStore(db))
			return service.AssignQuiz(ctx, args[0], args[1], assignedBy)
		},
	}

	cmd.Flags().StringVar(&assignedBy, "by", "admin", "id of the assigning admin")
	return cmd
}
