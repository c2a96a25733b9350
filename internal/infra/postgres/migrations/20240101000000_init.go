package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

const createQuizzesSQL = `
CREATE TABLE IF NOT EXISTS quizzes (
	id   TEXT PRIMARY KEY,
	data JSONB NOT NULL
)`

const createUsersSQL = `
CREATE TABLE IF NOT EXISTS users (
	id      TEXT PRIMARY KEY,
	data    JSONB NOT NULL,
	version BIGINT NOT NULL DEFAULT 0
)`

const createAnswersSQL = `
CREATE TABLE IF NOT EXISTS quiz_answers (
	user_id      TEXT NOT NULL,
	quiz_id      TEXT NOT NULL,
	answers      JSONB NOT NULL,
	submitted_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, quiz_id)
)`

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			for _, stmt := range []string{createQuizzesSQL, createUsersSQL, createAnswersSQL} {
				if _, err := db.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			for _, table := range []string{"quiz_answers", "users", "quizzes"} {
				if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
