package store

import (
	"context"
	"database/sql"
)

const schema = `
create table if not exists solved_answers (
  question_hash text        not null,
  provider      text        not null,
  domain        text        not null,
  question      text        not null,
  answer        text        not null,
  created_at    timestamptz not null default now(),
  primary key (question_hash, provider)
)`

// EnsureSchema creates the cache table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
