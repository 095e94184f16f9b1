// Package store caches normalized provider answers in Postgres so repeated
// questions skip the completion call. Keys are a hash of (domain, question)
// plus the provider name; conversation state is never persisted here.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"
)

var ErrNotFound = sql.ErrNoRows

type AnswerRepo struct{ DB *sql.DB }

func NewAnswerRepo(db *sql.DB) *AnswerRepo { return &AnswerRepo{DB: db} }

func answerKey(domain, question string) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0})
	h.Write([]byte(question))
	return hex.EncodeToString(h.Sum(nil))
}

// Find returns the freshest cached answer for (domain, question, provider).
// If maxAge > 0 and the row is older, it reports ErrNotFound so the caller
// asks the provider again.
func (r *AnswerRepo) Find(ctx context.Context, domain, question, provider string, maxAge time.Duration) (string, error) {
	const q = `
select answer, created_at
from solved_answers
where question_hash = $1 and provider = $2
order by created_at desc
limit 1`
	var (
		answer string
		ts     time.Time
	)
	if err := r.DB.QueryRowContext(ctx, q, answerKey(domain, question), provider).Scan(&answer, &ts); err != nil {
		return "", err
	}
	if maxAge > 0 && time.Since(ts) > maxAge {
		return "", ErrNotFound
	}
	return answer, nil
}

// Upsert stores a normalized answer, replacing any previous row for the
// same (question_hash, provider) key.
func (r *AnswerRepo) Upsert(ctx context.Context, domain, question, provider, answer string) error {
	const q = `
insert into solved_answers (question_hash, domain, question, provider, answer)
values ($1,$2,$3,$4,$5)
on conflict (question_hash, provider) do update
set domain = excluded.domain,
    question = excluded.question,
    answer = excluded.answer,
    created_at = now()`
	_, err := r.DB.ExecContext(ctx, q, answerKey(domain, question), domain, question, provider, answer)
	return err
}

// PurgeOlderThan deletes stale cache rows so the table does not grow forever.
func (r *AnswerRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	const q = `delete from solved_answers where created_at < $1`
	res, err := r.DB.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
