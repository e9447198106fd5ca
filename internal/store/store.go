// Package store persists prediction audits and contact messages in
// PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS predictions (
	id            UUID PRIMARY KEY,
	created_at    TIMESTAMPTZ NOT NULL,
	features      JSONB NOT NULL,
	disease       INTEGER NOT NULL,
	label         TEXT NOT NULL,
	confidence    DOUBLE PRECISION NOT NULL,
	constraint_id TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS contact_messages (
	id         BIGSERIAL PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	message    TEXT NOT NULL
);`

// PredictionRecord is one audited prediction. Features are the normalized
// values sent to the classifier, in schema order.
type PredictionRecord struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	Features   []float64
	Disease    int
	Label      string
	Confidence float64
	Constraint string
}

// ContactMessage is a message left through the contact form.
type ContactMessage struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool, verifies it and creates the tables.
func Connect(ctx context.Context, url string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() { s.pool.Close() }

func (s *Store) RecordPrediction(ctx context.Context, rec PredictionRecord) error {
	features, err := json.Marshal(rec.Features)
	if err != nil {
		return fmt.Errorf("encode features: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO predictions (id, created_at, features, disease, label, confidence, constraint_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID.String(), rec.CreatedAt, features, rec.Disease, rec.Label, rec.Confidence, rec.Constraint,
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

func (s *Store) SaveContact(ctx context.Context, msg ContactMessage) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO contact_messages (created_at, name, email, message) VALUES ($1, $2, $3, $4)`,
		time.Now().UTC(), msg.Name, msg.Email, msg.Message,
	)
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	return nil
}
