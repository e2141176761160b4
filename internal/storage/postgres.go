// Package storage implements the persistence capability behind
// domain.PostStore. PostgresStore is the durable backend; MemoryStore runs
// the service without external infrastructure. The pipeline treats save
// failures as log-and-continue either way.
package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zach-wendland/stonkzap/internal/domain"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect opens a pgx pool and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	cfg.MaxConns = 25
	cfg.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// RunMigrations applies the schema. Statements are idempotent so startup
// can run them unconditionally.
func (s *PostgresStore) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS social_posts (
			id BIGSERIAL PRIMARY KEY,
			source TEXT NOT NULL,
			platform_id TEXT NOT NULL,
			author_id TEXT NOT NULL,
			author_handle TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			ingested_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			text TEXT NOT NULL,
			symbols TEXT[] NOT NULL DEFAULT '{}',
			lang TEXT,
			like_count INT,
			reply_count INT,
			repost_count INT,
			follower_count INT,
			permalink TEXT,
			UNIQUE (source, platform_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_social_posts_symbols ON social_posts USING GIN (symbols)`,
		`CREATE INDEX IF NOT EXISTS idx_social_posts_created_at ON social_posts (created_at)`,
		`CREATE TABLE IF NOT EXISTS sentiment_scores (
			post_pk BIGINT PRIMARY KEY REFERENCES social_posts(id) ON DELETE CASCADE,
			polarity DOUBLE PRECISION NOT NULL,
			subjectivity DOUBLE PRECISION NOT NULL,
			sarcasm_prob DOUBLE PRECISION NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			model_id TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS post_embeddings (
			post_pk BIGINT PRIMARY KEY REFERENCES social_posts(id) ON DELETE CASCADE,
			emb BYTEA NOT NULL
		)`,
	}

	for _, migration := range migrations {
		if _, err := s.pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	slog.Info("Database migrations completed")
	return nil
}

// SavePost upserts the post keyed on (source, platform_id), then its score
// and embedding. One post per call; callers treat failures as non-fatal.
func (s *PostgresStore) SavePost(ctx context.Context, post domain.ScoredPost, embedding []float32) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var pk int64
	err = tx.QueryRow(ctx, `
		INSERT INTO social_posts
			(source, platform_id, author_id, author_handle, created_at, text, symbols, lang,
			 like_count, reply_count, repost_count, follower_count, permalink)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (source, platform_id) DO UPDATE SET ingested_at = NOW()
		RETURNING id
	`, post.Source, post.PlatformID, post.AuthorID, post.AuthorHandle, post.CreatedAt,
		post.NormalizedText, post.ExtractedSymbols, nullable(post.Lang),
		post.LikeCount, post.ReplyCount, post.RepostCount, post.FollowerCount,
		nullable(post.Permalink),
	).Scan(&pk)
	if err != nil {
		return fmt.Errorf("failed to upsert post: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO sentiment_scores (post_pk, polarity, subjectivity, sarcasm_prob, confidence, model_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (post_pk) DO UPDATE SET
			polarity = EXCLUDED.polarity,
			subjectivity = EXCLUDED.subjectivity,
			sarcasm_prob = EXCLUDED.sarcasm_prob,
			confidence = EXCLUDED.confidence,
			model_id = EXCLUDED.model_id
	`, pk, post.Score.Polarity, post.Score.Subjectivity, post.Score.SarcasmProb,
		post.Score.Confidence, post.Score.ModelID)
	if err != nil {
		return fmt.Errorf("failed to upsert score: %w", err)
	}

	if len(embedding) > 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO post_embeddings (post_pk, emb)
			VALUES ($1, $2)
			ON CONFLICT (post_pk) DO UPDATE SET emb = EXCLUDED.emb
		`, pk, encodeEmbedding(embedding))
		if err != nil {
			return fmt.Errorf("failed to upsert embedding: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// encodeEmbedding packs float32s little-endian, the layout the original
// ingestion wrote.
func encodeEmbedding(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
