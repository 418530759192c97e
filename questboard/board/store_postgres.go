package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// boardRowID pins the whole board to a single row so every Save is one
// transactional upsert.
const boardRowID = 1

// PostgresStore keeps the board as a JSONB document in a single row.
type PostgresStore struct {
	pool  *pgxpool.Pool
	names []string
}

func NewPostgresStore(ctx context.Context, dsn string, names []string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS quest_board (
			id    INTEGER PRIMARY KEY,
			state JSONB NOT NULL
		)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create quest_board table: %w", err)
	}
	return &PostgresStore{pool: pool, names: names}, nil
}

func (s *PostgresStore) Load(ctx context.Context) (map[string]Quest, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT state FROM quest_board WHERE id = $1`, boardRowID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.reset(ctx, "board row missing")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quest board: %w", err)
	}

	var quests map[string]Quest
	if err := json.Unmarshal(raw, &quests); err != nil {
		slog.Warn("Quest board row is corrupt, reinitializing",
			slog.String("type", "db"),
			slog.Any("error", err))
		return s.reset(ctx, "board row corrupt")
	}
	return repairLoaded(quests, s.names), nil
}

func (s *PostgresStore) Save(ctx context.Context, quests map[string]Quest) error {
	raw, err := json.Marshal(quests)
	if err != nil {
		return fmt.Errorf("failed to encode quest board: %w", err)
	}
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO quest_board (id, state) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state`,
		boardRowID, raw); err != nil {
		return fmt.Errorf("failed to save quest board: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) reset(ctx context.Context, reason string) (map[string]Quest, error) {
	slog.Warn("Initializing default quest board",
		slog.String("type", "db"),
		slog.String("reason", reason))
	quests := defaultQuests(s.names)
	if err := s.Save(ctx, quests); err != nil {
		return nil, err
	}
	return quests, nil
}
