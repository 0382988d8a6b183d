package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"pagepilot/internal/core/domain"
	"pagepilot/internal/core/ports"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStorage struct {
	Pool *pgxpool.Pool
}

func NewPostgresStorage(ctx context.Context, connStr string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	s := &PostgresStorage{Pool: pool}
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

var _ ports.Storage = (*PostgresStorage)(nil)

func (s *PostgresStorage) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS page_tokens (page_id TEXT PRIMARY KEY, token TEXT)`,
		`CREATE TABLE IF NOT EXISTS personas (id INT PRIMARY KEY DEFAULT 1, data JSONB)`,
		`CREATE TABLE IF NOT EXISTS reply_stats (page_id TEXT PRIMARY KEY, count INT, last_date TEXT)`,
	}

	for _, q := range queries {
		if _, err := s.Pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStorage) SaveToken(pageID, token string) error {
	_, err := s.Pool.Exec(context.Background(),
		"INSERT INTO page_tokens (page_id, token) VALUES ($1, $2) ON CONFLICT (page_id) DO UPDATE SET token = $2",
		pageID, token)
	return err
}

func (s *PostgresStorage) LoadToken(pageID string) (string, error) {
	var token string
	err := s.Pool.QueryRow(context.Background(), "SELECT token FROM page_tokens WHERE page_id = $1", pageID).Scan(&token)
	if err != nil {
		return "", nil
	}
	return token, nil
}

func (s *PostgresStorage) SavePersonas(personas []domain.Persona) error {
	data, err := json.Marshal(personas)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(context.Background(),
		"INSERT INTO personas (id, data) VALUES (1, $1) ON CONFLICT (id) DO UPDATE SET data = $1", data)
	return err
}

func (s *PostgresStorage) LoadPersonas() ([]domain.Persona, error) {
	var data []byte
	err := s.Pool.QueryRow(context.Background(), "SELECT data FROM personas WHERE id = 1").Scan(&data)
	if err != nil {
		return nil, nil
	}
	var personas []domain.Persona
	if err := json.Unmarshal(data, &personas); err != nil {
		return nil, err
	}
	return personas, nil
}

func (s *PostgresStorage) GetReplyStats(pageID string) (int, string, error) {
	var count int
	var lastDate string
	err := s.Pool.QueryRow(context.Background(), "SELECT count, last_date FROM reply_stats WHERE page_id = $1", pageID).Scan(&count, &lastDate)
	if err != nil {
		return 0, "", nil
	}
	return count, lastDate, nil
}

func (s *PostgresStorage) IncrementReplyCount(pageID string, date string) error {
	_, err := s.Pool.Exec(context.Background(),
		`INSERT INTO reply_stats (page_id, count, last_date) VALUES ($1, 1, $2)
		 ON CONFLICT (page_id) DO UPDATE SET
		 count = CASE WHEN reply_stats.last_date = $2 THEN reply_stats.count + 1 ELSE 1 END,
		 last_date = $2`,
		pageID, date)
	return err
}
