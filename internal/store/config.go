package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"smartops.app/gateway/internal/model"
)

type configStore struct {
	pool *pgxpool.Pool
}

func newConfigStore(pool *pgxpool.Pool) ConfigStore {
	return &configStore{pool: pool}
}

func (s *configStore) Get(ctx context.Context, key string, userID int64) (*model.ConfigEntry, error) {
	var entry model.ConfigEntry
	err := s.pool.QueryRow(ctx, `
		SELECT key, user_id, value
		FROM configs
		WHERE key = $1 AND user_id = $2`,
		key, userID,
	).Scan(&entry.Key, &entry.UserID, &entry.Value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (s *configStore) Upsert(ctx context.Context, entry *model.ConfigEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO configs (key, user_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (key, user_id) DO UPDATE SET value = EXCLUDED.value`,
		entry.Key, entry.UserID, entry.Value,
	)
	return err
}
