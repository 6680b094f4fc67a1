package service

import (
	"context"
	"errors"
	"fmt"

	"smartops.app/gateway/internal/model"
	"smartops.app/gateway/internal/store"
)

// SettingsService manages per-user configuration key/value pairs, such as the
// preferred model.
type SettingsService interface {
	Get(ctx context.Context, key string, userID int64) (*model.ConfigEntry, error)
	Set(ctx context.Context, key string, userID int64, value string) error
}

type settingsService struct {
	configs store.ConfigStore
}

func NewSettingsService(configs store.ConfigStore) SettingsService {
	return &settingsService{configs: configs}
}

func (s *settingsService) Get(ctx context.Context, key string, userID int64) (*model.ConfigEntry, error) {
	entry, err := s.configs.Get(ctx, key, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Absent keys read as an unset entry rather than an error.
			return &model.ConfigEntry{Key: key, UserID: userID}, nil
		}
		return nil, fmt.Errorf("loading config %q: %w", key, err)
	}
	return entry, nil
}

func (s *settingsService) Set(ctx context.Context, key string, userID int64, value string) error {
	entry := &model.ConfigEntry{
		Key:    key,
		UserID: userID,
		Value:  value,
	}
	if err := s.configs.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("saving config %q: %w", key, err)
	}
	return nil
}
