package repository

import (
	"context"

	"aacbridge/internal/domain"
	"aacbridge/internal/models"
	"aacbridge/internal/store"
)

type TokenRepository struct {
	store *store.Store
}

func NewTokenRepository(s *store.Store) *TokenRepository {
	return &TokenRepository{store: s}
}

// GetByUser returns store.ErrNotFound when the user has no token on
// record; callers treat that as an ordinary condition.
func (r *TokenRepository) GetByUser(ctx context.Context, userID string) (*models.PushToken, error) {
	var list []models.PushToken
	if err := r.store.QueryByField(ctx, domain.CollectionPushTokens, "user_id", userID, &list); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return &list[0], nil
}

// Upsert keeps one token row per user: the fields of the latest
// registering device are merged over whatever was there before.
func (r *TokenRepository) Upsert(ctx context.Context, t *models.PushToken) error {
	existing, err := r.GetByUser(ctx, t.UserID)
	if err != nil {
		if err != store.ErrNotFound {
			return err
		}
		_, err = r.store.Create(ctx, domain.CollectionPushTokens, t)
		return err
	}
	return r.store.Update(ctx, domain.CollectionPushTokens, existing.ID, map[string]interface{}{
		"token":     t.Token,
		"platform":  t.Platform,
		"device_id": t.DeviceID,
		"active":    true,
	})
}

func (r *TokenRepository) Deactivate(ctx context.Context, userID string) error {
	existing, err := r.GetByUser(ctx, userID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil
		}
		return err
	}
	return r.store.Update(ctx, domain.CollectionPushTokens, existing.ID, map[string]interface{}{"active": false})
}
