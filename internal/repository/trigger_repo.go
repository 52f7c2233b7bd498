package repository

import (
	"context"
	"time"

	"aacbridge/internal/domain"
	"aacbridge/internal/models"
	"aacbridge/internal/store"
)

type TriggerRepository struct {
	store *store.Store
}

func NewTriggerRepository(s *store.Store) *TriggerRepository {
	return &TriggerRepository{store: s}
}

func (r *TriggerRepository) Create(ctx context.Context, t *models.NotificationTrigger) (string, error) {
	return r.store.Create(ctx, domain.CollectionTriggers, t)
}

func (r *TriggerRepository) Get(ctx context.Context, id string) (*models.NotificationTrigger, error) {
	var t models.NotificationTrigger
	if err := r.store.Get(ctx, domain.CollectionTriggers, id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TriggerRepository) ListUnprocessed(ctx context.Context) ([]models.NotificationTrigger, error) {
	var list []models.NotificationTrigger
	err := r.store.QueryByField(ctx, domain.CollectionTriggers, "processed", false, &list)
	return list, err
}

func (r *TriggerRepository) ListForTarget(ctx context.Context, targetUserID string) ([]models.NotificationTrigger, error) {
	var list []models.NotificationTrigger
	err := r.store.QueryByField(ctx, domain.CollectionTriggers, "target_user_id", targetUserID, &list)
	return list, err
}

// MarkProcessed records the terminal state: processed flips to true
// exactly once, together with the delivery outcome.
func (r *TriggerRepository) MarkProcessed(ctx context.Context, id string, success bool, at time.Time) error {
	return r.store.Update(ctx, domain.CollectionTriggers, id, map[string]interface{}{
		"processed":    true,
		"processed_at": at,
		"success":      success,
	})
}

// Watch fires fn once immediately and after every change to the
// triggers collection.
func (r *TriggerRepository) Watch(fn func()) func() {
	return r.store.Subscribe(domain.CollectionTriggers, fn)
}
