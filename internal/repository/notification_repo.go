package repository

import (
	"context"

	"aacbridge/internal/domain"
	"aacbridge/internal/models"
	"aacbridge/internal/store"
)

type NotificationRepository struct {
	store *store.Store
}

func NewNotificationRepository(s *store.Store) *NotificationRepository {
	return &NotificationRepository{store: s}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	_, err := r.store.Create(ctx, domain.CollectionNotifications, n)
	return err
}

func (r *NotificationRepository) Get(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.store.Get(ctx, domain.CollectionNotifications, id, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListForUser returns the full feed for a recipient, read and unread,
// in insertion order.
func (r *NotificationRepository) ListForUser(ctx context.Context, toID string) ([]models.Notification, error) {
	var list []models.Notification
	err := r.store.QueryByField(ctx, domain.CollectionNotifications, "to_id", toID, &list)
	return list, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	return r.store.Update(ctx, domain.CollectionNotifications, id, map[string]interface{}{"read": true})
}

// Watch fires fn once immediately and after every change to the
// notifications collection. Returns the unsubscribe func.
func (r *NotificationRepository) Watch(fn func()) func() {
	return r.store.Subscribe(domain.CollectionNotifications, fn)
}
