package repository

import (
	"context"
	"time"

	"aacbridge/internal/domain"
	"aacbridge/internal/models"
	"aacbridge/internal/store"
)

// HistoryRepository is the append-only audit trail of delivery
// attempts. The core only writes it; reads are diagnostics.
type HistoryRepository struct {
	store *store.Store
}

func NewHistoryRepository(s *store.Store) *HistoryRepository {
	return &HistoryRepository{store: s}
}

func (r *HistoryRepository) Append(ctx context.Context, h *models.NotificationHistory) error {
	_, err := r.store.Create(ctx, domain.CollectionNotificationHistory, h)
	return err
}

func (r *HistoryRepository) ListForUser(ctx context.Context, userID string) ([]models.NotificationHistory, error) {
	var list []models.NotificationHistory
	err := r.store.QueryByField(ctx, domain.CollectionNotificationHistory, "user_id", userID, &list)
	return list, err
}

// PurgeOlder deletes a user's history entries created before the
// cutoff. The store has no range queries, so the age filter runs here
// and rows are removed one by one.
func (r *HistoryRepository) PurgeOlder(ctx context.Context, userID string, cutoff time.Time) (int, error) {
	list, err := r.ListForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	purged := 0
	for i := range list {
		if list[i].CreatedAt.Before(cutoff) {
			if err := r.store.Delete(ctx, domain.CollectionNotificationHistory, list[i].ID); err != nil {
				return purged, err
			}
			purged++
		}
	}
	return purged, nil
}
