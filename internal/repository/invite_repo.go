package repository

import (
	"context"
	"time"

	"aacbridge/internal/domain"
	"aacbridge/internal/models"
	"aacbridge/internal/store"
)

type InviteRepository struct {
	store *store.Store
}

func NewInviteRepository(s *store.Store) *InviteRepository {
	return &InviteRepository{store: s}
}

func (r *InviteRepository) Create(ctx context.Context, invite *models.InviteCode) error {
	_, err := r.store.Create(ctx, domain.CollectionInviteCodes, invite)
	return err
}

// GetByCode returns every record matching the code, in insertion
// order. Codes are not unique by construction, so more than one row
// can come back; the caller picks the redeemable candidate.
func (r *InviteRepository) GetByCode(ctx context.Context, code string) ([]models.InviteCode, error) {
	var list []models.InviteCode
	err := r.store.QueryByField(ctx, domain.CollectionInviteCodes, "code", code, &list)
	return list, err
}

func (r *InviteRepository) ListByIssuer(ctx context.Context, issuerID string) ([]models.InviteCode, error) {
	var list []models.InviteCode
	err := r.store.QueryByField(ctx, domain.CollectionInviteCodes, "issuer_id", issuerID, &list)
	return list, err
}

// MarkUsed flips the single-use flag. The flag only ever moves from
// false to true.
func (r *InviteRepository) MarkUsed(ctx context.Context, id, usedBy string, at time.Time) error {
	return r.store.Update(ctx, domain.CollectionInviteCodes, id, map[string]interface{}{
		"used":    true,
		"used_by": usedBy,
		"used_at": at,
	})
}

func (r *InviteRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, domain.CollectionInviteCodes, id)
}
