package repository

import (
	"context"

	"aacbridge/internal/domain"
	"aacbridge/internal/models"
	"aacbridge/internal/store"
)

type ConnectionRepository struct {
	store *store.Store
}

func NewConnectionRepository(s *store.Store) *ConnectionRepository {
	return &ConnectionRepository{store: s}
}

func (r *ConnectionRepository) Create(ctx context.Context, conn *models.Connection) error {
	_, err := r.store.Create(ctx, domain.CollectionConnections, conn)
	return err
}

func (r *ConnectionRepository) Get(ctx context.Context, id string) (*models.Connection, error) {
	var conn models.Connection
	if err := r.store.Get(ctx, domain.CollectionConnections, id, &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *ConnectionRepository) ListByParent(ctx context.Context, parentID string) ([]models.Connection, error) {
	var list []models.Connection
	err := r.store.QueryByField(ctx, domain.CollectionConnections, "parent_id", parentID, &list)
	return list, err
}

func (r *ConnectionRepository) ListByChild(ctx context.Context, childID string) ([]models.Connection, error) {
	var list []models.Connection
	err := r.store.QueryByField(ctx, domain.CollectionConnections, "child_id", childID, &list)
	return list, err
}

// FindPair looks for an existing link between a parent and a child.
// The store only queries one field, so the child side is filtered
// here. Best effort: a concurrent redeem can still slip a duplicate in
// between this check and the create.
func (r *ConnectionRepository) FindPair(ctx context.Context, parentID, childID string) (*models.Connection, error) {
	list, err := r.ListByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ChildID == childID {
			return &list[i], nil
		}
	}
	return nil, nil
}

func (r *ConnectionRepository) SetStatus(ctx context.Context, id, status string) error {
	return r.store.Update(ctx, domain.CollectionConnections, id, map[string]interface{}{"status": status})
}

func (r *ConnectionRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, domain.CollectionConnections, id)
}
