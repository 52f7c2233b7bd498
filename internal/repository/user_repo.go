package repository

import (
	"context"

	"aacbridge/internal/domain"
	"aacbridge/internal/models"
	"aacbridge/internal/store"
)

type UserRepository struct {
	store *store.Store
}

func NewUserRepository(s *store.Store) *UserRepository {
	return &UserRepository{store: s}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	_, err := r.store.Create(ctx, domain.CollectionUsers, u)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.store.Get(ctx, domain.CollectionUsers, id, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns store.ErrNotFound when no user carries the email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var list []models.User
	if err := r.store.QueryByField(ctx, domain.CollectionUsers, "email", email, &list); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return &list[0], nil
}

func (r *UserRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.store.Update(ctx, domain.CollectionUsers, id, fields)
}
