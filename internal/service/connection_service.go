package service

import (
	"context"
	"errors"

	"aacbridge/internal/domain"
	"aacbridge/internal/models"
	"aacbridge/internal/repository"
)

var ErrUnknownRole = errors.New("unknown role")

// ConnectionService lists and removes parent-child links. Removal is
// representation by absence: a deleted row is a removed connection.
type ConnectionService struct {
	connections *repository.ConnectionRepository
}

func NewConnectionService(connections *repository.ConnectionRepository) *ConnectionService {
	return &ConnectionService{connections: connections}
}

// activeOnly filters client-side; the store's equality query cannot
// carry a second predicate.
func activeOnly(list []models.Connection) []models.Connection {
	out := make([]models.Connection, 0, len(list))
	for _, c := range list {
		if c.Status == domain.ConnectionStatusActive {
			out = append(out, c)
		}
	}
	return out
}

func (s *ConnectionService) ListForParent(ctx context.Context, parentID string) ([]models.Connection, error) {
	list, err := s.connections.ListByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return activeOnly(list), nil
}

func (s *ConnectionService) ListForChild(ctx context.Context, childID string) ([]models.Connection, error) {
	list, err := s.connections.ListByChild(ctx, childID)
	if err != nil {
		return nil, err
	}
	return activeOnly(list), nil
}

// ListFor dispatches on the caller's role; either side of a link may
// list it.
func (s *ConnectionService) ListFor(ctx context.Context, userID, role string) ([]models.Connection, error) {
	switch role {
	case domain.RoleParent:
		return s.ListForParent(ctx, userID)
	case domain.RoleChild:
		return s.ListForChild(ctx, userID)
	default:
		return nil, ErrUnknownRole
	}
}

// Remove hard-deletes a connection. Removing an already-removed
// connection succeeds.
func (s *ConnectionService) Remove(ctx context.Context, connectionID string) error {
	return s.connections.Delete(ctx, connectionID)
}

func (s *ConnectionService) SetStatus(ctx context.Context, connectionID, status string) error {
	return s.connections.SetStatus(ctx, connectionID, status)
}
