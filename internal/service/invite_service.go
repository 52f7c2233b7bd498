package service

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"strings"
	"time"

	"aacbridge/internal/domain"
	"aacbridge/internal/models"
	"aacbridge/internal/repository"
)

var (
	ErrEmptyCode        = errors.New("invite code is required")
	ErrInvalidCode      = errors.New("invalid invite code")
	ErrCodeAlreadyUsed  = errors.New("invite code already used")
	ErrCodeExpired      = errors.New("invite code expired")
	ErrAlreadyConnected = errors.New("already connected to this parent")
)

// InviteService issues and redeems the time-bounded pairing codes
// that link a parent account to a child account.
type InviteService struct {
	invites     *repository.InviteRepository
	connections *repository.ConnectionRepository
	ttl         time.Duration
}

func NewInviteService(invites *repository.InviteRepository, connections *repository.ConnectionRepository, ttl time.Duration) *InviteService {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &InviteService{invites: invites, connections: connections, ttl: ttl}
}

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// generateInviteCode returns a 6-character uppercase base-36 code.
// Uniqueness against outstanding codes is not checked; collisions are
// probabilistic and redemption picks the oldest matching candidate.
func generateInviteCode() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b), nil
}

// Issue creates a single-use invite code for the issuing parent,
// redeemable for the configured TTL (24h by default).
func (s *InviteService) Issue(ctx context.Context, issuer Identity) (*models.InviteCode, error) {
	code, err := generateInviteCode()
	if err != nil {
		return nil, err
	}
	invite := &models.InviteCode{
		Code:          code,
		IssuerID:      issuer.ID,
		IssuerContact: issuer.Contact,
		IssuerName:    issuer.Name,
		ExpiresAt:     time.Now().Add(s.ttl),
		Used:          false,
	}
	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, err
	}
	return invite, nil
}

func (s *InviteService) ListByIssuer(ctx context.Context, issuerID string) ([]models.InviteCode, error) {
	return s.invites.ListByIssuer(ctx, issuerID)
}

// Revoke deletes an outstanding code. Idempotent.
func (s *InviteService) Revoke(ctx context.Context, inviteID string) error {
	return s.invites.Delete(ctx, inviteID)
}

// Redeem consumes an invite code and links the redeeming child to the
// issuing parent. The distinct errors are mutually exclusive so the
// caller can phrase each rejection precisely.
//
// The connection create and the mark-used write are two separate
// writes with no transaction between them: if marking used fails the
// connection exists but the code stays redeemable. That window is a
// known property of this flow, not reconciled by any repair job.
func (s *InviteService) Redeem(ctx context.Context, code string, redeemer Identity) (*models.Connection, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrEmptyCode
	}
	matches, err := s.invites.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrInvalidCode
	}
	var candidate *models.InviteCode
	for i := range matches {
		if !matches[i].Used {
			candidate = &matches[i]
			break
		}
	}
	if candidate == nil {
		return nil, ErrCodeAlreadyUsed
	}
	if candidate.Expired(time.Now()) {
		return nil, ErrCodeExpired
	}
	existing, err := s.connections.FindPair(ctx, candidate.IssuerID, redeemer.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyConnected
	}
	conn := &models.Connection{
		ParentID:      candidate.IssuerID,
		ParentContact: candidate.IssuerContact,
		ParentName:    candidate.IssuerName,
		ChildID:       redeemer.ID,
		ChildContact:  redeemer.Contact,
		ChildName:     redeemer.Name,
		Status:        domain.ConnectionStatusActive,
		ConnectedAt:   time.Now(),
	}
	if err := s.connections.Create(ctx, conn); err != nil {
		return nil, err
	}
	if err := s.invites.MarkUsed(ctx, candidate.ID, redeemer.ID, time.Now()); err != nil {
		// Connection exists but the code is still redeemable.
		log.Printf("[invites] mark used failed for %s: %v", candidate.ID, err)
		return conn, err
	}
	return conn, nil
}
