package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"aacbridge/internal/domain"
	"aacbridge/internal/models"
	"aacbridge/internal/repository"
	"aacbridge/internal/store"
	"aacbridge/pkg/push"
)

var (
	ErrNoPushToken = errors.New("no push token registered")
	ErrEmptyToken  = errors.New("push token is required")
)

// PushService is the device-push channel: one token per user, one-shot
// best-effort delivery, every attempt audited to notification history
// before the outcome is acted upon.
type PushService struct {
	tokens   *repository.TokenRepository
	history  *repository.HistoryRepository
	provider push.Provider
}

func NewPushService(tokens *repository.TokenRepository, history *repository.HistoryRepository, provider push.Provider) *PushService {
	return &PushService{tokens: tokens, history: history, provider: provider}
}

// RegisterToken merge-upserts the caller's device token; the latest
// registering device wins.
func (s *PushService) RegisterToken(ctx context.Context, userID, token, platform, deviceID string) error {
	if token == "" {
		return ErrEmptyToken
	}
	return s.tokens.Upsert(ctx, &models.PushToken{
		UserID:   userID,
		Token:    token,
		Platform: platform,
		DeviceID: deviceID,
		Active:   true,
	})
}

// DeactivateToken marks the caller's device token inactive, for
// logout. The row stays so a later registration reactivates it.
func (s *PushService) DeactivateToken(ctx context.Context, userID string) error {
	return s.tokens.Deactivate(ctx, userID)
}

// Send pushes one message to the target user's device. A missing
// token is reported as ErrNoPushToken, an ordinary condition the
// caller may fall back from. A relay failure is not an error: the
// attempt is logged as failed and delivered=false comes back. There
// is no retry.
func (s *PushService) Send(ctx context.Context, targetUserID, notifType, title, body string, data map[string]interface{}) (bool, error) {
	tok, err := s.tokens.GetByUser(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrNoPushToken
		}
		return false, err
	}
	msg := push.Message{
		Token:     tok.Token,
		Title:     title,
		Body:      body,
		Data:      data,
		Badge:     1,
		Priority:  "high",
		Sound:     "default",
		ChannelID: "default",
	}
	sendErr := s.provider.Send(ctx, msg)
	status := domain.DeliveryStatusSent
	if sendErr != nil {
		status = domain.DeliveryStatusFailed
	}
	s.logAttempt(ctx, targetUserID, notifType, title, body, data, status)
	if sendErr != nil {
		log.Printf("[push] delivery to %s failed: %v", targetUserID, sendErr)
		return false, nil
	}
	return true, nil
}

func (s *PushService) logAttempt(ctx context.Context, userID, notifType, title, body string, data map[string]interface{}, status string) {
	payload, _ := json.Marshal(map[string]interface{}{
		"title": title,
		"body":  body,
		"data":  data,
	})
	if err := s.history.Append(ctx, &models.NotificationHistory{
		UserID:  userID,
		Type:    notifType,
		Payload: string(payload),
		Status:  status,
	}); err != nil {
		log.Printf("[push] history append failed: %v", err)
	}
}

func (s *PushService) History(ctx context.Context, userID string) ([]models.NotificationHistory, error) {
	return s.history.ListForUser(ctx, userID)
}
